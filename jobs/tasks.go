package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskVideoProbe probes a freshly uploaded video and marks it ready.
	TaskVideoProbe = "video:probe"
	// TaskViewsFlush drains the redis view counters into postgres.
	TaskViewsFlush = "views:flush"
)

// VideoProbePayload identifies the video to probe.
type VideoProbePayload struct {
	VideoID uuid.UUID `json:"videoId"`
}

// NewVideoProbeTask constructs an Asynq task for the media probe.
func NewVideoProbeTask(payload VideoProbePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVideoProbe, data), nil
}

// NewViewsFlushTask constructs the counter-flush task; it carries no payload
// and is normally registered on the cron scheduler.
func NewViewsFlushTask() *asynq.Task {
	return asynq.NewTask(TaskViewsFlush, nil)
}
