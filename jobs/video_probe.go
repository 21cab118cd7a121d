package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	jobmetrics "github.com/videostream/videostream/internal/jobs"
	"github.com/videostream/videostream/internal/platform/httpx"
)

// ProbeStore is the slice of the video repository the probe job needs.
type ProbeStore interface {
	MarkReady(ctx context.Context, id uuid.UUID, durationSeconds float64) error
}

// VideoProber marks freshly uploaded videos as ready for playback. Real
// duration extraction would shell out to ffprobe here; the stored duration
// stays at the uploader-supplied value until then.
type VideoProber struct {
	store   ProbeStore
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewVideoProber constructs the probe handler.
func NewVideoProber(store ProbeStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *VideoProber {
	return &VideoProber{store: store, logger: logger, metrics: metrics}
}

// Handle processes TaskVideoProbe tasks.
func (p *VideoProber) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := p.metrics.Track("video_probe")
	var payload VideoProbePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(asynq.SkipRetry)
	}
	if err := p.store.MarkReady(ctx, payload.VideoID, 0); err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			// Video deleted before the probe ran.
			return tracker.End(asynq.SkipRetry)
		}
		return tracker.End(err)
	}
	p.logger.Info("video marked ready", slog.String("video_id", payload.VideoID.String()))
	return tracker.End(nil)
}
