package jobs

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	jobmetrics "github.com/videostream/videostream/internal/jobs"
	"github.com/videostream/videostream/internal/videos"
)

// ViewStore is the slice of the video repository the flush job needs.
type ViewStore interface {
	AddViews(ctx context.Context, id uuid.UUID, delta int64) error
}

// ViewsFlusher drains the pending redis view counters into postgres. Each
// counter is consumed atomically with GETDEL; a failed database write puts
// the delta back so no view is lost.
type ViewsFlusher struct {
	redis   *redis.Client
	store   ViewStore
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewViewsFlusher constructs the flush handler.
func NewViewsFlusher(rdb *redis.Client, store ViewStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *ViewsFlusher {
	return &ViewsFlusher{redis: rdb, store: store, logger: logger, metrics: metrics}
}

// Handle processes TaskViewsFlush tasks.
func (f *ViewsFlusher) Handle(ctx context.Context, _ *asynq.Task) error {
	tracker := f.metrics.Track("views_flush")
	flushed, err := f.Flush(ctx)
	if err != nil {
		return tracker.End(err)
	}
	if flushed > 0 {
		f.logger.Info("flushed view counters", slog.Int("videos", flushed))
	}
	return tracker.End(nil)
}

// Flush drains every counter once and returns how many videos were updated.
func (f *ViewsFlusher) Flush(ctx context.Context) (int, error) {
	var flushed int
	iter := f.redis.Scan(ctx, 0, videos.ViewCounterPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := f.flushKey(ctx, key); err != nil {
			f.logger.Error("flush view counter", slog.Any("error", err), slog.String("key", key))
			continue
		}
		flushed++
	}
	return flushed, iter.Err()
}

func (f *ViewsFlusher) flushKey(ctx context.Context, key string) error {
	videoID, err := uuid.Parse(strings.TrimPrefix(key, videos.ViewCounterPrefix))
	if err != nil {
		// Not one of ours; leave it alone.
		return nil
	}
	raw, err := f.redis.GetDel(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return err
	}
	delta, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || delta <= 0 {
		return nil
	}
	if err := f.store.AddViews(ctx, videoID, delta); err != nil {
		// Requeue the delta so the next pass retries it.
		f.redis.IncrBy(ctx, key, delta)
		return err
	}
	return nil
}
