package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videostream/videostream/internal/platform/httpx"
)

type mockProbeStore struct {
	ready map[uuid.UUID]bool
	err   error
}

func (m *mockProbeStore) MarkReady(_ context.Context, id uuid.UUID, _ float64) error {
	if m.err != nil {
		return m.err
	}
	m.ready[id] = true
	return nil
}

func newTestProber(t *testing.T) (*VideoProber, *mockProbeStore) {
	t.Helper()
	store := &mockProbeStore{ready: make(map[uuid.UUID]bool)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewVideoProber(store, logger, nil), store
}

func TestVideoProbeMarksReady(t *testing.T) {
	prober, store := newTestProber(t)
	videoID := uuid.New()

	task, err := NewVideoProbeTask(VideoProbePayload{VideoID: videoID})
	require.NoError(t, err)

	require.NoError(t, prober.Handle(context.Background(), task))
	assert.True(t, store.ready[videoID])
}

func TestVideoProbeDeletedVideoSkipsRetry(t *testing.T) {
	prober, store := newTestProber(t)
	store.err = httpx.ErrNotFound

	task, err := NewVideoProbeTask(VideoProbePayload{VideoID: uuid.New()})
	require.NoError(t, err)

	err = prober.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestVideoProbeTransientFailureRetries(t *testing.T) {
	prober, store := newTestProber(t)
	store.err = errors.New("db unavailable")

	task, err := NewVideoProbeTask(VideoProbePayload{VideoID: uuid.New()})
	require.NoError(t, err)

	err = prober.Handle(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestVideoProbeMalformedPayload(t *testing.T) {
	prober, _ := newTestProber(t)
	task := asynq.NewTask(TaskVideoProbe, []byte("not json"))
	err := prober.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
