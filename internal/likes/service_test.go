package likes

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videostream/videostream/internal/platform/httpx"
)

type likeKey struct {
	userID   uuid.UUID
	kind     TargetKind
	targetID uuid.UUID
}

type mockLikeRepo struct {
	likes   map[likeKey]time.Time
	targets map[uuid.UUID]bool
}

func newMockLikeRepo() *mockLikeRepo {
	return &mockLikeRepo{
		likes:   make(map[likeKey]time.Time),
		targets: make(map[uuid.UUID]bool),
	}
}

func (m *mockLikeRepo) Toggle(_ context.Context, userID uuid.UUID, kind TargetKind, targetID uuid.UUID) (bool, error) {
	if !m.targets[targetID] {
		return false, httpx.ErrNotFound
	}
	key := likeKey{userID: userID, kind: kind, targetID: targetID}
	if _, ok := m.likes[key]; ok {
		delete(m.likes, key)
		return false, nil
	}
	m.likes[key] = time.Now()
	return true, nil
}

func (m *mockLikeRepo) Count(_ context.Context, kind TargetKind, targetID uuid.UUID) (int64, error) {
	var n int64
	for key := range m.likes {
		if key.kind == kind && key.targetID == targetID {
			n++
		}
	}
	return n, nil
}

func (m *mockLikeRepo) IsLiked(_ context.Context, userID uuid.UUID, kind TargetKind, targetID uuid.UUID) (bool, error) {
	_, ok := m.likes[likeKey{userID: userID, kind: kind, targetID: targetID}]
	return ok, nil
}

func (m *mockLikeRepo) LikedVideos(_ context.Context, userID uuid.UUID) ([]LikedVideo, error) {
	var items []LikedVideo
	for key, at := range m.likes {
		if key.userID == userID && key.kind == TargetVideo {
			items = append(items, LikedVideo{VideoID: key.targetID, LikedAt: at})
		}
	}
	return items, nil
}

func TestLikeToggle(t *testing.T) {
	repo := newMockLikeRepo()
	svc := NewService(repo)
	videoID := uuid.New()
	repo.targets[videoID] = true
	userID := uuid.New()

	status, err := svc.Toggle(context.Background(), userID, TargetVideo, videoID)
	require.NoError(t, err)
	assert.True(t, status.Liked)
	assert.Equal(t, int64(1), status.Count)

	status, err = svc.Toggle(context.Background(), userID, TargetVideo, videoID)
	require.NoError(t, err)
	assert.False(t, status.Liked)
	assert.Equal(t, int64(0), status.Count)
}

func TestLikeToggleUnknownTarget(t *testing.T) {
	svc := NewService(newMockLikeRepo())
	_, err := svc.Toggle(context.Background(), uuid.New(), TargetVideo, uuid.New())
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestLikeCountsPerKind(t *testing.T) {
	repo := newMockLikeRepo()
	svc := NewService(repo)
	// A comment and a video can share an id space without cross-counting.
	targetID := uuid.New()
	repo.targets[targetID] = true
	userID := uuid.New()

	_, err := svc.Toggle(context.Background(), userID, TargetVideo, targetID)
	require.NoError(t, err)

	status, err := svc.Status(context.Background(), userID, TargetComment, targetID)
	require.NoError(t, err)
	assert.False(t, status.Liked)
	assert.Equal(t, int64(0), status.Count)
}

func TestLikeStatus(t *testing.T) {
	repo := newMockLikeRepo()
	svc := NewService(repo)
	tweetID := uuid.New()
	repo.targets[tweetID] = true
	first := uuid.New()
	second := uuid.New()

	_, err := svc.Toggle(context.Background(), first, TargetTweet, tweetID)
	require.NoError(t, err)
	_, err = svc.Toggle(context.Background(), second, TargetTweet, tweetID)
	require.NoError(t, err)

	status, err := svc.Status(context.Background(), first, TargetTweet, tweetID)
	require.NoError(t, err)
	assert.True(t, status.Liked)
	assert.Equal(t, int64(2), status.Count)
}

func TestLikedVideosEmpty(t *testing.T) {
	svc := NewService(newMockLikeRepo())
	items, err := svc.LikedVideos(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
