package comments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videostream/videostream/internal/platform/httpx"
	"github.com/videostream/videostream/internal/shared"
)

type mockCommentRepo struct {
	comments map[uuid.UUID]*CommentWithOwner
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{comments: make(map[uuid.UUID]*CommentWithOwner)}
}

func (m *mockCommentRepo) Create(_ context.Context, c *Comment) error {
	m.comments[c.ID] = &CommentWithOwner{Comment: *c, OwnerUsername: "author"}
	return nil
}

func (m *mockCommentRepo) GetByID(_ context.Context, id uuid.UUID) (*CommentWithOwner, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *mockCommentRepo) ListByVideo(_ context.Context, videoID uuid.UUID, _ shared.Pagination) ([]CommentWithOwner, int, error) {
	var items []CommentWithOwner
	for _, c := range m.comments {
		if c.VideoID == videoID {
			items = append(items, *c)
		}
	}
	return items, len(items), nil
}

func (m *mockCommentRepo) Update(_ context.Context, id uuid.UUID, content string) (*CommentWithOwner, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	c.Content = content
	clone := *c
	return &clone, nil
}

func (m *mockCommentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.comments[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

type mockVideoChecker struct {
	existing map[uuid.UUID]bool
}

func (m mockVideoChecker) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.existing[id], nil
}

func newTestCommentService() (*Service, *mockCommentRepo, uuid.UUID) {
	repo := newMockCommentRepo()
	videoID := uuid.New()
	checker := mockVideoChecker{existing: map[uuid.UUID]bool{videoID: true}}
	return NewService(repo, checker), repo, videoID
}

func TestCommentCreate(t *testing.T) {
	svc, _, videoID := newTestCommentService()
	ownerID := uuid.New()

	comment, err := svc.Create(context.Background(), ownerID, videoID, "  nice video  ")
	require.NoError(t, err)
	assert.Equal(t, "nice video", comment.Content)
	assert.Equal(t, videoID, comment.VideoID)
	assert.Equal(t, ownerID, comment.OwnerID)
}

func TestCommentCreateUnknownVideo(t *testing.T) {
	svc, _, _ := newTestCommentService()
	_, err := svc.Create(context.Background(), uuid.New(), uuid.New(), "hello")
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestCommentCreateEmptyContent(t *testing.T) {
	svc, _, videoID := newTestCommentService()
	_, err := svc.Create(context.Background(), uuid.New(), videoID, "   ")
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCommentOwnerOnlyMutations(t *testing.T) {
	svc, _, videoID := newTestCommentService()
	ownerID := uuid.New()

	comment, err := svc.Create(context.Background(), ownerID, videoID, "original")
	require.NoError(t, err)

	strangerID := uuid.New()
	_, err = svc.Update(context.Background(), strangerID, comment.ID, "hijacked")
	assert.ErrorIs(t, err, httpx.ErrForbidden)
	err = svc.Delete(context.Background(), strangerID, comment.ID)
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	updated, err := svc.Update(context.Background(), ownerID, comment.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	require.NoError(t, svc.Delete(context.Background(), ownerID, comment.ID))
}

func TestCommentListByVideo(t *testing.T) {
	svc, _, videoID := newTestCommentService()
	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), uuid.New(), videoID, "comment")
		require.NoError(t, err)
	}

	page, err := svc.ListByVideo(context.Background(), videoID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Comments, 3)
	assert.Equal(t, 3, page.Pagination.Total)
}
