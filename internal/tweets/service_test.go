package tweets

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videostream/videostream/internal/platform/httpx"
)

type mockTweetRepo struct {
	tweets map[uuid.UUID]*TweetWithOwner
}

func newMockTweetRepo() *mockTweetRepo {
	return &mockTweetRepo{tweets: make(map[uuid.UUID]*TweetWithOwner)}
}

func (m *mockTweetRepo) Create(_ context.Context, t *Tweet) error {
	m.tweets[t.ID] = &TweetWithOwner{Tweet: *t, OwnerUsername: "author"}
	return nil
}

func (m *mockTweetRepo) GetByID(_ context.Context, id uuid.UUID) (*TweetWithOwner, error) {
	t, ok := m.tweets[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (m *mockTweetRepo) List(_ context.Context, filter ListFilter) ([]TweetWithOwner, int, error) {
	var items []TweetWithOwner
	for _, t := range m.tweets {
		if filter.OwnerID != nil && t.OwnerID != *filter.OwnerID {
			continue
		}
		items = append(items, *t)
	}
	return items, len(items), nil
}

func (m *mockTweetRepo) Update(_ context.Context, id uuid.UUID, content string) (*TweetWithOwner, error) {
	t, ok := m.tweets[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	t.Content = content
	clone := *t
	return &clone, nil
}

func (m *mockTweetRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.tweets[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.tweets, id)
	return nil
}

func TestTweetCreate(t *testing.T) {
	svc := NewService(newMockTweetRepo())
	ownerID := uuid.New()

	tweet, err := svc.Create(context.Background(), ownerID, "  hello world  ")
	require.NoError(t, err)
	assert.Equal(t, "hello world", tweet.Content)
	assert.Equal(t, ownerID, tweet.OwnerID)
}

func TestTweetCreateValidation(t *testing.T) {
	svc := NewService(newMockTweetRepo())

	_, err := svc.Create(context.Background(), uuid.New(), "   ")
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(context.Background(), uuid.New(), strings.Repeat("x", maxTweetLength+1))
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestTweetOwnerOnlyMutations(t *testing.T) {
	repo := newMockTweetRepo()
	svc := NewService(repo)
	ownerID := uuid.New()

	tweet, err := svc.Create(context.Background(), ownerID, "original")
	require.NoError(t, err)

	strangerID := uuid.New()
	_, err = svc.Update(context.Background(), strangerID, tweet.ID, "hijacked")
	assert.ErrorIs(t, err, httpx.ErrForbidden)
	err = svc.Delete(context.Background(), strangerID, tweet.ID)
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	updated, err := svc.Update(context.Background(), ownerID, tweet.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	require.NoError(t, svc.Delete(context.Background(), ownerID, tweet.ID))
	err = svc.Delete(context.Background(), ownerID, tweet.ID)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestTweetListEmpty(t *testing.T) {
	svc := NewService(newMockTweetRepo())
	page, err := svc.List(context.Background(), ListFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, page.Tweets)
	assert.Empty(t, page.Tweets)
}
