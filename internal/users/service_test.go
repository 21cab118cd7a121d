package users

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videostream/videostream/internal/platform/httpx"
)

type mockUserRepo struct {
	profiles    map[uuid.UUID]*Profile
	subscribers map[uuid.UUID]int64
	subscribing map[uuid.UUID]int64
	subscribed  map[uuid.UUID]map[uuid.UUID]bool
	history     map[uuid.UUID][]WatchEntry
	countErr    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		profiles:    make(map[uuid.UUID]*Profile),
		subscribers: make(map[uuid.UUID]int64),
		subscribing: make(map[uuid.UUID]int64),
		subscribed:  make(map[uuid.UUID]map[uuid.UUID]bool),
		history:     make(map[uuid.UUID][]WatchEntry),
	}
}

func (m *mockUserRepo) GetProfile(_ context.Context, id uuid.UUID) (*Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *mockUserRepo) GetProfileByUsername(_ context.Context, username string) (*Profile, error) {
	for _, p := range m.profiles {
		if p.Username == username {
			clone := *p
			return &clone, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, id uuid.UUID, fullName, email string) (*Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	p.FullName = fullName
	p.Email = email
	clone := *p
	return &clone, nil
}

func (m *mockUserRepo) UpdateAvatar(_ context.Context, id uuid.UUID, url string) (*Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	p.AvatarURL = url
	clone := *p
	return &clone, nil
}

func (m *mockUserRepo) UpdateCoverImage(_ context.Context, id uuid.UUID, url string) (*Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	p.CoverImageURL = url
	clone := *p
	return &clone, nil
}

func (m *mockUserRepo) CountSubscribers(_ context.Context, channelID uuid.UUID) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.subscribers[channelID], nil
}

func (m *mockUserRepo) CountSubscriptions(_ context.Context, userID uuid.UUID) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.subscribing[userID], nil
}

func (m *mockUserRepo) IsSubscribed(_ context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	return m.subscribed[subscriberID][channelID], nil
}

func (m *mockUserRepo) WatchHistory(_ context.Context, userID uuid.UUID) ([]WatchEntry, error) {
	return m.history[userID], nil
}

func seedProfile(repo *mockUserRepo, username string) *Profile {
	p := &Profile{ID: uuid.New(), Username: username, Email: username + "@example.com", FullName: "User " + username}
	repo.profiles[p.ID] = p
	return p
}

func TestUpdateProfileValidation(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewService(repo)
	p := seedProfile(repo, "rose")

	_, err := svc.UpdateProfile(context.Background(), p.ID, "  ", "rose@example.com")
	assert.ErrorIs(t, err, httpx.ErrValidation)

	updated, err := svc.UpdateProfile(context.Background(), p.ID, "Rose Tyler", "rose@new.example.com")
	require.NoError(t, err)
	assert.Equal(t, "Rose Tyler", updated.FullName)
	assert.Equal(t, "rose@new.example.com", updated.Email)
}

func TestChannelProfileAggregatesCounts(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewService(repo)
	channel := seedProfile(repo, "jack")
	viewer := seedProfile(repo, "rose")

	repo.subscribers[channel.ID] = 42
	repo.subscribing[channel.ID] = 7
	repo.subscribed[viewer.ID] = map[uuid.UUID]bool{channel.ID: true}

	result, err := svc.ChannelProfile(context.Background(), "jack", viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, channel.ID, result.ID)
	assert.Equal(t, int64(42), result.SubscriberCount)
	assert.Equal(t, int64(7), result.SubscribedToCount)
	assert.True(t, result.IsSubscribed)
}

func TestChannelProfileUnknownUser(t *testing.T) {
	svc := NewService(newMockUserRepo())
	_, err := svc.ChannelProfile(context.Background(), "nobody", uuid.New())
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestChannelProfileCountFailure(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewService(repo)
	seedProfile(repo, "jack")
	repo.countErr = errors.New("db unavailable")

	_, err := svc.ChannelProfile(context.Background(), "jack", uuid.New())
	require.Error(t, err)
}

func TestWatchHistoryPassthrough(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewService(repo)
	p := seedProfile(repo, "rose")
	repo.history[p.ID] = []WatchEntry{{Title: "first"}, {Title: "second"}}

	entries, err := svc.WatchHistory(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
