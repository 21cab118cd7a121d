package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videostream/videostream/internal/platform/httpx"
)

type memoryRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[uuid.UUID]*User)}
}

func (m *memoryRepo) Create(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return httpx.ErrDuplicate
		}
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memoryRepo) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memoryRepo) FindByIdentifier(_ context.Context, identifier string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == identifier || u.Email == identifier {
			clone := *u
			return &clone, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (m *memoryRepo) SetRefreshToken(_ context.Context, userID uuid.UUID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return httpx.ErrNotFound
	}
	u.RefreshToken = token
	return nil
}

func (m *memoryRepo) RotateRefreshToken(_ context.Context, userID uuid.UUID, oldToken, newToken string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok || u.RefreshToken != oldToken {
		return false, nil
	}
	u.RefreshToken = newToken
	return true, nil
}

func (m *memoryRepo) ClearRefreshToken(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.RefreshToken = ""
	}
	return nil
}

func (m *memoryRepo) UpdatePasswordHash(_ context.Context, userID uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return httpx.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	tokens, err := NewTokenManager("access-secret", "refresh-secret", time.Hour, 240*time.Hour)
	require.NoError(t, err)
	return NewService(repo, tokens), repo
}

func registerTestUser(t *testing.T, svc *Service) *User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Amy Pond",
		Email:    "Amy@Example.com",
		Username: "AmyPond",
		Password: "fish fingers and custard",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterNormalizesAndHashes(t *testing.T) {
	svc, repo := newTestService(t)
	user := registerTestUser(t, svc)

	assert.Equal(t, "amypond", user.Username)
	assert.Equal(t, "amy@example.com", user.Email)
	assert.NotEqual(t, "fish fingers and custard", user.PasswordHash)

	stored, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, CheckPassword("fish fingers and custard", stored.PasswordHash))
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newTestService(t)
	registerTestUser(t, svc)

	_, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Other",
		Email:    "amy@example.com",
		Username: "other",
		Password: "pw",
	})
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestLoginIssuesValidPair(t *testing.T) {
	svc, _ := newTestService(t)
	user := registerTestUser(t, svc)

	// Identifier matching is case-insensitive for both username and email.
	for _, identifier := range []string{"AmyPond", "amy@example.COM"} {
		result, err := svc.Login(context.Background(), identifier, "fish fingers and custard")
		require.NoError(t, err)

		identity, err := svc.Authenticate(context.Background(), result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, identity.ID)

		claims, err := svc.tokens.VerifyRefresh(result.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Login(context.Background(), "nobody", "pw")
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	registerTestUser(t, svc)

	_, err := svc.Login(context.Background(), "amypond", "wrong")
	assert.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestLoginOverwritesPriorRefreshToken(t *testing.T) {
	svc, _ := newTestService(t)
	registerTestUser(t, svc)

	first, err := svc.Login(context.Background(), "amypond", "fish fingers and custard")
	require.NoError(t, err)
	_, err = svc.Login(context.Background(), "amypond", "fish fingers and custard")
	require.NoError(t, err)

	// The first session's refresh token is no longer the stored value.
	_, err = svc.Refresh(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestRefreshRotates(t *testing.T) {
	svc, _ := newTestService(t)
	user := registerTestUser(t, svc)

	login, err := svc.Login(context.Background(), "amypond", "fish fingers and custard")
	require.NoError(t, err)

	pair, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, pair.RefreshToken)

	identity, err := svc.Authenticate(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.ID)

	// The consumed token is single-use.
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, httpx.ErrUnauthorized)

	// The new one still works.
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshMissingToken(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestRefreshGarbageToken(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestLogoutThenRefresh(t *testing.T) {
	svc, _ := newTestService(t)
	user := registerTestUser(t, svc)

	login, err := svc.Login(context.Background(), "amypond", "fish fingers and custard")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), user.ID))
	// Logout is idempotent.
	require.NoError(t, svc.Logout(context.Background(), user.ID))

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestRefreshConcurrentRotationSingleWinner(t *testing.T) {
	svc, _ := newTestService(t)
	registerTestUser(t, svc)

	login, err := svc.Login(context.Background(), "amypond", "fish fingers and custard")
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Refresh(context.Background(), login.RefreshToken)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, httpx.ErrUnauthorized)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestAuthenticateExpiredAccessToken(t *testing.T) {
	repo := newMemoryRepo()
	expired, err := NewTokenManager("access-secret", "refresh-secret", -time.Minute, 240*time.Hour)
	require.NoError(t, err)
	svc := NewService(repo, expired)

	user := registerTestUser(t, svc)
	token, err := expired.IssueAccess(user)
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	user := registerTestUser(t, svc)

	err := svc.ChangePassword(context.Background(), user.ID, "wrong", "new password")
	assert.ErrorIs(t, err, httpx.ErrValidation)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "fish fingers and custard", "new password"))

	_, err = svc.Login(context.Background(), "amypond", "fish fingers and custard")
	assert.ErrorIs(t, err, httpx.ErrUnauthorized)
	_, err = svc.Login(context.Background(), "amypond", "new password")
	require.NoError(t, err)
}
