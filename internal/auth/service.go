package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/videostream/videostream/internal/platform/httpx"
	"github.com/videostream/videostream/internal/shared"
)

// Service orchestrates login, logout and refresh rotation over the
// credential store and token manager. It keeps no in-process state; every
// verification re-reads the store.
type Service struct {
	repo   Repository
	tokens *TokenManager
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// TokenPair is an access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	User PublicUser `json:"user"`
	TokenPair
}

// RegisterInput carries the fields for account creation. Media uploads are
// resolved to URLs before the service sees them.
type RegisterInput struct {
	FullName      string
	Email         string
	Username      string
	Password      string
	AvatarURL     string
	CoverImageURL string
}

// normalizeIdentifier canonicalizes login aliases: both stored and incoming
// values are trimmed and lower-cased, so lookups are case-insensitive.
func normalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Register creates a new user with a hashed password.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Username = normalizeIdentifier(input.Username)
	input.Email = normalizeIdentifier(input.Email)
	if input.FullName == "" || input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: fields cannot be empty", httpx.ErrValidation)
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}

	user := &User{
		ID:            uuid.New(),
		Username:      input.Username,
		Email:         input.Email,
		FullName:      input.FullName,
		AvatarURL:     input.AvatarURL,
		CoverImageURL: input.CoverImageURL,
		PasswordHash:  hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login validates the identifier/password pair and issues a fresh token
// pair. The new refresh token overwrites any prior value, so at most one
// refresh token is valid per user.
func (s *Service) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = normalizeIdentifier(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: username or email is required", httpx.ErrValidation)
	}

	user, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if !CheckPassword(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid user credentials", httpx.ErrUnauthorized)
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user.Public(), TokenPair: *pair}, nil
}

// Logout clears the stored refresh token. Calling it twice is not an error.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.repo.ClearRefreshToken(ctx, userID)
}

// Refresh rotates the presented refresh token for a brand-new pair. The
// presented token must verify against the refresh secret AND exactly match
// the stored value; the swap is a compare-and-swap so a concurrent rotation
// on the same stale token fails closed with Unauthorized.
func (s *Service) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	if presented == "" {
		return nil, fmt.Errorf("%w: refresh token is missing", httpx.ErrUnauthorized)
	}

	claims, err := s.tokens.VerifyRefresh(presented)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", httpx.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", httpx.ErrUnauthorized)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", httpx.ErrUnauthorized)
	}
	if user.RefreshToken == "" || user.RefreshToken != presented {
		return nil, fmt.Errorf("%w: invalid or expired or used refresh token", httpx.ErrUnauthorized)
	}

	accessToken, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return nil, err
	}
	swapped, err := s.repo.RotateRefreshToken(ctx, user.ID, presented, refreshToken)
	if err != nil {
		return nil, err
	}
	if !swapped {
		// Lost the rotation race: another request already consumed this token.
		return nil, fmt.Errorf("%w: invalid or expired or used refresh token", httpx.ErrUnauthorized)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ChangePassword verifies the old password and stores a hash of the new one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !CheckPassword(oldPassword, user.PasswordHash) {
		return fmt.Errorf("%w: old password is incorrect", httpx.ErrValidation)
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.UpdatePasswordHash(ctx, userID, hash)
}

// Authenticate verifies an access token and loads the referenced user for
// the request gate. Every failure collapses to Unauthorized so callers
// cannot probe which check failed; the cause is preserved for logging.
func (s *Service) Authenticate(ctx context.Context, token string) (*shared.Identity, error) {
	claims, err := s.tokens.VerifyAccess(token)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid access token: %v", httpx.ErrUnauthorized, err)
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid access token", httpx.ErrUnauthorized)
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid access token", httpx.ErrUnauthorized)
	}
	return &shared.Identity{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
	}, nil
}

func (s *Service) issuePair(ctx context.Context, user *User) (*TokenPair, error) {
	accessToken, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
