package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token verification failures. Both collapse to a 401 at the HTTP boundary;
// the distinction exists for logging only.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// AccessClaims asserts a user's identity for the duration of a request.
// Access tokens are never persisted; revocation is implicit via expiry.
type AccessClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// RefreshClaims deliberately carries only the user id so refresh tokens
// remain valid across profile edits.
type RefreshClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies the access/refresh token pair. Access and
// refresh tokens are signed with distinct secrets so one kind can never be
// presented as the other.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenManager constructs a TokenManager. Secrets must be non-empty;
// missing secrets are a startup failure, not a per-request one.
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*TokenManager, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("auth: signing secrets must be configured")
	}
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// AccessTTL exposes the configured access token lifetime.
func (tm *TokenManager) AccessTTL() time.Duration { return tm.accessTTL }

// RefreshTTL exposes the configured refresh token lifetime.
func (tm *TokenManager) RefreshTTL() time.Duration { return tm.refreshTTL }

// IssueAccess signs an access token carrying the user's profile claims.
func (tm *TokenManager) IssueAccess(user *User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.accessTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.accessSecret)
	if err != nil {
		return "", fmt.Errorf("auth: sign access token: %w", err)
	}
	return token, nil
}

// IssueRefresh signs a refresh token carrying only the user id.
func (tm *TokenManager) IssueRefresh(user *User) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		UserID: user.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			// A unique jti keeps every issued refresh token distinct even
			// within the one-second resolution of iat, so exact-match
			// rotation can never collide.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.refreshTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("auth: sign refresh token: %w", err)
	}
	return token, nil
}

// VerifyAccess validates signature and expiry against the access secret.
// Verification is all-or-nothing: no claim is read from an invalid token.
func (tm *TokenManager) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := tm.verify(token, claims, tm.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh validates signature and expiry against the refresh secret.
func (tm *TokenManager) VerifyRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := tm.verify(token, claims, tm.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (tm *TokenManager) verify(token string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return ErrTokenInvalid
	}
	return nil
}
