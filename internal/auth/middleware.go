package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/videostream/videostream/internal/platform/httpx"
	"github.com/videostream/videostream/internal/shared"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// Gate guards routes that require an authenticated user. It verifies the
// access token, loads the referenced user and attaches the identity to the
// request context; it never touches the stored refresh token.
type Gate struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireAuth rejects the request with 401 unless a valid access token is
// presented. The response carries one generic message regardless of which
// verification step failed.
func (g Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := AccessTokenFromRequest(r)
		if token == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "unauthorized request")
			return
		}
		identity, err := g.Service.Authenticate(r.Context(), token)
		if err != nil {
			if g.Logger != nil {
				g.Logger.Warn("access token rejected", slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid access token")
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), identity)))
	})
}

// Optional attaches an identity when a valid access token is presented and
// lets the request proceed anonymously otherwise.
func (g Gate) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := AccessTokenFromRequest(r); token != "" {
			if identity, err := g.Service.Authenticate(r.Context(), token); err == nil {
				r = r.WithContext(shared.ContextWithIdentity(r.Context(), identity))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// AccessTokenFromRequest extracts the access token from the accessToken
// cookie or the Authorization bearer header, in that order.
func AccessTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// RefreshTokenFromRequest extracts the refresh token from the refreshToken
// cookie; body extraction is the handler's concern.
func RefreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}
