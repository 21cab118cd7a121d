package auth

import (
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/videostream/videostream/internal/platform/httpx"
	"github.com/videostream/videostream/internal/shared"
)

const maxUploadMemory = 32 << 20

// MediaUploader resolves an uploaded file to a publicly reachable URL.
type MediaUploader interface {
	UploadImage(ctx context.Context, prefix string, file multipart.File, header *multipart.FileHeader) (string, error)
}

// Handler wires HTTP endpoints for registration and the session lifecycle.
type Handler struct {
	logger        *slog.Logger
	service       *Service
	gate          Gate
	uploader      MediaUploader
	validator     *validator.Validate
	secureCookies bool
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate Gate, uploader MediaUploader, secureCookies bool) *Handler {
	return &Handler{
		logger:        logger,
		service:       service,
		gate:          gate,
		uploader:      uploader,
		validator:     validator.New(),
		secureCookies: secureCookies,
	}
}

// MountRoutes registers session routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	// Brute-force guard on credential submission only.
	r.With(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))).
		Post("/login", h.handleLogin)
	r.Post("/refresh-token", h.handleRefresh)
	r.Post("/register", h.handleRegister)

	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAuth)
		r.Post("/logout", h.handleLogout)
		r.Post("/change-password", h.handleChangePassword)
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "password is required")
		return
	}
	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}

	result, err := h.service.Login(r.Context(), identifier, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.setAuthCookies(w, result.AccessToken, result.RefreshToken)
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "unauthorized request")
		return
	}
	if err := h.service.Logout(r.Context(), identity.ID); err != nil {
		h.logger.Error("logout", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.clearAuthCookies(w)
	httpx.JSON(w, http.StatusOK, map[string]any{})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	presented := RefreshTokenFromRequest(r)
	if presented == "" {
		var req refreshRequest
		// Body is optional when the cookie is present.
		_ = httpx.DecodeJSON(r, &req)
		presented = req.RefreshToken
	}

	pair, err := h.service.Refresh(r.Context(), presented)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.setAuthCookies(w, pair.AccessToken, pair.RefreshToken)
	httpx.JSON(w, http.StatusOK, pair)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "multipart form expected")
		return
	}

	input := RegisterInput{
		FullName: r.PostFormValue("fullName"),
		Email:    r.PostFormValue("email"),
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	avatarFile, avatarHeader, err := r.FormFile("avatar")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "avatar is required")
		return
	}
	defer avatarFile.Close()

	avatarURL, err := h.uploader.UploadImage(r.Context(), "avatars", avatarFile, avatarHeader)
	if err != nil {
		h.logger.Error("upload avatar", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "failed to upload avatar")
		return
	}
	input.AvatarURL = avatarURL

	if coverFile, coverHeader, err := r.FormFile("coverImage"); err == nil {
		defer coverFile.Close()
		coverURL, err := h.uploader.UploadImage(r.Context(), "covers", coverFile, coverHeader)
		if err != nil {
			h.logger.Error("upload cover image", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "failed to upload cover image")
			return
		}
		input.CoverImageURL = coverURL
	}

	user, err := h.service.Register(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user.Public())
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "unauthorized request")
		return
	}
	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "old and new passwords are required, new password min 8 chars")
		return
	}
	if err := h.service.ChangePassword(r.Context(), identity.ID, req.OldPassword, req.NewPassword); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{})
}

func (h *Handler) setAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(h.service.tokens.AccessTTL()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(h.service.tokens.RefreshTTL()),
	})
}

func (h *Handler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secureCookies,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
