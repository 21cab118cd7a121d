package users

import (
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/videostream/videostream/internal/auth"
	"github.com/videostream/videostream/internal/platform/httpx"
	"github.com/videostream/videostream/internal/shared"
)

const maxUploadMemory = 32 << 20

// MediaUploader resolves an uploaded image to a display URL.
type MediaUploader interface {
	UploadImage(ctx context.Context, prefix string, file multipart.File, header *multipart.FileHeader) (string, error)
}

// Handler wires HTTP endpoints for profile management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      auth.Gate
	uploader  MediaUploader
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate auth.Gate, uploader MediaUploader) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		gate:      gate,
		uploader:  uploader,
		validator: validator.New(),
	}
}

// MountRoutes registers profile routes; all of them require authentication.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAuth)
		r.Get("/profile", h.handleGetProfile)
		r.Put("/update-profile", h.handleUpdateProfile)
		r.Put("/update-avatar", h.handleUpdateAvatar)
		r.Put("/update-cover-image", h.handleUpdateCoverImage)
		r.Get("/channel-profile/{username}", h.handleChannelProfile)
		r.Get("/watch-history", h.handleWatchHistory)
	})
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	profile, err := h.service.GetProfile(r.Context(), identity.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

type updateProfileRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	var req updateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "fullName and a valid email are required")
		return
	}
	profile, err := h.service.UpdateProfile(r.Context(), identity.ID, req.FullName, req.Email)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.handleImageUpdate(w, r, "avatar", "avatars", h.service.UpdateAvatar)
}

func (h *Handler) handleUpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.handleImageUpdate(w, r, "coverImage", "covers", h.service.UpdateCoverImage)
}

func (h *Handler) handleImageUpdate(w http.ResponseWriter, r *http.Request, field, prefix string,
	update func(context.Context, uuid.UUID, string) (*Profile, error)) {
	identity := shared.IdentityFromContext(r.Context())
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "multipart form expected")
		return
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", field+" file is required")
		return
	}
	defer file.Close()

	url, err := h.uploader.UploadImage(r.Context(), prefix, file, header)
	if err != nil {
		h.logger.Error("upload "+field, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "failed to upload "+field)
		return
	}
	profile, err := update(r.Context(), identity.ID, url)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) handleChannelProfile(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	username := chi.URLParam(r, "username")
	channel, err := h.service.ChannelProfile(r.Context(), username, identity.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, channel)
}

func (h *Handler) handleWatchHistory(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	entries, err := h.service.WatchHistory(r.Context(), identity.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []WatchEntry{}
	}
	httpx.JSON(w, http.StatusOK, entries)
}
