package likes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/videostream/videostream/internal/auth"
	"github.com/videostream/videostream/internal/platform/httpx"
	"github.com/videostream/videostream/internal/shared"
)

// Handler wires HTTP endpoints for likes; every route requires
// authentication.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    auth.Gate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate auth.Gate) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers like routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAuth)
		r.Post("/toggle/v/{videoID}", h.toggle(TargetVideo, "videoID"))
		r.Post("/toggle/c/{commentID}", h.toggle(TargetComment, "commentID"))
		r.Post("/toggle/t/{tweetID}", h.toggle(TargetTweet, "tweetID"))
		r.Get("/videos", h.handleLikedVideos)
		r.Get("/videos/{videoID}", h.status(TargetVideo, "videoID"))
		r.Get("/comments/{commentID}", h.status(TargetComment, "commentID"))
		r.Get("/tweets/{tweetID}", h.status(TargetTweet, "tweetID"))
	})
}

func (h *Handler) toggle(kind TargetKind, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := shared.IdentityFromContext(r.Context())
		targetID, err := uuid.Parse(chi.URLParam(r, param))
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", param+" must be a UUID")
			return
		}
		status, err := h.service.Toggle(r.Context(), identity.ID, kind, targetID)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, status)
	}
}

func (h *Handler) status(kind TargetKind, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := shared.IdentityFromContext(r.Context())
		targetID, err := uuid.Parse(chi.URLParam(r, param))
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", param+" must be a UUID")
			return
		}
		status, err := h.service.Status(r.Context(), identity.ID, kind, targetID)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, status)
	}
}

func (h *Handler) handleLikedVideos(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	items, err := h.service.LikedVideos(r.Context(), identity.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}
