package comments

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/videostream/videostream/internal/auth"
	"github.com/videostream/videostream/internal/platform/httpx"
	"github.com/videostream/videostream/internal/shared"
)

// Handler wires HTTP endpoints for comments.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    auth.Gate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate auth.Gate) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers comment routes. Listing is public; writes require
// authentication.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{videoID}", h.handleListByVideo)

	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAuth)
		r.Post("/{videoID}", h.handleCreate)
		r.Patch("/c/{commentID}", h.handleUpdate)
		r.Delete("/c/{commentID}", h.handleDelete)
	})
}

type commentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) handleListByVideo(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "videoID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "videoID must be a UUID")
		return
	}
	q := r.URL.Query()
	page, err := h.service.ListByVideo(r.Context(), videoID,
		intQuery(q.Get("page"), 1), intQuery(q.Get("limit"), 10))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	videoID, err := uuid.Parse(chi.URLParam(r, "videoID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "videoID must be a UUID")
		return
	}
	var req commentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	comment, err := h.service.Create(r.Context(), identity.ID, videoID, req.Content)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, comment)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "commentID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "commentID must be a UUID")
		return
	}
	var req commentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	comment, err := h.service.Update(r.Context(), identity.ID, id, req.Content)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, comment)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "commentID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "commentID must be a UUID")
		return
	}
	if err := h.service.Delete(r.Context(), identity.ID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func intQuery(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
