package tweets

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/videostream/videostream/internal/auth"
	"github.com/videostream/videostream/internal/platform/httpx"
	"github.com/videostream/videostream/internal/shared"
)

// Handler wires HTTP endpoints for tweets.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      auth.Gate
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate auth.Gate) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, validator: validator.New()}
}

// MountRoutes registers tweet routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/user/{userID}", h.handleListByUser)

	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAuth)
		r.Post("/", h.handleCreate)
		r.Patch("/{tweetID}", h.handleUpdate)
		r.Delete("/{tweetID}", h.handleDelete)
	})
}

type tweetRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	var req tweetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "content is required")
		return
	}
	tweet, err := h.service.Create(r.Context(), identity.ID, req.Content)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, tweet)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Query:    q.Get("query"),
		SortType: q.Get("sortType"),
		Page:     intQuery(q.Get("page"), 1),
		Limit:    intQuery(q.Get("limit"), 10),
	}
	if raw := q.Get("userId"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "userId must be a UUID")
			return
		}
		filter.OwnerID = &ownerID
	}
	page, err := h.service.List(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) handleListByUser(w http.ResponseWriter, r *http.Request) {
	ownerID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "userID must be a UUID")
		return
	}
	q := r.URL.Query()
	page, err := h.service.List(r.Context(), ListFilter{
		OwnerID: &ownerID,
		Page:    intQuery(q.Get("page"), 1),
		Limit:   intQuery(q.Get("limit"), 10),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "tweetID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "tweetID must be a UUID")
		return
	}
	var req tweetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	tweet, err := h.service.Update(r.Context(), identity.ID, id, req.Content)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tweet)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "tweetID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "tweetID must be a UUID")
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
