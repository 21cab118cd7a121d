package subscriptions

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/videostream/videostream/internal/auth"
	"github.com/videostream/videostream/internal/platform/httpx"
	"github.com/videostream/videostream/internal/shared"
)

// Handler wires HTTP endpoints for subscriptions; every route requires
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

// MountRoutes registers subscription routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAuth)
		r.Post("/c/{channelID}", h.handleToggle)
		r.Get("/c/{userID}", h.handleSubscribedChannels)
		r.Get("/u/{channelID}", h.handleSubscribers)
		r.Get("/{channelID}/subscribed", h.handleStatus)
		r.Get("/{channelID}", h.handleChannelDetails)
	})
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	channelID, ok := pathUUID(w, r, "channelID")
	if !ok {
		return
	}
	status, err := h.service.Toggle(r.Context(), identity.ID, channelID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, status)
}

func (h *Handler) handleSubscribedChannels(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	items, err := h.service.SubscribedChannels(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) handleSubscribers(w http.ResponseWriter, r *http.Request) {
	channelID, ok := pathUUID(w, r, "channelID")
	if !ok {
		return
	}
	items, err := h.service.Subscribers(r.Context(), channelID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	channelID, ok := pathUUID(w, r, "channelID")
	if !ok {
		return
	}
	status, err := h.service.IsSubscribed(r.Context(), identity.ID, channelID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, status)
}

func (h *Handler) handleChannelDetails(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	channelID, ok := pathUUID(w, r, "channelID")
	if !ok {
		return
	}
	details, err := h.service.ChannelDetails(r.Context(), channelID, identity.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", param+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
