package videos

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

const maxUploadMemory = 32 << 20

// Handler wires HTTP endpoints for videos.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    auth.Gate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate auth.Gate) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers video routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{videoID}", h.handleGet)
	r.Get("/user/{userID}", h.handleListByUser)
	r.With(h.gate.Optional).Post("/{videoID}/views", h.handleRecordView)

	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAuth)
		r.Post("/", h.handlePublish)
		r.Patch("/{videoID}", h.handleUpdate)
		r.Delete("/{videoID}", h.handleDelete)
		r.Patch("/{videoID}/toggle-publish", h.handleTogglePublish)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Query:    q.Get("query"),
		SortBy:   q.Get("sortBy"),
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

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "videoID")
	if !ok {
		return
	}
	video, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, video)
}

func (h *Handler) handleListByUser(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	q := r.URL.Query()
	page, err := h.service.ListByOwner(r.Context(), ownerID,
		intQuery(q.Get("page"), 1), intQuery(q.Get("limit"), 10))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "multipart form expected")
		return
	}
	videoFile, videoHeader, err := r.FormFile("videoFile")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "videoFile is required")
		return
	}
	defer videoFile.Close()
	thumbFile, thumbHeader, err := r.FormFile("thumbnail")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "thumbnail is required")
		return
	}
	defer thumbFile.Close()

	duration, _ := strconv.ParseFloat(r.FormValue("duration"), 64)
	input := PublishInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Duration:    duration,
	}
	video, err := h.service.Publish(r.Context(), identity.ID, input,
		videoFile, videoHeader, thumbFile, thumbHeader)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, video)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := pathUUID(w, r, "videoID")
	if !ok {
		return
	}

	// Metadata edits arrive as multipart so the thumbnail can ride along.
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "multipart form expected")
		return
	}
	thumbnailURL := ""
	if thumbFile, thumbHeader, err := r.FormFile("thumbnail"); err == nil {
		defer thumbFile.Close()
		thumbnailURL, err = h.service.media.UploadImage(r.Context(), "thumbnails", thumbFile, thumbHeader)
		if err != nil {
			h.logger.Error("upload thumbnail", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "failed to upload thumbnail")
			return
		}
	}

	video, err := h.service.Update(r.Context(), identity.ID, id,
		r.FormValue("title"), r.FormValue("description"), thumbnailURL)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, video)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := pathUUID(w, r, "videoID")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), identity.ID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleTogglePublish(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := pathUUID(w, r, "videoID")
	if !ok {
		return
	}
	published, err := h.service.TogglePublish(r.Context(), identity.ID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"isPublished": published})
}

func (h *Handler) handleRecordView(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "videoID")
	if !ok {
		return
	}
	if err := h.service.RecordView(r.Context(), id, shared.IdentityFromContext(r.Context())); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", param+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
