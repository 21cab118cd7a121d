package videos

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/videostream/videostream/internal/platform/httpx"
	"github.com/videostream/videostream/internal/shared"
)

// ViewCounterPrefix is the redis key prefix for per-video pending view
// counters; the flush job drains every key under it into postgres.
const ViewCounterPrefix = "video:views:"

// ViewCounterKey returns the redis counter key for a video.
func ViewCounterKey(id uuid.UUID) string {
	return ViewCounterPrefix + id.String()
}

// RepositoryPort defines data access methods for videos.
type RepositoryPort interface {
	Create(ctx context.Context, v *Video) error
	GetByID(ctx context.Context, id uuid.UUID) (*VideoWithOwner, error)
	List(ctx context.Context, filter ListFilter) ([]VideoWithOwner, int, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, page shared.Pagination) ([]VideoWithOwner, int, error)
	Update(ctx context.Context, id uuid.UUID, title, description, thumbnailURL string) (*VideoWithOwner, error)
	Delete(ctx context.Context, id uuid.UUID) error
	TogglePublish(ctx context.Context, id uuid.UUID) (bool, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	UpsertWatch(ctx context.Context, userID, videoID uuid.UUID) error
}

// MediaStore covers the media operations the video service needs.
type MediaStore interface {
	UploadVideo(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error)
	UploadImage(ctx context.Context, prefix string, file multipart.File, header *multipart.FileHeader) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// ProbeEnqueuer schedules the post-upload media probe.
type ProbeEnqueuer interface {
	EnqueueVideoProbe(ctx context.Context, videoID uuid.UUID) error
}

// PublishInput carries the metadata fields of a video upload. Duration is
// the uploader's claim in seconds; the probe job keeps it unless it learns a
// better value.
type PublishInput struct {
	Title       string
	Description string
	Duration    float64
}

// Service handles video business logic.
type Service struct {
	logger   *slog.Logger
	repo     RepositoryPort
	media    MediaStore
	enqueuer ProbeEnqueuer
	redis    *redis.Client
}

// NewService builds a Service instance.
func NewService(logger *slog.Logger, repo RepositoryPort, media MediaStore, enqueuer ProbeEnqueuer, rdb *redis.Client) *Service {
	return &Service{logger: logger, repo: repo, media: media, enqueuer: enqueuer, redis: rdb}
}

// Publish uploads the video file and thumbnail, persists the record and
// schedules the probe job that will mark it ready.
func (s *Service) Publish(ctx context.Context, ownerID uuid.UUID, input PublishInput,
	videoFile multipart.File, videoHeader *multipart.FileHeader,
	thumbFile multipart.File, thumbHeader *multipart.FileHeader) (*VideoWithOwner, error) {

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", httpx.ErrValidation)
	}

	videoKey, err := s.media.UploadVideo(ctx, videoFile, videoHeader)
	if err != nil {
		return nil, err
	}
	thumbnailURL, err := s.media.UploadImage(ctx, "thumbnails", thumbFile, thumbHeader)
	if err != nil {
		return nil, err
	}

	video := &Video{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		Title:           input.Title,
		Description:     strings.TrimSpace(input.Description),
		DurationSeconds: max(input.Duration, 0),
		VideoKey:        videoKey,
		ThumbnailURL:    thumbnailURL,
		IsPublished:     true,
	}
	if err := s.repo.Create(ctx, video); err != nil {
		return nil, err
	}
	if err := s.enqueuer.EnqueueVideoProbe(ctx, video.ID); err != nil {
		// The row exists; readiness just waits for the next probe pass.
		s.logger.Error("enqueue video probe", slog.Any("error", err),
			slog.String("video_id", video.ID.String()))
	}
	return s.repo.GetByID(ctx, video.ID)
}

// Get returns a video with a presigned playback URL.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*VideoWithOwner, error) {
	video, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withPlaybackURL(ctx, video), nil
}

// List returns published videos matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (*Page, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []VideoWithOwner{}
	}
	return &Page{Videos: items, Pagination: shared.NewPagination(filter.Page, filter.Limit, total)}, nil
}

// ListByOwner returns one page of a user's videos.
func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID, pageNum, limit int) (*Page, error) {
	page := shared.NewPagination(pageNum, limit, 0)
	items, total, err := s.repo.ListByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []VideoWithOwner{}
	}
	return &Page{Videos: items, Pagination: shared.NewPagination(pageNum, limit, total)}, nil
}

// Update changes video metadata; only the owner may do so.
func (s *Service) Update(ctx context.Context, actorID, id uuid.UUID, title, description, thumbnailURL string) (*VideoWithOwner, error) {
	if err := s.requireOwner(ctx, actorID, id); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", httpx.ErrValidation)
	}
	return s.repo.Update(ctx, id, title, strings.TrimSpace(description), thumbnailURL)
}

// Delete removes a video; only the owner may do so.
func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.requireOwner(ctx, actorID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// TogglePublish flips visibility; only the owner may do so.
func (s *Service) TogglePublish(ctx context.Context, actorID, id uuid.UUID) (bool, error) {
	if err := s.requireOwner(ctx, actorID, id); err != nil {
		return false, err
	}
	return s.repo.TogglePublish(ctx, id)
}

// RecordView bumps the redis view counter and, for authenticated viewers,
// records watch history. The counter reaches postgres via the flush job.
func (s *Service) RecordView(ctx context.Context, videoID uuid.UUID, viewer *shared.Identity) error {
	exists, err := s.repo.Exists(ctx, videoID)
	if err != nil {
		return err
	}
	if !exists {
		return httpx.ErrNotFound
	}
	if err := s.redis.Incr(ctx, ViewCounterKey(videoID)).Err(); err != nil {
		return fmt.Errorf("videos: incr view counter: %w", err)
	}
	if viewer != nil {
		if err := s.repo.UpsertWatch(ctx, viewer.ID, videoID); err != nil {
			s.logger.Error("record watch history", slog.Any("error", err),
				slog.String("video_id", videoID.String()))
		}
	}
	return nil
}

func (s *Service) requireOwner(ctx context.Context, actorID, id uuid.UUID) error {
	video, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if video.OwnerID != actorID {
		return fmt.Errorf("%w: only the owner may modify this video", httpx.ErrForbidden)
	}
	return nil
}

func (s *Service) withPlaybackURL(ctx context.Context, video *VideoWithOwner) *VideoWithOwner {
	url, err := s.media.PresignGet(ctx, video.VideoKey)
	if err != nil {
		s.logger.Error("presign playback url", slog.Any("error", err),
			slog.String("video_id", video.ID.String()))
		return video
	}
	video.PlaybackURL = url
	return video
}
