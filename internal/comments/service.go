package comments

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/videostream/videostream/internal/platform/httpx"
	"github.com/videostream/videostream/internal/shared"
)

// RepositoryPort defines data access methods for comments.
type RepositoryPort interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*CommentWithOwner, error)
	ListByVideo(ctx context.Context, videoID uuid.UUID, page shared.Pagination) ([]CommentWithOwner, int, error)
	Update(ctx context.Context, id uuid.UUID, content string) (*CommentWithOwner, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// VideoChecker reports whether a video exists; comments are only accepted on
// existing videos.
type VideoChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service handles comment business logic.
type Service struct {
	repo   RepositoryPort
	videos VideoChecker
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, videos VideoChecker) *Service {
	return &Service{repo: repo, videos: videos}
}

// Create posts a comment on a video.
func (s *Service) Create(ctx context.Context, ownerID, videoID uuid.UUID, content string) (*CommentWithOwner, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", httpx.ErrValidation)
	}
	exists, err := s.videos.Exists(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: video does not exist", httpx.ErrNotFound)
	}
	comment := &Comment{ID: uuid.New(), VideoID: videoID, OwnerID: ownerID, Content: content}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, comment.ID)
}

// ListByVideo returns one page of a video's comments.
func (s *Service) ListByVideo(ctx context.Context, videoID uuid.UUID, pageNum, limit int) (*Page, error) {
	page := shared.NewPagination(pageNum, limit, 0)
	items, total, err := s.repo.ListByVideo(ctx, videoID, page)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []CommentWithOwner{}
	}
	return &Page{Comments: items, Pagination: shared.NewPagination(pageNum, limit, total)}, nil
}

// Update edits a comment; only the author may do so.
func (s *Service) Update(ctx context.Context, actorID, id uuid.UUID, content string) (*CommentWithOwner, error) {
	if err := s.requireOwner(ctx, actorID, id); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", httpx.ErrValidation)
	}
	return s.repo.Update(ctx, id, content)
}

// Delete removes a comment; only the author may do so.
func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.requireOwner(ctx, actorID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) requireOwner(ctx context.Context, actorID, id uuid.UUID) error {
	comment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.OwnerID != actorID {
		return fmt.Errorf("%w: only the author may modify this comment", httpx.ErrForbidden)
	}
	return nil
}
