package tweets

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/videostream/videostream/internal/platform/httpx"
	"github.com/videostream/videostream/internal/shared"
)

const maxTweetLength = 500

// RepositoryPort defines data access methods for tweets.
type RepositoryPort interface {
	Create(ctx context.Context, t *Tweet) error
	GetByID(ctx context.Context, id uuid.UUID) (*TweetWithOwner, error)
	List(ctx context.Context, filter ListFilter) ([]TweetWithOwner, int, error)
	Update(ctx context.Context, id uuid.UUID, content string) (*TweetWithOwner, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service handles tweet business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create posts a new tweet for the author.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, content string) (*TweetWithOwner, error) {
	content, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}
	tweet := &Tweet{ID: uuid.New(), OwnerID: ownerID, Content: content}
	if err := s.repo.Create(ctx, tweet); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, tweet.ID)
}

// List returns tweets matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (*Page, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []TweetWithOwner{}
	}
	return &Page{Tweets: items, Pagination: shared.NewPagination(filter.Page, filter.Limit, total)}, nil
}

// Update edits a tweet; only the author may do so.
func (s *Service) Update(ctx context.Context, actorID, id uuid.UUID, content string) (*TweetWithOwner, error) {
	if err := s.requireOwner(ctx, actorID, id); err != nil {
		return nil, err
	}
	content, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, content)
}

// Delete removes a tweet; only the author may do so.
func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.requireOwner(ctx, actorID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) requireOwner(ctx context.Context, actorID, id uuid.UUID) error {
	tweet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tweet.OwnerID != actorID {
		return fmt.Errorf("%w: only the author may modify this tweet", httpx.ErrForbidden)
	}
	return nil
}

func normalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: content is required", httpx.ErrValidation)
	}
	if len(content) > maxTweetLength {
		return "", fmt.Errorf("%w: content exceeds %d characters", httpx.ErrValidation, maxTweetLength)
	}
	return content, nil
}
