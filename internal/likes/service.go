package likes

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryPort defines data access methods for likes.
type RepositoryPort interface {
	Toggle(ctx context.Context, userID uuid.UUID, kind TargetKind, targetID uuid.UUID) (bool, error)
	Count(ctx context.Context, kind TargetKind, targetID uuid.UUID) (int64, error)
	IsLiked(ctx context.Context, userID uuid.UUID, kind TargetKind, targetID uuid.UUID) (bool, error)
	LikedVideos(ctx context.Context, userID uuid.UUID) ([]LikedVideo, error)
}

// Service handles like business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Toggle flips the like state and returns the resulting status with the new
// count.
func (s *Service) Toggle(ctx context.Context, userID uuid.UUID, kind TargetKind, targetID uuid.UUID) (*Status, error) {
	liked, err := s.repo.Toggle(ctx, userID, kind, targetID)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.Count(ctx, kind, targetID)
	if err != nil {
		return nil, err
	}
	return &Status{Liked: liked, Count: count}, nil
}

// Status returns the caller's like state and the total count for a target.
func (s *Service) Status(ctx context.Context, userID uuid.UUID, kind TargetKind, targetID uuid.UUID) (*Status, error) {
	liked, err := s.repo.IsLiked(ctx, userID, kind, targetID)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.Count(ctx, kind, targetID)
	if err != nil {
		return nil, err
	}
	return &Status{Liked: liked, Count: count}, nil
}

// LikedVideos returns the caller's liked videos.
func (s *Service) LikedVideos(ctx context.Context, userID uuid.UUID) ([]LikedVideo, error) {
	items, err := s.repo.LikedVideos(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []LikedVideo{}
	}
	return items, nil
}
