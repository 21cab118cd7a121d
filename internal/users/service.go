package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/videostream/videostream/internal/platform/httpx"
)

// RepositoryPort defines data access methods for profiles.
type RepositoryPort interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName, email string) (*Profile, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, url string) (*Profile, error)
	UpdateCoverImage(ctx context.Context, id uuid.UUID, url string) (*Profile, error)
	CountSubscribers(ctx context.Context, channelID uuid.UUID) (int64, error)
	CountSubscriptions(ctx context.Context, userID uuid.UUID) (int64, error)
	IsSubscribed(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error)
	WatchHistory(ctx context.Context, userID uuid.UUID) ([]WatchEntry, error)
}

// Service handles profile business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// GetProfile returns the profile for a user id.
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.repo.GetProfile(ctx, id)
}

// UpdateProfile changes full name and email.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, email string) (*Profile, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" {
		return nil, fmt.Errorf("%w: fullName and email are required", httpx.ErrValidation)
	}
	return s.repo.UpdateProfile(ctx, id, fullName, email)
}

// UpdateAvatar stores the new avatar URL.
func (s *Service) UpdateAvatar(ctx context.Context, id uuid.UUID, url string) (*Profile, error) {
	return s.repo.UpdateAvatar(ctx, id, url)
}

// UpdateCoverImage stores the new cover image URL.
func (s *Service) UpdateCoverImage(ctx context.Context, id uuid.UUID, url string) (*Profile, error) {
	return s.repo.UpdateCoverImage(ctx, id, url)
}

// ChannelProfile assembles a channel view of the named user for the given
// viewer, fanning the three subscription lookups out concurrently.
func (s *Service) ChannelProfile(ctx context.Context, username string, viewerID uuid.UUID) (*ChannelProfile, error) {
	profile, err := s.repo.GetProfileByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	channel := &ChannelProfile{Profile: *profile}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountSubscribers(gctx, profile.ID)
		channel.SubscriberCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountSubscriptions(gctx, profile.ID)
		channel.SubscribedToCount = n
		return err
	})
	g.Go(func() error {
		subscribed, err := s.repo.IsSubscribed(gctx, viewerID, profile.ID)
		channel.IsSubscribed = subscribed
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return channel, nil
}

// WatchHistory returns the viewer's watch history.
func (s *Service) WatchHistory(ctx context.Context, userID uuid.UUID) ([]WatchEntry, error) {
	return s.repo.WatchHistory(ctx, userID)
}
