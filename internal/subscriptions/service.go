package subscriptions

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/videostream/videostream/internal/platform/httpx"
)

// RepositoryPort defines data access methods for subscriptions.
type RepositoryPort interface {
	Toggle(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error)
	IsSubscribed(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error)
	CountSubscribers(ctx context.Context, channelID uuid.UUID) (int64, error)
	SubscribedChannels(ctx context.Context, subscriberID uuid.UUID) ([]ChannelSummary, error)
	Subscribers(ctx context.Context, channelID uuid.UUID) ([]ChannelSummary, error)
	ChannelDetails(ctx context.Context, channelID, viewerID uuid.UUID) (*ChannelDetails, error)
}

// Service handles subscription business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Toggle flips the viewer's subscription to the channel. Subscribing to
// yourself is rejected.
func (s *Service) Toggle(ctx context.Context, subscriberID, channelID uuid.UUID) (*Status, error) {
	if subscriberID == channelID {
		return nil, fmt.Errorf("%w: cannot subscribe to your own channel", httpx.ErrValidation)
	}
	subscribed, err := s.repo.Toggle(ctx, subscriberID, channelID)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountSubscribers(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return &Status{Subscribed: subscribed, SubscriberCount: count}, nil
}

// IsSubscribed returns the viewer's standing with the channel.
func (s *Service) IsSubscribed(ctx context.Context, subscriberID, channelID uuid.UUID) (*Status, error) {
	subscribed, err := s.repo.IsSubscribed(ctx, subscriberID, channelID)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountSubscribers(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return &Status{Subscribed: subscribed, SubscriberCount: count}, nil
}

// SubscribedChannels returns the channels the user subscribes to.
func (s *Service) SubscribedChannels(ctx context.Context, userID uuid.UUID) ([]ChannelSummary, error) {
	items, err := s.repo.SubscribedChannels(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []ChannelSummary{}
	}
	return items, nil
}

// Subscribers returns the channel's subscriber list.
func (s *Service) Subscribers(ctx context.Context, channelID uuid.UUID) ([]ChannelSummary, error) {
	items, err := s.repo.Subscribers(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []ChannelSummary{}
	}
	return items, nil
}

// ChannelDetails returns the channel's profile relative to the viewer.
func (s *Service) ChannelDetails(ctx context.Context, channelID, viewerID uuid.UUID) (*ChannelDetails, error) {
	return s.repo.ChannelDetails(ctx, channelID, viewerID)
}
