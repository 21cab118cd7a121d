package subscriptions

import (
	"time"

	"github.com/google/uuid"
)

// ChannelSummary is a channel as shown in subscription listings.
type ChannelSummary struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"fullName"`
	AvatarURL    string    `json:"avatar"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

// ChannelDetails is a channel with its subscription standing relative to the
// viewer.
type ChannelDetails struct {
	ID              uuid.UUID `json:"id"`
	Username        string    `json:"username"`
	FullName        string    `json:"fullName"`
	AvatarURL       string    `json:"avatar"`
	CoverImageURL   string    `json:"coverImage"`
	SubscriberCount int64     `json:"subscribersCount"`
	IsSubscribed    bool      `json:"isSubscribed"`
}

// Status is the toggle outcome for a viewer and channel.
type Status struct {
	Subscribed      bool  `json:"subscribed"`
	SubscriberCount int64 `json:"subscribersCount"`
}
