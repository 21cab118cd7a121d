package users

import (
	"time"

	"github.com/google/uuid"
)

// Profile is a user account as shown to other users. Credential fields live
// in the auth package and are never part of this view.
type Profile struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ChannelProfile is a profile enriched with subscription counts relative to
// the viewer.
type ChannelProfile struct {
	Profile
	SubscriberCount   int64 `json:"subscribersCount"`
	SubscribedToCount int64 `json:"channelsSubscribedToCount"`
	IsSubscribed      bool  `json:"isSubscribed"`
}

// WatchEntry is one watched video in a user's history, most recent first.
type WatchEntry struct {
	VideoID       uuid.UUID `json:"videoId"`
	Title         string    `json:"title"`
	ThumbnailURL  string    `json:"thumbnail"`
	OwnerUsername string    `json:"ownerUsername"`
	WatchedAt     time.Time `json:"watchedAt"`
}
