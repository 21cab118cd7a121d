package tweets

import (
	"time"

	"github.com/google/uuid"

	"github.com/videostream/videostream/internal/shared"
)

// Tweet is a short text post on a user's channel.
type Tweet struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TweetWithOwner pairs a tweet with its author summary for read endpoints.
type TweetWithOwner struct {
	Tweet
	OwnerUsername string `json:"ownerUsername"`
	OwnerAvatar   string `json:"ownerAvatar"`
}

// ListFilter narrows and orders the tweet listing.
type ListFilter struct {
	Query    string
	SortType string
	OwnerID  *uuid.UUID
	Page     int
	Limit    int
}

// Page is one page of a tweet listing.
type Page struct {
	Tweets     []TweetWithOwner  `json:"tweets"`
	Pagination shared.Pagination `json:"pagination"`
}
