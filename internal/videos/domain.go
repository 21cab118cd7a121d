package videos

import (
	"time"

	"github.com/google/uuid"

	"github.com/videostream/videostream/internal/shared"
)

// Video is a single uploaded video. VideoKey is the storage key in the media
// bucket; playback URLs are presigned per request and never persisted.
type Video struct {
	ID              uuid.UUID `json:"id"`
	OwnerID         uuid.UUID `json:"ownerId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationSeconds float64   `json:"duration"`
	VideoKey        string    `json:"-"`
	PlaybackURL     string    `json:"videoFile,omitempty"`
	ThumbnailURL    string    `json:"thumbnail"`
	Views           int64     `json:"views"`
	IsPublished     bool      `json:"isPublished"`
	IsReady         bool      `json:"isReady"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Owner is the uploader summary embedded in video listings.
type Owner struct {
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatar"`
}

// VideoWithOwner pairs a video with its uploader for read endpoints.
type VideoWithOwner struct {
	Video
	Owner Owner `json:"owner"`
}

// ListFilter narrows and orders the public video listing.
type ListFilter struct {
	Query    string
	SortBy   string
	SortType string
	OwnerID  *uuid.UUID
	Page     int
	Limit    int
}

// Page is one page of a video listing.
type Page struct {
	Videos     []VideoWithOwner  `json:"videos"`
	Pagination shared.Pagination `json:"pagination"`
}
