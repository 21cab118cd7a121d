package comments

import (
	"time"

	"github.com/google/uuid"

	"github.com/videostream/videostream/internal/shared"
)

// Comment is a user comment on a video.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	VideoID   uuid.UUID `json:"videoId"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommentWithOwner pairs a comment with its author summary.
type CommentWithOwner struct {
	Comment
	OwnerUsername string `json:"ownerUsername"`
	OwnerAvatar   string `json:"ownerAvatar"`
}

// Page is one page of comments on a video, newest first.
type Page struct {
	Comments   []CommentWithOwner `json:"comments"`
	Pagination shared.Pagination  `json:"pagination"`
}
