package likes

import (
	"time"

	"github.com/google/uuid"
)

// TargetKind names the kind of entity a like points at. Exactly one target
// column is set per row.
type TargetKind string

const (
	TargetVideo   TargetKind = "video"
	TargetComment TargetKind = "comment"
	TargetTweet   TargetKind = "tweet"
)

// column returns the likes table column holding the target id.
func (k TargetKind) column() string {
	switch k {
	case TargetVideo:
		return "video_id"
	case TargetComment:
		return "comment_id"
	case TargetTweet:
		return "tweet_id"
	}
	return ""
}

// Status is the like state of a target for one viewer.
type Status struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

// LikedVideo is one entry in a user's liked-videos listing.
type LikedVideo struct {
	VideoID       uuid.UUID `json:"videoId"`
	Title         string    `json:"title"`
	ThumbnailURL  string    `json:"thumbnail"`
	OwnerUsername string    `json:"ownerUsername"`
	LikedAt       time.Time `json:"likedAt"`
}
