package models

import "time"

// PostLog is one publish attempt against one platform. The table is
// append-only; rows are never updated or deleted. PlatformPostID and
// ErrorMessage are stored as NULL when empty.
type PostLog struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	Platform       string    `db:"platform" json:"platform"`
	Status         string    `db:"status" json:"status"`
	PlatformPostID string    `db:"platform_post_id" json:"platform_post_id"`
	ErrorMessage   string    `db:"error_message" json:"error_message"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

const (
	PublishStatusSuccess = "success"
	PublishStatusFailure = "failure"
)

// Post kinds accepted in publish requests. Which kinds a platform
// supports, and whether media is mandatory for a kind, is decided by
// that platform's adapter.
const (
	KindPost  = "post"
	KindReel  = "reel"
	KindStory = "story"
	KindShort = "short"
	KindVideo = "video"
)
