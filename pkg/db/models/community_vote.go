package models

import (
	"time"

	"github.com/google/uuid"
)

// CommunityVote is a single user's vote on a post. Value is -1 or +1;
// (user_id, post_id) is unique so re-voting upserts.
type CommunityVote struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PostID    uuid.UUID `gorm:"column:post_id;type:uuid;not null;uniqueIndex:idx_vote_user_post"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_vote_user_post"`
	Value     int       `gorm:"column:value;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
