package models

import (
	"time"

	"github.com/google/uuid"
)

// CommunityPost is a forum thread root.
type CommunityPost struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AuthorID   uuid.UUID `gorm:"column:author_id;type:uuid;not null;index"`
	Title      string    `gorm:"type:text;not null"`
	Body       string    `gorm:"type:text;not null"`
	ReplyCount int       `gorm:"column:reply_count;not null;default:0"`
	Score      int       `gorm:"column:score;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
