package models

import (
	"time"

	"github.com/google/uuid"
)

// HelpArticle is a knowledge-base entry served by the help center.
type HelpArticle struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Slug      string    `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Title     string    `gorm:"type:text;not null"`
	Body      string    `gorm:"type:text;not null"`
	Category  string    `gorm:"type:text;not null"`
	Published bool      `gorm:"column:published;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
