package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
)

// Book is an author-submitted title moving through the moderation lifecycle.
type Book struct {
	ID              uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID         uuid.UUID            `gorm:"column:owner_id;type:uuid;not null;index"`
	Title           string               `gorm:"type:text;not null"`
	Author          string               `gorm:"type:text;not null"`
	Description     string               `gorm:"type:text;not null"`
	Genre           enums.Genre          `gorm:"column:genre;type:genre;not null"`
	Language        enums.Language       `gorm:"column:language;type:language;not null"`
	ASIN            string               `gorm:"column:asin;type:text;not null"`
	ExplicitContent bool                 `gorm:"column:explicit_content;not null;default:false"`
	ManuscriptKey   string               `gorm:"column:manuscript_key;type:text;not null"`
	CoverKey        string               `gorm:"column:cover_key;type:text;not null"`
	ManuscriptURL   string               `gorm:"column:manuscript_url;type:text;not null"`
	CoverURL        string               `gorm:"column:cover_url;type:text;not null"`
	ApprovalStatus  enums.ApprovalStatus `gorm:"column:approval_status;type:approval_status;not null;default:'under_review'"`
	AdminFeedback   *string              `gorm:"column:admin_feedback;type:text"`
	UploadStatus    enums.UploadStatus   `gorm:"column:upload_status;type:upload_status;not null;default:'uploaded'"`
	UploadedAt      time.Time            `gorm:"column:uploaded_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
