package models

import (
	"time"

	"github.com/google/uuid"
)

// Referral links a referred signup to the affiliate whose code was used.
// ReferredUserID is unique so repeated recordings stay idempotent.
type Referral struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AffiliateID    uuid.UUID `gorm:"column:affiliate_id;type:uuid;not null;index"`
	ReferredUserID uuid.UUID `gorm:"column:referred_user_id;type:uuid;not null;uniqueIndex"`
	CodeUsed       string    `gorm:"column:code_used;type:text;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
