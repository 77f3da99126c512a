package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
)

// AffiliatePayout is a withdrawal request against accumulated earnings.
type AffiliatePayout struct {
	ID          uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AffiliateID uuid.UUID          `gorm:"column:affiliate_id;type:uuid;not null;index"`
	Amount      decimal.Decimal    `gorm:"column:amount;type:numeric(12,2);not null"`
	Status      enums.PayoutStatus `gorm:"column:status;type:payout_status;not null;default:'requested'"`
	ProcessedAt *time.Time         `gorm:"column:processed_at"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
