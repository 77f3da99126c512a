package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
)

// AffiliateCommission records a single commission earned by an affiliate.
type AffiliateCommission struct {
	ID          uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AffiliateID uuid.UUID              `gorm:"column:affiliate_id;type:uuid;not null;index"`
	ReferralID  *uuid.UUID             `gorm:"column:referral_id;type:uuid"`
	Amount      decimal.Decimal        `gorm:"column:amount;type:numeric(12,2);not null"`
	RatePercent decimal.Decimal        `gorm:"column:rate_percent;type:numeric(5,2);not null"`
	Status      enums.CommissionStatus `gorm:"column:status;type:commission_status;not null;default:'pending'"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
