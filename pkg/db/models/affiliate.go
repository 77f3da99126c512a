package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
)

// Affiliate is a referral-program member. TotalEarnings and TotalReferrals are
// maintained in the same transaction as the commission/referral rows they
// summarize, so the counters cannot drift from the detail rows.
type Affiliate struct {
	ID             uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID             `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Code           string                `gorm:"column:code;type:text;not null;uniqueIndex"`
	Status         enums.AffiliateStatus `gorm:"column:status;type:affiliate_status;not null;default:'pending'"`
	TotalEarnings  decimal.Decimal       `gorm:"column:total_earnings;type:numeric(12,2);not null;default:0"`
	TotalReferrals int                   `gorm:"column:total_referrals;not null;default:0"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
