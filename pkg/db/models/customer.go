package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer holds billing-side state for a user. LifetimeSpend is a price
// snapshot accumulated at purchase time, never re-derived from plan pricing.
type Customer struct {
	UserID        uuid.UUID       `gorm:"column:user_id;type:uuid;primaryKey"`
	LifetimeSpend decimal.Decimal `gorm:"column:lifetime_spend;type:numeric(12,2);not null;default:0"`
	PlansOwned    int             `gorm:"column:plans_owned;not null;default:0"`
	BannedAt      *time.Time      `gorm:"column:banned_at"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
