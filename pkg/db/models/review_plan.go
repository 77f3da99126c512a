package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
)

// ReviewPlan is a purchased quota of reviews, optionally bound to one book.
// BookID transitions null to set exactly once; there is no detach path.
type ReviewPlan struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID      uuid.UUID        `gorm:"column:owner_id;type:uuid;not null;index"`
	BookID       *uuid.UUID       `gorm:"column:book_id;type:uuid;uniqueIndex"`
	PlanName     string           `gorm:"column:plan_name;type:text;not null"`
	PlanType     enums.PlanType   `gorm:"column:plan_type;type:plan_type;not null"`
	PricePaid    decimal.Decimal  `gorm:"column:price_paid;type:numeric(12,2);not null"`
	TotalReviews int              `gorm:"column:total_reviews;not null"`
	UsedReviews  int              `gorm:"column:used_reviews;not null;default:0"`
	Status       enums.PlanStatus `gorm:"column:status;type:plan_status;not null;default:'active'"`
	PaymentRef   *string          `gorm:"column:payment_ref;type:text"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
