package plans

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
)

// PlanDTO is the transport shape for a review plan.
type PlanDTO struct {
	ID           uuid.UUID        `json:"id"`
	OwnerID      uuid.UUID        `json:"owner_id"`
	BookID       *uuid.UUID       `json:"book_id,omitempty"`
	PlanName     string           `json:"plan_name"`
	PlanType     enums.PlanType   `json:"plan_type"`
	PricePaid    decimal.Decimal  `json:"price_paid"`
	TotalReviews int              `json:"total_reviews"`
	UsedReviews  int              `json:"used_reviews"`
	Status       enums.PlanStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
}

// FromModel converts a persisted plan to its transport shape.
func FromModel(p *models.ReviewPlan) *PlanDTO {
	if p == nil {
		return nil
	}
	return &PlanDTO{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		BookID:       p.BookID,
		PlanName:     p.PlanName,
		PlanType:     p.PlanType,
		PricePaid:    p.PricePaid,
		TotalReviews: p.TotalReviews,
		UsedReviews:  p.UsedReviews,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
	}
}

// AttachableBookDTO is the slim book shape shown when picking an attach
// target.
type AttachableBookDTO struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
}

// AttachableDTO pairs the caller's unattached plans with the approved books
// still free to bind.
type AttachableDTO struct {
	Plans []PlanDTO           `json:"plans"`
	Books []AttachableBookDTO `json:"books"`
}

// PurchaseParams is the input for buying a plan tier. SourceID is the Square
// payment token produced by the storefront.
type PurchaseParams struct {
	PlanType enums.PlanType
	PlanName string
	SourceID string
}
