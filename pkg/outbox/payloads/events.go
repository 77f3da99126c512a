package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
)

// BookSubmittedEvent signals a new book entering the moderation queue.
type BookSubmittedEvent struct {
	BookID  uuid.UUID `json:"book_id"`
	OwnerID uuid.UUID `json:"owner_id"`
	Title   string    `json:"title"`
}

// BookStatusChangedEvent is emitted when an admin decides a book.
type BookStatusChangedEvent struct {
	BookID   uuid.UUID            `json:"book_id"`
	OwnerID  uuid.UUID            `json:"owner_id"`
	Title    string               `json:"title"`
	Status   enums.ApprovalStatus `json:"status"`
	Feedback string               `json:"feedback,omitempty"`
}

// PlanPurchasedEvent records a completed plan purchase.
type PlanPurchasedEvent struct {
	PlanID    uuid.UUID       `json:"plan_id"`
	OwnerID   uuid.UUID       `json:"owner_id"`
	PlanType  enums.PlanType  `json:"plan_type"`
	PricePaid decimal.Decimal `json:"price_paid"`
}

// PlanAttachedEvent is emitted when a plan binds to an approved book.
type PlanAttachedEvent struct {
	PlanID  uuid.UUID `json:"plan_id"`
	BookID  uuid.UUID `json:"book_id"`
	OwnerID uuid.UUID `json:"owner_id"`
}

// PlanCompletedEvent fires when used reviews reach the plan capacity.
type PlanCompletedEvent struct {
	PlanID       uuid.UUID `json:"plan_id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	TotalReviews int       `json:"total_reviews"`
}

// AffiliateStatusChangedEvent mirrors admin decisions on affiliates.
type AffiliateStatusChangedEvent struct {
	AffiliateID uuid.UUID             `json:"affiliate_id"`
	UserID      uuid.UUID             `json:"user_id"`
	Status      enums.AffiliateStatus `json:"status"`
}

// CommissionRecordedEvent signals a new commission row.
type CommissionRecordedEvent struct {
	CommissionID uuid.UUID       `json:"commission_id"`
	AffiliateID  uuid.UUID       `json:"affiliate_id"`
	Amount       decimal.Decimal `json:"amount"`
}

// PayoutProcessedEvent is emitted when an admin settles a payout request.
type PayoutProcessedEvent struct {
	PayoutID    uuid.UUID          `json:"payout_id"`
	AffiliateID uuid.UUID          `json:"affiliate_id"`
	Amount      decimal.Decimal    `json:"amount"`
	Status      enums.PayoutStatus `json:"status"`
	ProcessedAt time.Time          `json:"processed_at"`
}

// UserBannedEvent records the ban cascade outcome.
type UserBannedEvent struct {
	UserID        uuid.UUID `json:"user_id"`
	BooksArchived int       `json:"books_archived"`
	BooksDeleted  int       `json:"books_deleted"`
	BannedAt      time.Time `json:"banned_at"`
}
