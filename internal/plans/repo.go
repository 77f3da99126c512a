package plans

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
)

// Repository exposes persistence helpers for review plans.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, plan *models.ReviewPlan) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ReviewPlan, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.ReviewPlan, error)
	ListUnattached(ctx context.Context, ownerID uuid.UUID) ([]models.ReviewPlan, error)
	ListAttachableBooks(ctx context.Context, ownerID uuid.UUID) ([]models.Book, error)
	Attach(ctx context.Context, planID, ownerID, bookID uuid.UUID) (int64, error)
	ConsumeReview(ctx context.Context, planID uuid.UUID) (int64, error)
	Complete(ctx context.Context, planID uuid.UUID) (int64, error)
	FindByPaymentRef(ctx context.Context, paymentRef string) (*models.ReviewPlan, error)
	CancelByPaymentRef(ctx context.Context, paymentRef string) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a plans repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, plan *models.ReviewPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.ReviewPlan, error) {
	var plan models.ReviewPlan
	if err := r.db.WithContext(ctx).First(&plan, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repositoryImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.ReviewPlan, error) {
	var rows []models.ReviewPlan
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListUnattached returns the owner's active plans with no book bound yet.
func (r *repositoryImpl) ListUnattached(ctx context.Context, ownerID uuid.UUID) ([]models.ReviewPlan, error) {
	var rows []models.ReviewPlan
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND book_id IS NULL AND status = ?", ownerID, enums.PlanStatusActive).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListAttachableBooks returns the owner's approved books that no plan is
// bound to.
func (r *repositoryImpl) ListAttachableBooks(ctx context.Context, ownerID uuid.UUID) ([]models.Book, error) {
	var rows []models.Book
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND approval_status = ?", ownerID, enums.ApprovalStatusApproved).
		Where("NOT EXISTS (SELECT 1 FROM review_plans WHERE review_plans.book_id = books.id)").
		Order("uploaded_at DESC").
		Find(&rows).Error
	return rows, err
}

// Attach binds the plan to a book. The write is guarded so a plan can only be
// attached once and only while it is still active.
func (r *repositoryImpl) Attach(ctx context.Context, planID, ownerID, bookID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ReviewPlan{}).
		Where("id = ? AND owner_id = ? AND book_id IS NULL AND status = ?",
			planID, ownerID, enums.PlanStatusActive).
		UpdateColumn("book_id", bookID)
	return result.RowsAffected, result.Error
}

// ConsumeReview bumps used_reviews, guarded against exceeding the capacity.
func (r *repositoryImpl) ConsumeReview(ctx context.Context, planID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ReviewPlan{}).
		Where("id = ? AND status = ? AND used_reviews < total_reviews",
			planID, enums.PlanStatusActive).
		UpdateColumn("used_reviews", gorm.Expr("used_reviews + 1"))
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) FindByPaymentRef(ctx context.Context, paymentRef string) (*models.ReviewPlan, error) {
	var plan models.ReviewPlan
	if err := r.db.WithContext(ctx).First(&plan, "payment_ref = ?", paymentRef).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// CancelByPaymentRef voids an active plan whose charge failed or was refunded.
func (r *repositoryImpl) CancelByPaymentRef(ctx context.Context, paymentRef string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ReviewPlan{}).
		Where("payment_ref = ? AND status = ?", paymentRef, enums.PlanStatusActive).
		UpdateColumn("status", enums.PlanStatusCancelled)
	return result.RowsAffected, result.Error
}

// Complete flips an exhausted plan to completed.
func (r *repositoryImpl) Complete(ctx context.Context, planID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ReviewPlan{}).
		Where("id = ? AND status = ? AND used_reviews >= total_reviews",
			planID, enums.PlanStatusActive).
		UpdateColumn("status", enums.PlanStatusCompleted)
	return result.RowsAffected, result.Error
}
