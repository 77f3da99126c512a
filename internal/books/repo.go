package books

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
	"github.com/reviewpromax/reviewpromax-backend/pkg/pagination"
)

// Repository exposes persistence helpers for books.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, book *models.Book) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
	List(ctx context.Context, params ListQuery) ([]models.Book, *pagination.Cursor, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error)
	DecideStatus(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus, feedback *string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ArchiveApprovedByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	ListRemovableByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Book, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a books repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// ListQuery narrows the book listing by owner and status.
type ListQuery struct {
	OwnerID *uuid.UUID
	Status  *enums.ApprovalStatus
	Limit   int
	Cursor  *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *repositoryImpl) List(ctx context.Context, params ListQuery) ([]models.Book, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Book{})
	if params.OwnerID != nil {
		query = query.Where("owner_id = ?", *params.OwnerID)
	}
	if params.Status != nil {
		query = query.Where("approval_status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(uploaded_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Book
	if err := query.Order("uploaded_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[len(rows)-1]
		return rows, &pagination.Cursor{CreatedAt: last.UploadedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

func (r *repositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		UpdateColumns(fields)
	return result.RowsAffected, result.Error
}

// DecideStatus moves a book out of under_review. The WHERE clause pins the
// source state so concurrent decisions cannot double-apply.
func (r *repositoryImpl) DecideStatus(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus, feedback *string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND approval_status = ?", id, enums.ApprovalStatusUnderReview).
		UpdateColumns(map[string]any{
			"approval_status": status,
			"admin_feedback":  feedback,
			"updated_at":      time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Book{}, "id = ?", id).Error
}

func (r *repositoryImpl) ArchiveApprovedByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("owner_id = ? AND approval_status = ?", ownerID, enums.ApprovalStatusApproved).
		UpdateColumn("approval_status", enums.ApprovalStatusArchived)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) ListRemovableByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Book, error) {
	var rows []models.Book
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND approval_status NOT IN ?", ownerID,
			[]enums.ApprovalStatus{enums.ApprovalStatusApproved, enums.ApprovalStatusArchived}).
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&models.Book{}, "id IN ?", ids).Error
}
