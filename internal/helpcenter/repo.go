package helpcenter

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
)

// Repository exposes persistence helpers for help center articles.
type Repository interface {
	Create(ctx context.Context, article *models.HelpArticle) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.HelpArticle, error)
	FindBySlug(ctx context.Context, slug string) (*models.HelpArticle, error)
	List(ctx context.Context, query ListQuery) ([]models.HelpArticle, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListQuery narrows the article listing. PublishedOnly hides drafts from
// non-admin readers.
type ListQuery struct {
	Category      string
	PublishedOnly bool
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a help center repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, article *models.HelpArticle) error {
	return r.db.WithContext(ctx).Create(article).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.HelpArticle, error) {
	var article models.HelpArticle
	if err := r.db.WithContext(ctx).First(&article, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *repositoryImpl) FindBySlug(ctx context.Context, slug string) (*models.HelpArticle, error) {
	var article models.HelpArticle
	if err := r.db.WithContext(ctx).First(&article, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *repositoryImpl) List(ctx context.Context, query ListQuery) ([]models.HelpArticle, error) {
	q := r.db.WithContext(ctx).Model(&models.HelpArticle{})
	if query.Category != "" {
		q = q.Where("category = ?", query.Category)
	}
	if query.PublishedOnly {
		q = q.Where("published = TRUE")
	}

	var rows []models.HelpArticle
	err := q.Order("category ASC, title ASC").Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.HelpArticle{}).
		Where("id = ?", id).
		UpdateColumns(fields)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.HelpArticle{}, "id = ?", id).Error
}
