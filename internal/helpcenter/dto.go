package helpcenter

import (
	"time"

	"github.com/google/uuid"

	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
)

// ArticleDTO is the transport shape for a help article.
type ArticleDTO struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArticleSummaryDTO omits the body for listing endpoints.
type ArticleSummaryDTO struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Published bool      `json:"published"`
	UpdatedAt time.Time `json:"updated_at"`
}

func fromModel(a *models.HelpArticle) *ArticleDTO {
	return &ArticleDTO{
		ID:        a.ID,
		Slug:      a.Slug,
		Title:     a.Title,
		Body:      a.Body,
		Category:  a.Category,
		Published: a.Published,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func summaryFromModel(a *models.HelpArticle) ArticleSummaryDTO {
	return ArticleSummaryDTO{
		ID:        a.ID,
		Slug:      a.Slug,
		Title:     a.Title,
		Category:  a.Category,
		Published: a.Published,
		UpdatedAt: a.UpdatedAt,
	}
}

// CreateArticleParams is the admin input for authoring an article.
type CreateArticleParams struct {
	Slug     string `json:"slug" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Body     string `json:"body" validate:"required"`
	Category string `json:"category" validate:"required"`
}

// UpdateArticleParams patches an article; nil fields are untouched.
type UpdateArticleParams struct {
	Title    *string `json:"title,omitempty"`
	Body     *string `json:"body,omitempty"`
	Category *string `json:"category,omitempty"`
}
