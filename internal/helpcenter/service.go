package helpcenter

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reviewpromax/reviewpromax-backend/pkg/db"
	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
	pkgerrors "github.com/reviewpromax/reviewpromax-backend/pkg/errors"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
	"github.com/reviewpromax/reviewpromax-backend/pkg/types"
)

var validSlug = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Service covers the help center read surface plus admin authoring.
type Service interface {
	ListArticles(ctx context.Context, caller types.Caller, category string) ([]ArticleSummaryDTO, error)
	GetArticle(ctx context.Context, caller types.Caller, slug string) (*ArticleDTO, error)
	CreateArticle(ctx context.Context, caller types.Caller, params CreateArticleParams) (*ArticleDTO, error)
	UpdateArticle(ctx context.Context, caller types.Caller, id uuid.UUID, params UpdateArticleParams) (*ArticleDTO, error)
	SetPublished(ctx context.Context, caller types.Caller, id uuid.UUID, published bool) (*ArticleDTO, error)
	DeleteArticle(ctx context.Context, caller types.Caller, id uuid.UUID) error
}

// ServiceParams bundles the dependencies required to build a help center service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService validates dependencies and constructs the help center service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("help center repository is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: params.Repo, logg: params.Logger}, nil
}

// ListArticles returns published articles; admins also see drafts.
func (s *service) ListArticles(ctx context.Context, caller types.Caller, category string) ([]ArticleSummaryDTO, error) {
	rows, err := s.repo.List(ctx, ListQuery{
		Category:      strings.TrimSpace(category),
		PublishedOnly: !caller.IsAdmin(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list articles")
	}
	out := make([]ArticleSummaryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, summaryFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetArticle(ctx context.Context, caller types.Caller, slug string) (*ArticleDTO, error) {
	article, err := s.repo.FindBySlug(ctx, strings.TrimSpace(strings.ToLower(slug)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load article")
	}
	// Drafts stay invisible to readers until published.
	if !article.Published && !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article not found")
	}
	return fromModel(article), nil
}

func (s *service) CreateArticle(ctx context.Context, caller types.Caller, params CreateArticleParams) (*ArticleDTO, error) {
	if !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	// Slugs are stored exactly as submitted, so uppercase is rejected
	// rather than silently folded.
	slug := strings.TrimSpace(params.Slug)
	if !validSlug.MatchString(slug) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase letters, digits, and hyphens")
	}
	title := strings.TrimSpace(params.Title)
	body := strings.TrimSpace(params.Body)
	category := strings.TrimSpace(params.Category)
	if title == "" || body == "" || category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title, body, and category are required")
	}

	article := &models.HelpArticle{
		ID:       uuid.New(),
		Slug:     slug,
		Title:    title,
		Body:     body,
		Category: category,
	}
	if err := s.repo.Create(ctx, article); err != nil {
		if db.IsUniqueViolation(err, "slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug is already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create article")
	}

	s.logg.Info(s.logg.WithField(ctx, "slug", slug), "help article created")
	return fromModel(article), nil
}

func (s *service) UpdateArticle(ctx context.Context, caller types.Caller, id uuid.UUID, params UpdateArticleParams) (*ArticleDTO, error) {
	if !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	fields := map[string]any{}
	if params.Title != nil {
		if strings.TrimSpace(*params.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		fields["title"] = strings.TrimSpace(*params.Title)
	}
	if params.Body != nil {
		if strings.TrimSpace(*params.Body) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "body cannot be empty")
		}
		fields["body"] = strings.TrimSpace(*params.Body)
	}
	if params.Category != nil {
		if strings.TrimSpace(*params.Category) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be empty")
		}
		fields["category"] = strings.TrimSpace(*params.Category)
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	affected, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update article")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article not found")
	}
	return s.reload(ctx, id)
}

func (s *service) SetPublished(ctx context.Context, caller types.Caller, id uuid.UUID, published bool) (*ArticleDTO, error) {
	if !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	affected, err := s.repo.UpdateFields(ctx, id, map[string]any{"published": published})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set published")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article not found")
	}
	return s.reload(ctx, id)
}

func (s *service) DeleteArticle(ctx context.Context, caller types.Caller, id uuid.UUID) error {
	if !caller.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "article not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load article")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete article")
	}
	return nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*ArticleDTO, error) {
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload article")
	}
	return fromModel(article), nil
}
