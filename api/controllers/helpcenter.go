package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/reviewpromax/reviewpromax-backend/api/middleware"
	"github.com/reviewpromax/reviewpromax-backend/api/responses"
	"github.com/reviewpromax/reviewpromax-backend/api/validators"
	"github.com/reviewpromax/reviewpromax-backend/internal/helpcenter"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
)

// ListHelpArticles returns article summaries, drafts included for admins.
func ListHelpArticles(svc helpcenter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := middleware.CallerFromContext(r.Context())
		category := strings.TrimSpace(r.URL.Query().Get("category"))

		items, err := svc.ListArticles(r.Context(), caller, category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// GetHelpArticle returns one article by slug.
func GetHelpArticle(svc helpcenter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := middleware.CallerFromContext(r.Context())
		slug := chi.URLParam(r, "slug")

		article, err := svc.GetArticle(r.Context(), caller, slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, article)
	}
}

// CreateHelpArticle adds a new draft article.
func CreateHelpArticle(svc helpcenter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}

		var req helpcenter.CreateArticleParams
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		article, err := svc.CreateArticle(r.Context(), caller, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, article)
	}
}

// UpdateHelpArticle patches article content.
func UpdateHelpArticle(svc helpcenter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}
		articleID, ok := uuidParam(w, r, logg, "articleID")
		if !ok {
			return
		}

		var req helpcenter.UpdateArticleParams
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		article, err := svc.UpdateArticle(r.Context(), caller, articleID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, article)
	}
}

type publishArticleRequest struct {
	Published bool `json:"published"`
}

// PublishHelpArticle toggles an article's published state.
func PublishHelpArticle(svc helpcenter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}
		articleID, ok := uuidParam(w, r, logg, "articleID")
		if !ok {
			return
		}

		var req publishArticleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		article, err := svc.SetPublished(r.Context(), caller, articleID, req.Published)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, article)
	}
}

// DeleteHelpArticle removes an article.
func DeleteHelpArticle(svc helpcenter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}
		articleID, ok := uuidParam(w, r, logg, "articleID")
		if !ok {
			return
		}

		if err := svc.DeleteArticle(r.Context(), caller, articleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
