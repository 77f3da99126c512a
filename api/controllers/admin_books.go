package controllers

import (
	"net/http"

	"github.com/reviewpromax/reviewpromax-backend/api/responses"
	"github.com/reviewpromax/reviewpromax-backend/api/validators"
	"github.com/reviewpromax/reviewpromax-backend/internal/books"
	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
	pkgerrors "github.com/reviewpromax/reviewpromax-backend/pkg/errors"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
)

// ListBookQueue pages through every book for the review queue.
func ListBookQueue(svc books.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := bookListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListAll(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type reviewBookRequest struct {
	Status   string `json:"status" validate:"required"`
	Feedback string `json:"feedback" validate:"max=2000"`
}

// ReviewBook records an approve or reject decision on a submission.
func ReviewBook(svc books.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}
		bookID, ok := uuidParam(w, r, logg, "bookID")
		if !ok {
			return
		}

		var req reviewBookRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseApprovalStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		book, err := svc.Review(r.Context(), caller, books.ReviewParams{
			BookID:   bookID,
			Status:   status,
			Feedback: validators.SanitizeString(req.Feedback, 2000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, book)
	}
}
