package controllers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/reviewpromax/reviewpromax-backend/api/responses"
	"github.com/reviewpromax/reviewpromax-backend/api/validators"
	"github.com/reviewpromax/reviewpromax-backend/internal/books"
	"github.com/reviewpromax/reviewpromax-backend/pkg/config"
	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
	pkgerrors "github.com/reviewpromax/reviewpromax-backend/pkg/errors"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
)

const megabyte = 1 << 20

// SubmitBook accepts a multipart submission with manuscript and cover files.
func SubmitBook(svc books.Service, uploads config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	maxBytes := int64(uploads.MaxManuscriptMB+uploads.MaxCoverMB+1) * megabyte

	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		defer r.MultipartForm.RemoveAll()

		genre, err := enums.ParseGenre(r.FormValue("genre"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid genre"))
			return
		}
		language, err := enums.ParseLanguage(r.FormValue("language"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid language"))
			return
		}

		explicit := false
		if raw := strings.TrimSpace(r.FormValue("explicit_content")); raw != "" {
			explicit, err = strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid explicit_content value"))
				return
			}
		}

		manuscript, err := readFormFile(r, "manuscript", int64(uploads.MaxManuscriptMB)*megabyte)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cover, err := readFormFile(r, "cover", int64(uploads.MaxCoverMB)*megabyte)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := books.SubmitParams{
			OwnerID:         caller.UserID,
			Title:           validators.SanitizeString(r.FormValue("title"), 300),
			Author:          validators.SanitizeString(r.FormValue("author"), 200),
			Description:     validators.SanitizeString(r.FormValue("description"), 5000),
			Genre:           genre,
			Language:        language,
			ASIN:            validators.SanitizeString(r.FormValue("asin"), 20),
			ExplicitContent: explicit,
			Manuscript:      manuscript,
			Cover:           cover,
		}

		book, err := svc.Submit(r.Context(), caller, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, book)
	}
}

func readFormFile(r *http.Request, field string, maxBytes int64) (books.FileUpload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return books.FileUpload{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, field+" file required")
	}
	defer file.Close()

	if header.Size > maxBytes {
		return books.FileUpload{}, pkgerrors.New(pkgerrors.CodeValidation, field+" file too large").
			WithDetails(map[string]any{"max_bytes": maxBytes})
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return books.FileUpload{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read "+field)
	}
	if int64(len(data)) > maxBytes {
		return books.FileUpload{}, pkgerrors.New(pkgerrors.CodeValidation, field+" file too large").
			WithDetails(map[string]any{"max_bytes": maxBytes})
	}

	return books.FileUpload{
		Filename:    header.Filename,
		ContentType: detectContentType(header, data),
		Data:        data,
	}, nil
}

func detectContentType(header *multipart.FileHeader, data []byte) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

// ListBooks pages through the caller's own catalog.
func ListBooks(svc books.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}

		params, err := bookListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), caller, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func bookListParams(r *http.Request) (books.ListParams, error) {
	params := books.ListParams{Cursor: strings.TrimSpace(r.URL.Query().Get("cursor"))}

	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
	if err != nil {
		return books.ListParams{}, err
	}
	params.Limit = limit

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseApprovalStatus(raw)
		if err != nil {
			return books.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		params.Status = &status
	}
	return params, nil
}

// GetBook returns a single book visible to the caller.
func GetBook(svc books.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}
		bookID, ok := uuidParam(w, r, logg, "bookID")
		if !ok {
			return
		}

		book, err := svc.Get(r.Context(), caller, bookID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, book)
	}
}

type updateBookRequest struct {
	Title           *string `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	Author          *string `json:"author,omitempty" validate:"omitempty,min=1,max=200"`
	Description     *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Genre           *string `json:"genre,omitempty"`
	Language        *string `json:"language,omitempty"`
	ASIN            *string `json:"asin,omitempty"`
	ExplicitContent *bool   `json:"explicit_content,omitempty"`
}

// UpdateBook patches owner-editable metadata.
func UpdateBook(svc books.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}
		bookID, ok := uuidParam(w, r, logg, "bookID")
		if !ok {
			return
		}

		var req updateBookRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := books.UpdateParams{
			Title:           req.Title,
			Author:          req.Author,
			Description:     req.Description,
			ASIN:            req.ASIN,
			ExplicitContent: req.ExplicitContent,
		}
		if req.Genre != nil {
			genre, err := enums.ParseGenre(*req.Genre)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid genre"))
				return
			}
			params.Genre = &genre
		}
		if req.Language != nil {
			language, err := enums.ParseLanguage(*req.Language)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid language"))
				return
			}
			params.Language = &language
		}

		book, err := svc.Update(r.Context(), caller, bookID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, book)
	}
}

// DeleteBook removes a book and its stored files.
func DeleteBook(svc books.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}
		bookID, ok := uuidParam(w, r, logg, "bookID")
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), caller, bookID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// BookDownloads returns short-lived links for the stored files.
func BookDownloads(svc books.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}
		bookID, ok := uuidParam(w, r, logg, "bookID")
		if !ok {
			return
		}

		urls, err := svc.Downloads(r.Context(), caller, bookID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, urls)
	}
}
