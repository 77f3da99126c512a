package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/reviewpromax/reviewpromax-backend/api/middleware"
	"github.com/reviewpromax/reviewpromax-backend/api/responses"
	pkgerrors "github.com/reviewpromax/reviewpromax-backend/pkg/errors"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
	"github.com/reviewpromax/reviewpromax-backend/pkg/types"
)

// requireCaller resolves the authenticated caller or writes a 401 and
// reports false.
func requireCaller(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (types.Caller, bool) {
	caller := middleware.CallerFromContext(r.Context())
	if caller.IsZero() {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return types.Caller{}, false
	}
	return caller, true
}

// uuidParam parses a chi URL parameter as a UUID or writes a validation error.
func uuidParam(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
