package controllers

import (
	"net/http"

	"github.com/reviewpromax/reviewpromax-backend/api/responses"
	"github.com/reviewpromax/reviewpromax-backend/internal/users"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
)

// GetMe returns the authenticated user's profile.
func GetMe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}

		profile, err := svc.GetProfile(r.Context(), caller.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// BanUser disables an account and cleans up its catalog.
func BanUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}
		userID, ok := uuidParam(w, r, logg, "userID")
		if !ok {
			return
		}

		result, err := svc.BanUser(r.Context(), caller, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
