package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/reviewpromax/reviewpromax-backend/api/responses"
	"github.com/reviewpromax/reviewpromax-backend/api/validators"
	"github.com/reviewpromax/reviewpromax-backend/internal/affiliates"
	pkgerrors "github.com/reviewpromax/reviewpromax-backend/pkg/errors"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
)

// ApplyAffiliate creates a pending affiliate application for the caller.
func ApplyAffiliate(svc affiliates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}

		affiliate, err := svc.Apply(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, affiliate)
	}
}

// GetAffiliate returns the caller's affiliate record.
func GetAffiliate(svc affiliates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}

		affiliate, err := svc.Get(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, affiliate)
	}
}

// AffiliateStats returns earnings and referral counters for the caller.
func AffiliateStats(svc affiliates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}

		stats, err := svc.Stats(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// ListCommissions returns the caller's commission history.
func ListCommissions(svc affiliates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}

		items, err := svc.ListCommissions(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

type requestPayoutRequest struct {
	Amount string `json:"amount" validate:"required"`
}

// RequestPayout asks for a payout against the caller's earned balance.
func RequestPayout(svc affiliates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}

		var req requestPayoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount"))
			return
		}

		payout, err := svc.RequestPayout(r.Context(), caller, amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payout)
	}
}

// ListPayouts returns the caller's payout history.
func ListPayouts(svc affiliates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}

		items, err := svc.ListPayouts(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}
