package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reviewpromax/reviewpromax-backend/api/responses"
	"github.com/reviewpromax/reviewpromax-backend/api/validators"
	"github.com/reviewpromax/reviewpromax-backend/internal/affiliates"
	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
	pkgerrors "github.com/reviewpromax/reviewpromax-backend/pkg/errors"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
)

// ListAffiliates returns every affiliate account, optionally filtered by
// status through the `status` query parameter.
func ListAffiliates(svc affiliates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}

		var status *enums.AffiliateStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			parsed, err := enums.ParseAffiliateStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			status = &parsed
		}

		items, err := svc.ListAffiliates(r.Context(), caller, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// AffiliateProgramStats returns the program-wide rollup.
func AffiliateProgramStats(svc affiliates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}

		stats, err := svc.ProgramStats(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

type decideAffiliateRequest struct {
	Status string `json:"status" validate:"required"`
}

// DecideAffiliate approves, rejects, or suspends an affiliate.
func DecideAffiliate(svc affiliates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}
		affiliateID, ok := uuidParam(w, r, logg, "affiliateID")
		if !ok {
			return
		}

		var req decideAffiliateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseAffiliateStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		affiliate, err := svc.UpdateStatus(r.Context(), caller, affiliateID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, affiliate)
	}
}

type recordCommissionRequest struct {
	AffiliateID uuid.UUID  `json:"affiliate_id" validate:"required"`
	ReferralID  *uuid.UUID `json:"referral_id,omitempty"`
	Amount      string     `json:"amount" validate:"required"`
	RatePercent string     `json:"rate_percent" validate:"required"`
}

// RecordCommission credits a pending commission to an affiliate.
func RecordCommission(svc affiliates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}

		var req recordCommissionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount"))
			return
		}
		rate, err := decimal.NewFromString(req.RatePercent)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rate_percent"))
			return
		}

		commission, err := svc.RecordCommission(r.Context(), caller, affiliates.RecordCommissionParams{
			AffiliateID: req.AffiliateID,
			ReferralID:  req.ReferralID,
			Amount:      amount,
			RatePercent: rate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, commission)
	}
}

// ApproveCommission marks a pending commission as payable.
func ApproveCommission(svc affiliates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}
		commissionID, ok := uuidParam(w, r, logg, "commissionID")
		if !ok {
			return
		}

		if err := svc.ApproveCommission(r.Context(), caller, commissionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "approved"})
	}
}

// VoidCommission cancels a pending commission.
func VoidCommission(svc affiliates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}
		commissionID, ok := uuidParam(w, r, logg, "commissionID")
		if !ok {
			return
		}

		if err := svc.VoidCommission(r.Context(), caller, commissionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "voided"})
	}
}

type processPayoutRequest struct {
	Approve bool `json:"approve"`
}

// ProcessPayout settles or rejects a requested payout.
func ProcessPayout(svc affiliates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}
		payoutID, ok := uuidParam(w, r, logg, "payoutID")
		if !ok {
			return
		}

		var req processPayoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payout, err := svc.ProcessPayout(r.Context(), caller, payoutID, req.Approve)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payout)
	}
}
