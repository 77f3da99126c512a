package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/reviewpromax/reviewpromax-backend/api/responses"
	"github.com/reviewpromax/reviewpromax-backend/api/validators"
	"github.com/reviewpromax/reviewpromax-backend/internal/plans"
	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
)

type purchasePlanRequest struct {
	PlanType string `json:"plan_type" validate:"required"`
	PlanName string `json:"plan_name" validate:"max=120"`
	SourceID string `json:"source_id" validate:"required"`
}

// PurchasePlan charges the caller and creates a review plan.
func PurchasePlan(svc plans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}

		var req purchasePlanRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		plan, err := svc.Purchase(r.Context(), caller, plans.PurchaseParams{
			PlanType: enums.PlanType(req.PlanType),
			PlanName: validators.SanitizeString(req.PlanName, 120),
			SourceID: req.SourceID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, plan)
	}
}

// ListPlans returns the caller's plans.
func ListPlans(svc plans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}

		items, err := svc.List(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// ListAttachablePlans returns the caller's unattached plans together with the
// approved books a plan can still be bound to.
func ListAttachablePlans(svc plans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}

		attachable, err := svc.ListAttachable(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, attachable)
	}
}

// GetPlan returns a single plan visible to the caller.
func GetPlan(svc plans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}
		planID, ok := uuidParam(w, r, logg, "planID")
		if !ok {
			return
		}

		plan, err := svc.Get(r.Context(), caller, planID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, plan)
	}
}

type attachPlanRequest struct {
	BookID uuid.UUID `json:"book_id" validate:"required"`
}

// AttachPlan binds a plan to an approved book.
func AttachPlan(svc plans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}
		planID, ok := uuidParam(w, r, logg, "planID")
		if !ok {
			return
		}

		var req attachPlanRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		plan, err := svc.Attach(r.Context(), caller, planID, req.BookID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, plan)
	}
}

// RecordPlanReview consumes one review slot on an active plan.
func RecordPlanReview(svc plans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}
		planID, ok := uuidParam(w, r, logg, "planID")
		if !ok {
			return
		}

		plan, err := svc.RecordReview(r.Context(), caller, planID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, plan)
	}
}
