package squarewebhook

import (
	"context"
	"strings"

	pkgerrors "github.com/reviewpromax/reviewpromax-backend/pkg/errors"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
)

type planRepository interface {
	CancelByPaymentRef(ctx context.Context, paymentRef string) (int64, error)
}

type ServiceParams struct {
	Plans  planRepository
	Logger *logger.Logger
}

// Service reconciles Square payment state with stored review plans.
type Service struct {
	plans planRepository
	logg  *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Plans == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "plans repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{plans: params.Plans, logg: params.Logger}, nil
}

type SquareWebhookEvent struct {
	EventID string            `json:"event_id"`
	Type    string            `json:"type"`
	Data    SquareWebhookData `json:"data"`
}

type SquareWebhookData struct {
	Type   string              `json:"type"`
	ID     string              `json:"id"`
	Object SquareWebhookObject `json:"object"`
}

type SquareWebhookObject struct {
	Payment *SquarePayment `json:"payment"`
	Refund  *SquareRefund  `json:"refund"`
}

type SquarePayment struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type SquareRefund struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	PaymentID string `json:"payment_id"`
}

// HandleEvent processes Square payment and refund events. A failed or voided
// charge cancels the plan it funded; refunds do the same once they settle.
func (s *Service) HandleEvent(ctx context.Context, event *SquareWebhookEvent) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "square event required")
	}

	switch strings.ToLower(event.Type) {
	case "payment.updated":
		if event.Data.Object.Payment == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment payload missing")
		}
		return s.syncPayment(ctx, event.Data.Object.Payment)
	case "refund.created", "refund.updated":
		if event.Data.Object.Refund == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "refund payload missing")
		}
		return s.syncRefund(ctx, event.Data.Object.Refund)
	default:
		return nil
	}
}

func (s *Service) syncPayment(ctx context.Context, payment *SquarePayment) error {
	switch strings.ToUpper(payment.Status) {
	case "FAILED", "CANCELED":
		return s.cancelPlan(ctx, payment.ID, "payment "+strings.ToLower(payment.Status))
	default:
		return nil
	}
}

func (s *Service) syncRefund(ctx context.Context, refund *SquareRefund) error {
	if strings.ToUpper(refund.Status) != "COMPLETED" {
		return nil
	}
	if refund.PaymentID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "refund payment id missing")
	}
	return s.cancelPlan(ctx, refund.PaymentID, "refund settled")
}

func (s *Service) cancelPlan(ctx context.Context, paymentRef, reason string) error {
	affected, err := s.plans.CancelByPaymentRef(ctx, paymentRef)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel plan")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"payment_ref": paymentRef,
		"reason":      reason,
	})
	if affected == 0 {
		// Nothing active to cancel. Either the plan was never created or it
		// already moved past active; surfaced for support follow-up.
		s.logg.Warn(logCtx, "square.webhook.no_plan_cancelled")
		return nil
	}
	s.logg.Info(logCtx, "square.webhook.plan_cancelled")
	return nil
}
