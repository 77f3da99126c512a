package squarewebhook

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/reviewpromax/reviewpromax-backend/pkg/errors"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
)

type fakePlanRepo struct {
	cancelled []string
	affected  int64
	err       error
}

func (f *fakePlanRepo) CancelByPaymentRef(_ context.Context, paymentRef string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.cancelled = append(f.cancelled, paymentRef)
	return f.affected, nil
}

func newTestService(t *testing.T, repo *fakePlanRepo) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Plans:  repo,
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc
}

func TestHandleEvent_PaymentFailureCancelsPlan(t *testing.T) {
	repo := &fakePlanRepo{affected: 1}
	svc := newTestService(t, repo)

	event := &SquareWebhookEvent{
		EventID: "evt-1",
		Type:    "payment.updated",
		Data: SquareWebhookData{
			Object: SquareWebhookObject{
				Payment: &SquarePayment{ID: "pay-1", Status: "FAILED"},
			},
		},
	}

	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Equal(t, []string{"pay-1"}, repo.cancelled)
}

func TestHandleEvent_CompletedPaymentIsIgnored(t *testing.T) {
	repo := &fakePlanRepo{affected: 1}
	svc := newTestService(t, repo)

	event := &SquareWebhookEvent{
		Type: "payment.updated",
		Data: SquareWebhookData{
			Object: SquareWebhookObject{
				Payment: &SquarePayment{ID: "pay-2", Status: "COMPLETED"},
			},
		},
	}

	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Empty(t, repo.cancelled)
}

func TestHandleEvent_SettledRefundCancelsPlan(t *testing.T) {
	repo := &fakePlanRepo{affected: 1}
	svc := newTestService(t, repo)

	event := &SquareWebhookEvent{
		Type: "refund.updated",
		Data: SquareWebhookData{
			Object: SquareWebhookObject{
				Refund: &SquareRefund{ID: "ref-1", Status: "COMPLETED", PaymentID: "pay-3"},
			},
		},
	}

	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Equal(t, []string{"pay-3"}, repo.cancelled)
}

func TestHandleEvent_PendingRefundIsIgnored(t *testing.T) {
	repo := &fakePlanRepo{affected: 1}
	svc := newTestService(t, repo)

	event := &SquareWebhookEvent{
		Type: "refund.created",
		Data: SquareWebhookData{
			Object: SquareWebhookObject{
				Refund: &SquareRefund{ID: "ref-2", Status: "PENDING", PaymentID: "pay-4"},
			},
		},
	}

	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Empty(t, repo.cancelled)
}

func TestHandleEvent_NoActivePlanIsNotAnError(t *testing.T) {
	repo := &fakePlanRepo{affected: 0}
	svc := newTestService(t, repo)

	event := &SquareWebhookEvent{
		Type: "payment.updated",
		Data: SquareWebhookData{
			Object: SquareWebhookObject{
				Payment: &SquarePayment{ID: "pay-5", Status: "CANCELED"},
			},
		},
	}

	require.NoError(t, svc.HandleEvent(context.Background(), event))
}

func TestHandleEvent_RepositoryFailureSurfaces(t *testing.T) {
	repo := &fakePlanRepo{err: errors.New("db down")}
	svc := newTestService(t, repo)

	event := &SquareWebhookEvent{
		Type: "payment.updated",
		Data: SquareWebhookData{
			Object: SquareWebhookObject{
				Payment: &SquarePayment{ID: "pay-6", Status: "FAILED"},
			},
		},
	}

	err := svc.HandleEvent(context.Background(), event)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestHandleEvent_UnknownTypeIsIgnored(t *testing.T) {
	repo := &fakePlanRepo{affected: 1}
	svc := newTestService(t, repo)

	event := &SquareWebhookEvent{Type: "inventory.count.updated"}
	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Empty(t, repo.cancelled)
}
