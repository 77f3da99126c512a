package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
	"github.com/reviewpromax/reviewpromax-backend/pkg/metrics"
	"github.com/reviewpromax/reviewpromax-backend/pkg/outbox"
	"github.com/reviewpromax/reviewpromax-backend/pkg/outbox/idempotency"
	"github.com/reviewpromax/reviewpromax-backend/pkg/outbox/payloads"
)

const notificationsConsumer = "user-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type affiliateLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Affiliate, error)
}

// Consumer watches domain events and turns user-facing transitions into
// in-app notifications.
type Consumer struct {
	repo         repository
	affiliates   affiliateLookup
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	metrics      *metrics.EventingMetrics
	logg         *logger.Logger
}

// ConsumerParams bundles the consumer dependencies.
type ConsumerParams struct {
	Repo         repository
	Affiliates   affiliateLookup
	Subscription *pubsub.Subscriber
	Idempotency  *idempotency.Manager
	Metrics      *metrics.EventingMetrics
	Logger       *logger.Logger
}

// NewConsumer builds the notification consumer.
func NewConsumer(params ConsumerParams) (*Consumer, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if params.Affiliates == nil {
		return nil, fmt.Errorf("affiliate lookup required")
	}
	if params.Subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if params.Idempotency == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         params.Repo,
		affiliates:   params.Affiliates,
		subscription: params.Subscription,
		idempotency:  params.Idempotency,
		metrics:      params.Metrics,
		logg:         params.Logger,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

var handledEvents = map[string]struct{}{
	string(enums.EventBookStatusChanged):      {},
	string(enums.EventAffiliateStatusChanged): {},
	string(enums.EventPlanCompleted):          {},
	string(enums.EventPayoutProcessed):        {},
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	if _, ok := handledEvents[eventType]; !ok {
		c.metrics.IncSkipped(notificationsConsumer, "unhandled_event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		c.metrics.IncSkipped(notificationsConsumer, "bad_envelope")
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		c.metrics.IncSkipped(notificationsConsumer, "bad_event_id")
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, notificationsConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.metrics.IncSkipped(notificationsConsumer, "duplicate")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, notificationsConsumer, eventID)
		return processResult{nack: true}
	}

	c.metrics.IncConsumed(notificationsConsumer, eventType)
	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, eventType string, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case string(enums.EventBookStatusChanged):
		var payload payloads.BookStatusChangedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse book status payload: %w", err)
		}
		return c.notifyBookDecision(ctx, payload, logCtx)
	case string(enums.EventAffiliateStatusChanged):
		var payload payloads.AffiliateStatusChangedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse affiliate status payload: %w", err)
		}
		return c.notifyAffiliateDecision(ctx, payload, logCtx)
	case string(enums.EventPlanCompleted):
		var payload payloads.PlanCompletedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse plan completed payload: %w", err)
		}
		return c.notifyPlanCompleted(ctx, payload, logCtx)
	case string(enums.EventPayoutProcessed):
		var payload payloads.PayoutProcessedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse payout payload: %w", err)
		}
		return c.notifyPayoutProcessed(ctx, payload, logCtx)
	default:
		return nil
	}
}

func (c *Consumer) notifyBookDecision(ctx context.Context, payload payloads.BookStatusChangedEvent, logCtx context.Context) error {
	if payload.OwnerID == uuid.Nil {
		return fmt.Errorf("owner id missing")
	}

	title := "Book review decision"
	message := fmt.Sprintf("%q is now %s.", payload.Title, payload.Status)
	switch payload.Status {
	case enums.ApprovalStatusApproved:
		title = "Book approved"
		message = fmt.Sprintf("%q has been approved and is ready for a review plan.", payload.Title)
	case enums.ApprovalStatusRejected:
		title = "Book rejected"
		message = fmt.Sprintf("%q was rejected.", payload.Title)
		if payload.Feedback != "" {
			message = fmt.Sprintf("%q was rejected. Feedback: %s", payload.Title, payload.Feedback)
		}
	}

	notification := &models.Notification{
		UserID:  payload.OwnerID,
		Type:    enums.NotificationTypeBookUpdate,
		Title:   title,
		Message: message,
		Link:    stringPtr(fmt.Sprintf("/books/%s", payload.BookID)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "owner notified of book decision")
	return nil
}

func (c *Consumer) notifyAffiliateDecision(ctx context.Context, payload payloads.AffiliateStatusChangedEvent, logCtx context.Context) error {
	if payload.UserID == uuid.Nil {
		return fmt.Errorf("user id missing")
	}

	title := "Affiliate status updated"
	message := fmt.Sprintf("Your affiliate account is now %s.", payload.Status)
	if payload.Status == enums.AffiliateStatusActive {
		title = "Affiliate application approved"
		message = "Your affiliate application was approved. Share your referral code to start earning."
	}

	notification := &models.Notification{
		UserID:  payload.UserID,
		Type:    enums.NotificationTypeAffiliateUpdate,
		Title:   title,
		Message: message,
		Link:    stringPtr("/affiliate"),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "user notified of affiliate decision")
	return nil
}

func (c *Consumer) notifyPlanCompleted(ctx context.Context, payload payloads.PlanCompletedEvent, logCtx context.Context) error {
	if payload.OwnerID == uuid.Nil {
		return fmt.Errorf("owner id missing")
	}

	notification := &models.Notification{
		UserID:  payload.OwnerID,
		Type:    enums.NotificationTypePlanUpdate,
		Title:   "Review plan completed",
		Message: fmt.Sprintf("All %d reviews on your plan have been delivered.", payload.TotalReviews),
		Link:    stringPtr(fmt.Sprintf("/plans/%s", payload.PlanID)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "owner notified of completed plan")
	return nil
}

func (c *Consumer) notifyPayoutProcessed(ctx context.Context, payload payloads.PayoutProcessedEvent, logCtx context.Context) error {
	affiliate, err := c.affiliates.FindByID(ctx, payload.AffiliateID)
	if err != nil {
		return fmt.Errorf("load affiliate %s: %w", payload.AffiliateID, err)
	}

	title := "Payout processed"
	message := fmt.Sprintf("Your payout of %s was paid.", payload.Amount.StringFixed(2))
	if payload.Status == enums.PayoutStatusRejected {
		title = "Payout rejected"
		message = fmt.Sprintf("Your payout request of %s was rejected.", payload.Amount.StringFixed(2))
	}

	notification := &models.Notification{
		UserID:  affiliate.UserID,
		Type:    enums.NotificationTypeAffiliateUpdate,
		Title:   title,
		Message: message,
		Link:    stringPtr("/affiliate/payouts"),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "affiliate notified of payout decision")
	return nil
}

func stringPtr(value string) *string {
	return &value
}
