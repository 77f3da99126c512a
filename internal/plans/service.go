package plans

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	sq "github.com/square/square-go-sdk"
	"gorm.io/gorm"

	"github.com/reviewpromax/reviewpromax-backend/internal/books"
	"github.com/reviewpromax/reviewpromax-backend/internal/users"
	"github.com/reviewpromax/reviewpromax-backend/pkg/db"
	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
	pkgerrors "github.com/reviewpromax/reviewpromax-backend/pkg/errors"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
	"github.com/reviewpromax/reviewpromax-backend/pkg/outbox"
	"github.com/reviewpromax/reviewpromax-backend/pkg/outbox/payloads"
	"github.com/reviewpromax/reviewpromax-backend/pkg/square"
	"github.com/reviewpromax/reviewpromax-backend/pkg/types"
)

// Service covers the review plan lifecycle from purchase to completion.
type Service interface {
	Purchase(ctx context.Context, caller types.Caller, params PurchaseParams) (*PlanDTO, error)
	Get(ctx context.Context, caller types.Caller, planID uuid.UUID) (*PlanDTO, error)
	List(ctx context.Context, caller types.Caller) ([]PlanDTO, error)
	ListAttachable(ctx context.Context, caller types.Caller) (*AttachableDTO, error)
	Attach(ctx context.Context, caller types.Caller, planID, bookID uuid.UUID) (*PlanDTO, error)
	RecordReview(ctx context.Context, caller types.Caller, planID uuid.UUID) (*PlanDTO, error)
}

var decimalHundred = decimal.NewFromInt(100)

type paymentProcessor interface {
	CreatePayment(ctx context.Context, params square.PaymentCreateParams) (*sq.Payment, error)
	NewIdempotencyKey(prefix string) string
	LocationID() string
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams bundles the dependencies required to build a plans service.
type ServiceParams struct {
	DB       *db.Client
	Repo     Repository
	Books    books.Repository
	Users    *users.Repository
	Payments paymentProcessor
	Outbox   eventEmitter
	Logger   *logger.Logger
}

type service struct {
	db       *db.Client
	repo     Repository
	books    books.Repository
	users    *users.Repository
	payments paymentProcessor
	outbox   eventEmitter
	logg     *logger.Logger
}

// NewService validates dependencies and constructs the plans service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("plans repository is required")
	}
	if params.Books == nil {
		return nil, fmt.Errorf("books repository is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payment processor is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		db:       params.DB,
		repo:     params.Repo,
		books:    params.Books,
		users:    params.Users,
		payments: params.Payments,
		outbox:   params.Outbox,
		logg:     params.Logger,
	}, nil
}

// Purchase charges the caller through Square and records the plan with the
// price and capacity snapshotted at purchase time.
func (s *service) Purchase(ctx context.Context, caller types.Caller, params PurchaseParams) (*PlanDTO, error) {
	if caller.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !params.PlanType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown plan type").
			WithDetails(map[string]any{"plan_type": params.PlanType.String()})
	}
	if strings.TrimSpace(params.SourceID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment source is required")
	}

	price := params.PlanType.Price()
	capacity := params.PlanType.ReviewCapacity()

	planName := strings.TrimSpace(params.PlanName)
	if planName == "" {
		planName = fmt.Sprintf("%s plan", params.PlanType)
	}

	payment, err := s.payments.CreatePayment(ctx, square.PaymentCreateParams{
		AmountCents:    price.Mul(decimalHundred).IntPart(),
		Currency:       "USD",
		LocationID:     s.payments.LocationID(),
		SourceID:       params.SourceID,
		IdempotencyKey: s.payments.NewIdempotencyKey("plan.purchase"),
		Note:           fmt.Sprintf("review plan %s", params.PlanType),
		ReferenceID:    caller.UserID.String(),
	})
	if err != nil {
		return nil, err
	}

	plan := &models.ReviewPlan{
		ID:           uuid.New(),
		OwnerID:      caller.UserID,
		PlanName:     planName,
		PlanType:     params.PlanType,
		PricePaid:    price,
		TotalReviews: capacity,
		Status:       enums.PlanStatusActive,
		PaymentRef:   paymentRef(payment),
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, plan); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create plan")
		}
		if err := users.NewRepository(tx).RecordPurchase(ctx, caller.UserID, price); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record purchase")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPlanPurchased,
			AggregateType: enums.AggregatePlan,
			AggregateID:   plan.ID,
			Actor:         &outbox.ActorRef{UserID: caller.UserID, Role: caller.Role.String()},
			Data: payloads.PlanPurchasedEvent{
				PlanID:    plan.ID,
				OwnerID:   caller.UserID,
				PlanType:  plan.PlanType,
				PricePaid: plan.PricePaid,
			},
		})
	})
	if err != nil {
		// The charge landed but the row did not. Surface the payment ref so
		// support can reconcile or refund.
		s.logg.Error(s.logg.WithFields(ctx, map[string]any{
			"payment_ref": stringOrEmpty(plan.PaymentRef),
			"owner_id":    caller.UserID.String(),
		}), "plan purchase recorded payment but failed to persist", err)
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"plan_id":   plan.ID.String(),
		"plan_type": plan.PlanType.String(),
	})
	s.logg.Info(logCtx, "plan purchased")
	return FromModel(plan), nil
}

func (s *service) Get(ctx context.Context, caller types.Caller, planID uuid.UUID) (*PlanDTO, error) {
	plan, err := s.ownedPlan(ctx, caller, planID)
	if err != nil {
		return nil, err
	}
	return FromModel(plan), nil
}

func (s *service) List(ctx context.Context, caller types.Caller) ([]PlanDTO, error) {
	if caller.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	rows, err := s.repo.ListByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list plans")
	}
	out := make([]PlanDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

// ListAttachable returns the caller's unattached active plans alongside the
// approved books that still have no plan bound.
func (s *service) ListAttachable(ctx context.Context, caller types.Caller) (*AttachableDTO, error) {
	if caller.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	planRows, err := s.repo.ListUnattached(ctx, caller.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list unattached plans")
	}
	bookRows, err := s.repo.ListAttachableBooks(ctx, caller.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list attachable books")
	}

	out := &AttachableDTO{
		Plans: make([]PlanDTO, 0, len(planRows)),
		Books: make([]AttachableBookDTO, 0, len(bookRows)),
	}
	for i := range planRows {
		out.Plans = append(out.Plans, *FromModel(&planRows[i]))
	}
	for i := range bookRows {
		out.Books = append(out.Books, AttachableBookDTO{
			ID:     bookRows[i].ID,
			Title:  bookRows[i].Title,
			Author: bookRows[i].Author,
		})
	}
	return out, nil
}

// Attach binds an unattached active plan to one of the caller's approved
// books. The binding is permanent.
func (s *service) Attach(ctx context.Context, caller types.Caller, planID, bookID uuid.UUID) (*PlanDTO, error) {
	plan, err := s.ownedPlan(ctx, caller, planID)
	if err != nil {
		return nil, err
	}
	if plan.BookID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "plan is already attached to a book")
	}
	if plan.Status != enums.PlanStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "plan is not active")
	}

	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load book")
	}
	if book.OwnerID != caller.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "book belongs to another user")
	}
	if book.ApprovalStatus != enums.ApprovalStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "book must be approved before attaching a plan").
			WithDetails(map[string]any{"approval_status": book.ApprovalStatus.String()})
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.WithTx(tx).Attach(ctx, plan.ID, caller.UserID, bookID)
		if err != nil {
			if db.IsUniqueViolation(err, "ux_review_plans_book_id") {
				return pkgerrors.New(pkgerrors.CodeConflict, "book already has a plan attached")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "attach plan")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "plan was attached concurrently")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPlanAttached,
			AggregateType: enums.AggregatePlan,
			AggregateID:   plan.ID,
			Actor:         &outbox.ActorRef{UserID: caller.UserID, Role: caller.Role.String()},
			Data: payloads.PlanAttachedEvent{
				PlanID:  plan.ID,
				BookID:  bookID,
				OwnerID: caller.UserID,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	plan.BookID = &bookID
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"plan_id": plan.ID.String(),
		"book_id": bookID.String(),
	}), "plan attached to book")
	return FromModel(plan), nil
}

// RecordReview consumes one review from the plan's quota. Admin only; called
// when a delivered review is verified. Completion fires on the transition
// that exhausts the quota.
func (s *service) RecordReview(ctx context.Context, caller types.Caller, planID uuid.UUID) (*PlanDTO, error) {
	if !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	var updated *models.ReviewPlan
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		affected, err := repo.ConsumeReview(ctx, planID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "consume review")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "plan has no remaining review capacity")
		}

		plan, err := repo.FindByID(ctx, planID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload plan")
		}

		if plan.UsedReviews >= plan.TotalReviews {
			if _, err := repo.Complete(ctx, planID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "complete plan")
			}
			plan.Status = enums.PlanStatusCompleted
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventPlanCompleted,
				AggregateType: enums.AggregatePlan,
				AggregateID:   plan.ID,
				Actor:         &outbox.ActorRef{UserID: caller.UserID, Role: caller.Role.String()},
				Data: payloads.PlanCompletedEvent{
					PlanID:       plan.ID,
					OwnerID:      plan.OwnerID,
					TotalReviews: plan.TotalReviews,
				},
			}); err != nil {
				return err
			}
		}

		updated = plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) ownedPlan(ctx context.Context, caller types.Caller, planID uuid.UUID) (*models.ReviewPlan, error) {
	if caller.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plan")
	}
	if plan.OwnerID != caller.UserID && !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "plan belongs to another user")
	}
	return plan, nil
}

func paymentRef(payment *sq.Payment) *string {
	if payment == nil {
		return nil
	}
	id := payment.GetID()
	if id == nil || *id == "" {
		return nil
	}
	ref := *id
	return &ref
}

func stringOrEmpty(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
