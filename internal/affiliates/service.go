package affiliates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/reviewpromax/reviewpromax-backend/pkg/db"
	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
	pkgerrors "github.com/reviewpromax/reviewpromax-backend/pkg/errors"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
	"github.com/reviewpromax/reviewpromax-backend/pkg/outbox"
	"github.com/reviewpromax/reviewpromax-backend/pkg/outbox/payloads"
	"github.com/reviewpromax/reviewpromax-backend/pkg/types"
)

const codeGenerationAttempts = 5

// Service defines the affiliate program operations.
type Service interface {
	Apply(ctx context.Context, caller types.Caller) (*AffiliateDTO, error)
	Get(ctx context.Context, caller types.Caller) (*AffiliateDTO, error)
	Stats(ctx context.Context, caller types.Caller) (*StatsDTO, error)
	ListAffiliates(ctx context.Context, caller types.Caller, status *enums.AffiliateStatus) ([]AffiliateDTO, error)
	ProgramStats(ctx context.Context, caller types.Caller) (*ProgramStatsDTO, error)
	UpdateStatus(ctx context.Context, caller types.Caller, affiliateID uuid.UUID, status enums.AffiliateStatus) (*AffiliateDTO, error)
	RecordReferralTx(ctx context.Context, tx *gorm.DB, code string, referredUserID uuid.UUID) error
	RecordCommission(ctx context.Context, caller types.Caller, params RecordCommissionParams) (*CommissionDTO, error)
	ApproveCommission(ctx context.Context, caller types.Caller, commissionID uuid.UUID) error
	VoidCommission(ctx context.Context, caller types.Caller, commissionID uuid.UUID) error
	ListCommissions(ctx context.Context, caller types.Caller) ([]CommissionDTO, error)
	RequestPayout(ctx context.Context, caller types.Caller, amount decimal.Decimal) (*PayoutDTO, error)
	ProcessPayout(ctx context.Context, caller types.Caller, payoutID uuid.UUID, approve bool) (*PayoutDTO, error)
	ListPayouts(ctx context.Context, caller types.Caller) ([]PayoutDTO, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	db     *dbpkg.Client
	repo   Repository
	outbox eventEmitter
	logg   *logger.Logger
}

// ServiceParams bundles the affiliate service dependencies.
type ServiceParams struct {
	DB     *dbpkg.Client
	Repo   Repository
	Outbox eventEmitter
	Logger *logger.Logger
}

// NewService wires the affiliate program dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("affiliates repository is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		outbox: params.Outbox,
		logg:   params.Logger,
	}, nil
}

func (s *service) Apply(ctx context.Context, caller types.Caller) (*AffiliateDTO, error) {
	if caller.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	if _, err := s.repo.FindByUserID(ctx, caller.UserID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "affiliate application already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing affiliate")
	}

	var affiliate *models.Affiliate
	for attempt := 0; attempt < codeGenerationAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate code")
		}
		candidate := &models.Affiliate{
			UserID: caller.UserID,
			Code:   code,
			Status: enums.AffiliateStatusPending,
		}
		if err := s.repo.Create(ctx, candidate); err != nil {
			if dbpkg.IsUniqueViolation(err, "affiliates_code_key") {
				continue
			}
			if dbpkg.IsUniqueViolation(err, "affiliates_user_id_key") {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "affiliate application already exists")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create affiliate")
		}
		affiliate = candidate
		break
	}
	if affiliate == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique affiliate code")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"affiliate_id": affiliate.ID.String()})
	s.logg.Info(logCtx, "affiliate application received")
	return FromModel(affiliate), nil
}

func (s *service) Get(ctx context.Context, caller types.Caller) (*AffiliateDTO, error) {
	affiliate, err := s.ownAffiliate(ctx, caller)
	if err != nil {
		return nil, err
	}
	return FromModel(affiliate), nil
}

func (s *service) Stats(ctx context.Context, caller types.Caller) (*StatsDTO, error) {
	affiliate, err := s.ownAffiliate(ctx, caller)
	if err != nil {
		return nil, err
	}

	pending, err := s.repo.CountCommissions(ctx, affiliate.ID, enums.CommissionStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending commissions")
	}
	requested, err := s.repo.CountPayouts(ctx, affiliate.ID, enums.PayoutStatusRequested)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count requested payouts")
	}

	return &StatsDTO{
		AffiliateID:        affiliate.ID,
		Status:             affiliate.Status,
		Code:               affiliate.Code,
		TotalEarnings:      affiliate.TotalEarnings,
		TotalReferrals:     affiliate.TotalReferrals,
		PendingCommissions: pending,
		RequestedPayouts:   requested,
	}, nil
}

func (s *service) ListAffiliates(ctx context.Context, caller types.Caller, status *enums.AffiliateStatus) ([]AffiliateDTO, error) {
	if !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid affiliate status")
	}
	rows, err := s.repo.ListAll(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list affiliates")
	}
	items := make([]AffiliateDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return items, nil
}

// ProgramStats rolls the program up for admins. The earnings figure is the
// sum of the stored balances, so it stays consistent with what each
// affiliate sees even while commissions are in flight.
func (s *service) ProgramStats(ctx context.Context, caller types.Caller) (*ProgramStatsDTO, error) {
	if !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	totals, err := s.repo.ProgramTotals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate program totals")
	}
	return &ProgramStatsDTO{
		TotalAffiliates:     totals.Affiliates,
		ActiveAffiliates:    totals.Active,
		PendingApplications: totals.Pending,
		TotalEarnings:       totals.TotalEarnings,
		TotalReferrals:      totals.TotalReferrals,
	}, nil
}

func (s *service) UpdateStatus(ctx context.Context, caller types.Caller, affiliateID uuid.UUID, status enums.AffiliateStatus) (*AffiliateDTO, error) {
	if !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid affiliate status")
	}

	affiliate, err := s.repo.FindByID(ctx, affiliateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "affiliate not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load affiliate")
	}
	if !affiliate.Status.CanTransitionTo(status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "affiliate status transition disallowed").
			WithDetails(map[string]any{"from": affiliate.Status, "to": status})
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).UpdateStatus(ctx, affiliate.ID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update affiliate status")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventAffiliateStatusChanged,
			AggregateType: enums.AggregateAffiliate,
			AggregateID:   affiliate.ID,
			Actor:         &outbox.ActorRef{UserID: caller.UserID, Role: caller.Role.String()},
			Data: payloads.AffiliateStatusChangedEvent{
				AffiliateID: affiliate.ID,
				UserID:      affiliate.UserID,
				Status:      status,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	affiliate.Status = status
	return FromModel(affiliate), nil
}

// RecordReferralTx attaches a referred signup to the affiliate owning the
// code, inside the caller's transaction. Re-recording the same referred user
// is a no-op thanks to the unique index on referred_user_id.
func (s *service) RecordReferralTx(ctx context.Context, tx *gorm.DB, code string, referredUserID uuid.UUID) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "referral code required")
	}
	if referredUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "referred user id required")
	}

	repo := s.repo.WithTx(tx)
	affiliate, err := repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown referral code")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup referral code")
	}
	if affiliate.Status != enums.AffiliateStatusActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "referral code is not active")
	}

	referral := &models.Referral{
		AffiliateID:    affiliate.ID,
		ReferredUserID: referredUserID,
		CodeUsed:       code,
	}
	if err := repo.CreateReferral(ctx, referral); err != nil {
		if dbpkg.IsUniqueViolation(err, "referrals_referred_user_id_key") {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create referral")
	}
	if err := repo.IncrementReferrals(ctx, affiliate.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment referrals")
	}
	return nil
}

func (s *service) RecordCommission(ctx context.Context, caller types.Caller, params RecordCommissionParams) (*CommissionDTO, error) {
	if !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "commission amount must be positive")
	}
	if params.RatePercent.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate percent cannot be negative")
	}

	affiliate, err := s.repo.FindByID(ctx, params.AffiliateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "affiliate not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load affiliate")
	}

	commission := &models.AffiliateCommission{
		AffiliateID: affiliate.ID,
		ReferralID:  params.ReferralID,
		Amount:      params.Amount,
		RatePercent: params.RatePercent,
		Status:      enums.CommissionStatusPending,
	}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreateCommission(ctx, commission); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create commission")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCommissionRecorded,
			AggregateType: enums.AggregateCommission,
			AggregateID:   commission.ID,
			Actor:         &outbox.ActorRef{UserID: caller.UserID, Role: caller.Role.String()},
			Data: payloads.CommissionRecordedEvent{
				CommissionID: commission.ID,
				AffiliateID:  affiliate.ID,
				Amount:       commission.Amount,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return commissionFromModel(commission), nil
}

// ApproveCommission credits a pending commission into the stored earnings
// balance. The status flip and the balance update share one transaction.
func (s *service) ApproveCommission(ctx context.Context, caller types.Caller, commissionID uuid.UUID) error {
	if !caller.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	commission, err := s.repo.FindCommission(ctx, commissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "commission not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load commission")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		affected, err := repo.UpdateCommissionStatus(ctx, commission.ID, enums.CommissionStatusPending, enums.CommissionStatusApproved)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "approve commission")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "commission is not pending")
		}
		if err := repo.AddEarnings(ctx, commission.AffiliateID, commission.Amount); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "credit earnings")
		}
		return nil
	})
}

func (s *service) VoidCommission(ctx context.Context, caller types.Caller, commissionID uuid.UUID) error {
	if !caller.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	affected, err := s.repo.UpdateCommissionStatus(ctx, commissionID, enums.CommissionStatusPending, enums.CommissionStatusVoided)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "void commission")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "commission is not pending")
	}
	return nil
}

func (s *service) ListCommissions(ctx context.Context, caller types.Caller) ([]CommissionDTO, error) {
	affiliate, err := s.ownAffiliate(ctx, caller)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListCommissions(ctx, affiliate.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list commissions")
	}
	items := make([]CommissionDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *commissionFromModel(&rows[i]))
	}
	return items, nil
}

func (s *service) RequestPayout(ctx context.Context, caller types.Caller, amount decimal.Decimal) (*PayoutDTO, error) {
	affiliate, err := s.ownAffiliate(ctx, caller)
	if err != nil {
		return nil, err
	}
	if affiliate.Status != enums.AffiliateStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "affiliate account is not active")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout amount must be positive")
	}
	if amount.GreaterThan(affiliate.TotalEarnings) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout amount exceeds available earnings")
	}

	payout := &models.AffiliatePayout{
		AffiliateID: affiliate.ID,
		Amount:      amount,
		Status:      enums.PayoutStatusRequested,
	}
	if err := s.repo.CreatePayout(ctx, payout); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create payout request")
	}
	return payoutFromModel(payout), nil
}

// ProcessPayout settles a requested payout. Approval deducts the amount from
// the stored balance and flips approved commissions to paid; rejection only
// stamps the request.
func (s *service) ProcessPayout(ctx context.Context, caller types.Caller, payoutID uuid.UUID, approve bool) (*PayoutDTO, error) {
	if !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	payout, err := s.repo.FindPayout(ctx, payoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payout not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payout")
	}

	status := enums.PayoutStatusRejected
	if approve {
		status = enums.PayoutStatusPaid
	}
	now := time.Now().UTC()

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		affected, err := repo.SettlePayout(ctx, payout.ID, status, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "settle payout")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payout is not awaiting processing")
		}
		if !approve {
			return nil
		}

		deducted, err := repo.DeductEarnings(ctx, payout.AffiliateID, payout.Amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deduct earnings")
		}
		if deducted == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient earnings for payout")
		}
		if _, err := repo.MarkApprovedCommissionsPaid(ctx, payout.AffiliateID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark commissions paid")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPayoutProcessed,
			AggregateType: enums.AggregatePayout,
			AggregateID:   payout.ID,
			Actor:         &outbox.ActorRef{UserID: caller.UserID, Role: caller.Role.String()},
			Data: payloads.PayoutProcessedEvent{
				PayoutID:    payout.ID,
				AffiliateID: payout.AffiliateID,
				Amount:      payout.Amount,
				Status:      status,
				ProcessedAt: now,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	payout.Status = status
	payout.ProcessedAt = &now
	return payoutFromModel(payout), nil
}

func (s *service) ListPayouts(ctx context.Context, caller types.Caller) ([]PayoutDTO, error) {
	affiliate, err := s.ownAffiliate(ctx, caller)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListPayouts(ctx, affiliate.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payouts")
	}
	items := make([]PayoutDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *payoutFromModel(&rows[i]))
	}
	return items, nil
}

func (s *service) ownAffiliate(ctx context.Context, caller types.Caller) (*models.Affiliate, error) {
	if caller.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	affiliate, err := s.repo.FindByUserID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "affiliate account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load affiliate")
	}
	return affiliate, nil
}
