package affiliates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
)

// Repository exposes persistence helpers for the affiliate program.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, affiliate *models.Affiliate) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Affiliate, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Affiliate, error)
	FindByCode(ctx context.Context, code string) (*models.Affiliate, error)
	ListAll(ctx context.Context, status *enums.AffiliateStatus) ([]models.Affiliate, error)
	ProgramTotals(ctx context.Context) (*ProgramTotals, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.AffiliateStatus) error
	IncrementReferrals(ctx context.Context, id uuid.UUID) error
	AddEarnings(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	DeductEarnings(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (int64, error)
	CreateReferral(ctx context.Context, referral *models.Referral) error
	CreateCommission(ctx context.Context, commission *models.AffiliateCommission) error
	FindCommission(ctx context.Context, id uuid.UUID) (*models.AffiliateCommission, error)
	UpdateCommissionStatus(ctx context.Context, id uuid.UUID, from, to enums.CommissionStatus) (int64, error)
	MarkApprovedCommissionsPaid(ctx context.Context, affiliateID uuid.UUID) (int64, error)
	ListCommissions(ctx context.Context, affiliateID uuid.UUID) ([]models.AffiliateCommission, error)
	CountCommissions(ctx context.Context, affiliateID uuid.UUID, status enums.CommissionStatus) (int64, error)
	CreatePayout(ctx context.Context, payout *models.AffiliatePayout) error
	FindPayout(ctx context.Context, id uuid.UUID) (*models.AffiliatePayout, error)
	SettlePayout(ctx context.Context, id uuid.UUID, status enums.PayoutStatus, at time.Time) (int64, error)
	ListPayouts(ctx context.Context, affiliateID uuid.UUID) ([]models.AffiliatePayout, error)
	CountPayouts(ctx context.Context, affiliateID uuid.UUID, status enums.PayoutStatus) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an affiliates repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, affiliate *models.Affiliate) error {
	return r.db.WithContext(ctx).Create(affiliate).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Affiliate, error) {
	var affiliate models.Affiliate
	if err := r.db.WithContext(ctx).First(&affiliate, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &affiliate, nil
}

func (r *repositoryImpl) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Affiliate, error) {
	var affiliate models.Affiliate
	if err := r.db.WithContext(ctx).First(&affiliate, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &affiliate, nil
}

func (r *repositoryImpl) FindByCode(ctx context.Context, code string) (*models.Affiliate, error) {
	var affiliate models.Affiliate
	if err := r.db.WithContext(ctx).First(&affiliate, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &affiliate, nil
}

func (r *repositoryImpl) ListAll(ctx context.Context, status *enums.AffiliateStatus) ([]models.Affiliate, error) {
	query := r.db.WithContext(ctx).Model(&models.Affiliate{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var rows []models.Affiliate
	err := query.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// ProgramTotals holds program-wide counters. Earnings sum the stored
// per-affiliate total_earnings column, not the commission rows.
type ProgramTotals struct {
	Affiliates     int64           `gorm:"column:affiliates"`
	Active         int64           `gorm:"column:active"`
	Pending        int64           `gorm:"column:pending"`
	TotalEarnings  decimal.Decimal `gorm:"column:total_earnings"`
	TotalReferrals int64           `gorm:"column:total_referrals"`
}

func (r *repositoryImpl) ProgramTotals(ctx context.Context) (*ProgramTotals, error) {
	var totals ProgramTotals
	err := r.db.WithContext(ctx).Raw(`
SELECT
  COUNT(*) AS affiliates,
  COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS active,
  COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending,
  COALESCE(SUM(total_earnings), 0) AS total_earnings,
  COALESCE(SUM(total_referrals), 0) AS total_referrals
FROM affiliates`,
		enums.AffiliateStatusActive, enums.AffiliateStatusPending).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.AffiliateStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Affiliate{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

func (r *repositoryImpl) IncrementReferrals(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Affiliate{}).
		Where("id = ?", id).
		UpdateColumn("total_referrals", gorm.Expr("total_referrals + 1")).Error
}

func (r *repositoryImpl) AddEarnings(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Affiliate{}).
		Where("id = ?", id).
		UpdateColumn("total_earnings", gorm.Expr("total_earnings + ?", amount)).Error
}

// DeductEarnings subtracts from the stored balance, guarded so the balance
// can never go negative under concurrent payouts.
func (r *repositoryImpl) DeductEarnings(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Affiliate{}).
		Where("id = ? AND total_earnings >= ?", id, amount).
		UpdateColumn("total_earnings", gorm.Expr("total_earnings - ?", amount))
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) CreateReferral(ctx context.Context, referral *models.Referral) error {
	return r.db.WithContext(ctx).Create(referral).Error
}

func (r *repositoryImpl) CreateCommission(ctx context.Context, commission *models.AffiliateCommission) error {
	return r.db.WithContext(ctx).Create(commission).Error
}

func (r *repositoryImpl) FindCommission(ctx context.Context, id uuid.UUID) (*models.AffiliateCommission, error) {
	var commission models.AffiliateCommission
	if err := r.db.WithContext(ctx).First(&commission, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &commission, nil
}

func (r *repositoryImpl) UpdateCommissionStatus(ctx context.Context, id uuid.UUID, from, to enums.CommissionStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.AffiliateCommission{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumn("status", to)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) MarkApprovedCommissionsPaid(ctx context.Context, affiliateID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.AffiliateCommission{}).
		Where("affiliate_id = ? AND status = ?", affiliateID, enums.CommissionStatusApproved).
		UpdateColumn("status", enums.CommissionStatusPaid)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) ListCommissions(ctx context.Context, affiliateID uuid.UUID) ([]models.AffiliateCommission, error) {
	var rows []models.AffiliateCommission
	err := r.db.WithContext(ctx).
		Where("affiliate_id = ?", affiliateID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) CountCommissions(ctx context.Context, affiliateID uuid.UUID, status enums.CommissionStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AffiliateCommission{}).
		Where("affiliate_id = ? AND status = ?", affiliateID, status).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CreatePayout(ctx context.Context, payout *models.AffiliatePayout) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *repositoryImpl) FindPayout(ctx context.Context, id uuid.UUID) (*models.AffiliatePayout, error) {
	var payout models.AffiliatePayout
	if err := r.db.WithContext(ctx).First(&payout, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *repositoryImpl) SettlePayout(ctx context.Context, id uuid.UUID, status enums.PayoutStatus, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.AffiliatePayout{}).
		Where("id = ? AND status = ?", id, enums.PayoutStatusRequested).
		UpdateColumns(map[string]any{
			"status":       status,
			"processed_at": at,
		})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) ListPayouts(ctx context.Context, affiliateID uuid.UUID) ([]models.AffiliatePayout, error) {
	var rows []models.AffiliatePayout
	err := r.db.WithContext(ctx).
		Where("affiliate_id = ?", affiliateID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) CountPayouts(ctx context.Context, affiliateID uuid.UUID, status enums.PayoutStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AffiliatePayout{}).
		Where("affiliate_id = ? AND status = ?", affiliateID, status).
		Count(&count).Error
	return count, err
}
