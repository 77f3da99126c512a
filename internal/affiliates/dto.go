package affiliates

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
)

// AffiliateDTO is the transport shape for an affiliate account.
type AffiliateDTO struct {
	ID             uuid.UUID             `json:"id"`
	UserID         uuid.UUID             `json:"user_id"`
	Code           string                `json:"code"`
	Status         enums.AffiliateStatus `json:"status"`
	TotalEarnings  decimal.Decimal       `json:"total_earnings"`
	TotalReferrals int                   `json:"total_referrals"`
	CreatedAt      time.Time             `json:"created_at"`
}

// FromModel converts a persisted affiliate to its transport shape.
func FromModel(a *models.Affiliate) *AffiliateDTO {
	if a == nil {
		return nil
	}
	return &AffiliateDTO{
		ID:             a.ID,
		UserID:         a.UserID,
		Code:           a.Code,
		Status:         a.Status,
		TotalEarnings:  a.TotalEarnings,
		TotalReferrals: a.TotalReferrals,
		CreatedAt:      a.CreatedAt,
	}
}

// CommissionDTO is the transport shape for a commission row.
type CommissionDTO struct {
	ID          uuid.UUID              `json:"id"`
	AffiliateID uuid.UUID              `json:"affiliate_id"`
	ReferralID  *uuid.UUID             `json:"referral_id,omitempty"`
	Amount      decimal.Decimal        `json:"amount"`
	RatePercent decimal.Decimal        `json:"rate_percent"`
	Status      enums.CommissionStatus `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
}

func commissionFromModel(c *models.AffiliateCommission) *CommissionDTO {
	return &CommissionDTO{
		ID:          c.ID,
		AffiliateID: c.AffiliateID,
		ReferralID:  c.ReferralID,
		Amount:      c.Amount,
		RatePercent: c.RatePercent,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
	}
}

// PayoutDTO is the transport shape for a payout request.
type PayoutDTO struct {
	ID          uuid.UUID          `json:"id"`
	AffiliateID uuid.UUID          `json:"affiliate_id"`
	Amount      decimal.Decimal    `json:"amount"`
	Status      enums.PayoutStatus `json:"status"`
	ProcessedAt *time.Time         `json:"processed_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

func payoutFromModel(p *models.AffiliatePayout) *PayoutDTO {
	return &PayoutDTO{
		ID:          p.ID,
		AffiliateID: p.AffiliateID,
		Amount:      p.Amount,
		Status:      p.Status,
		ProcessedAt: p.ProcessedAt,
		CreatedAt:   p.CreatedAt,
	}
}

// StatsDTO summarizes an affiliate's standing. Earnings come straight off the
// stored counter, never re-derived from commission rows.
type StatsDTO struct {
	AffiliateID        uuid.UUID             `json:"affiliate_id"`
	Status             enums.AffiliateStatus `json:"status"`
	Code               string                `json:"code"`
	TotalEarnings      decimal.Decimal       `json:"total_earnings"`
	TotalReferrals     int                   `json:"total_referrals"`
	PendingCommissions int64                 `json:"pending_commissions"`
	RequestedPayouts   int64                 `json:"requested_payouts"`
}

// ProgramStatsDTO is the admin-facing rollup of the whole program. Total
// earnings sum the stored per-affiliate counters, never the commission rows.
type ProgramStatsDTO struct {
	TotalAffiliates     int64           `json:"total_affiliates"`
	ActiveAffiliates    int64           `json:"active_affiliates"`
	PendingApplications int64           `json:"pending_applications"`
	TotalEarnings       decimal.Decimal `json:"total_earnings"`
	TotalReferrals      int64           `json:"total_referrals"`
}

// RecordCommissionParams is the admin input for crediting a commission.
type RecordCommissionParams struct {
	AffiliateID uuid.UUID
	ReferralID  *uuid.UUID
	Amount      decimal.Decimal
	RatePercent decimal.Decimal
}
