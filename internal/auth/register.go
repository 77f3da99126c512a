package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reviewpromax/reviewpromax-backend/internal/users"
	"github.com/reviewpromax/reviewpromax-backend/pkg/config"
	"github.com/reviewpromax/reviewpromax-backend/pkg/db"
	pkgerrors "github.com/reviewpromax/reviewpromax-backend/pkg/errors"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
	"github.com/reviewpromax/reviewpromax-backend/pkg/security"
)

// RegisterService handles the signup transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) error
}

type referralRecorder interface {
	RecordReferralTx(ctx context.Context, tx *gorm.DB, code string, referredUserID uuid.UUID) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
	Referrals      referralRecorder
	Logger         *logger.Logger
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
	referrals   referralRecorder
	logg        *logger.Logger
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Referrals == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "referral recorder required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
		referrals:   params.Referrals,
		logg:        params.Logger,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !req.AcceptTOS {
		return pkgerrors.New(pkgerrors.CodeValidation, "accept_tos must be true")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		if err := userRepo.EnsureCustomer(ctx, user.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create customer record")
		}

		if req.ReferralCode != nil && strings.TrimSpace(*req.ReferralCode) != "" {
			if err := s.referrals.RecordReferralTx(ctx, tx, *req.ReferralCode, user.ID); err != nil {
				// A bad code should not block the signup itself.
				if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeValidation {
					s.logg.Warn(s.logg.WithField(ctx, "referral_code", *req.ReferralCode),
						"ignoring unusable referral code at signup")
					return nil
				}
				return err
			}
		}
		return nil
	})
}
