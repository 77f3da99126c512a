package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
)

// Repository exposes user and customer persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// Ban marks the user inactive and stamps banned_at. Returns the number of
// rows touched so callers can detect an already-banned target.
func (r *Repository) Ban(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND banned_at IS NULL", id).
		UpdateColumns(map[string]any{
			"banned_at": at,
			"is_active": false,
		})
	return result.RowsAffected, result.Error
}

// EnsureCustomer creates the billing row for a user if it does not exist yet.
func (r *Repository) EnsureCustomer(ctx context.Context, userID uuid.UUID) error {
	customer := models.Customer{UserID: userID}
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		FirstOrCreate(&customer).Error
}

// GetCustomer loads the billing row for a user.
func (r *Repository) GetCustomer(ctx context.Context, userID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// MarkCustomerBanned stamps banned_at on the billing row.
func (r *Repository) MarkCustomerBanned(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("user_id = ?", userID).
		UpdateColumn("banned_at", at).Error
}

// RecordPurchase accumulates the paid amount into lifetime_spend and bumps the
// owned-plan counter in one statement.
func (r *Repository) RecordPurchase(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("user_id = ?", userID).
		UpdateColumns(map[string]any{
			"lifetime_spend": gorm.Expr("lifetime_spend + ?", amount),
			"plans_owned":    gorm.Expr("plans_owned + 1"),
		}).Error
}
