package interfaces

import (
	"context"

	"storefront/internal/models"
)

// CouponSelector narrows which of a user's valid coupons a deduction targets.
// Empty fields match any value.
type CouponSelector struct {
	UserID   string
	CouponID string
	Code     string
}

// CouponRepository is the coupon ledger.
type CouponRepository interface {
	// Create inserts a new ledger entry. It returns ErrDuplicateKey when the
	// user already holds a valid coupon.
	Create(ctx context.Context, coupon *models.Coupon) error
	GetActiveByUser(ctx context.Context, userID string) (*models.Coupon, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Coupon, error)

	// Deduct atomically lowers the balance of the newest valid coupon matching
	// sel by amount, clamping at zero and clearing IsValid when the balance
	// reaches zero. It returns the updated coupon and the amount actually
	// taken, or ErrNotFound when nothing spendable matches.
	Deduct(ctx context.Context, sel CouponSelector, amount int64) (*models.Coupon, int64, error)
}
