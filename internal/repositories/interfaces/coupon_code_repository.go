package interfaces

import (
	"context"

	"storefront/internal/models"
)

// CouponCodeRepository is the registry of promotional codes.
type CouponCodeRepository interface {
	GetByCode(ctx context.Context, code string) (*models.CouponCode, error)
	Create(ctx context.Context, code *models.CouponCode) error
	SetValidity(ctx context.Context, code string, valid bool) (*models.CouponCode, error)
}
