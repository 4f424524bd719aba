package interfaces

import (
	"context"

	"storefront/internal/models"
)

type UserRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)

	// Authentication operations
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	LinkGoogleAccount(ctx context.Context, id, googleID, picture string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	MarkEmailVerified(ctx context.Context, id string) error

	// Shopping state
	AddToWishlist(ctx context.Context, id, productID string) (bool, error)
	PushRecentlyViewed(ctx context.Context, id, productID string, limit int) error
	AppendPurchase(ctx context.Context, id, orderID string) error
	UpdateAddress(ctx context.Context, id string, address *models.Address) error
}
