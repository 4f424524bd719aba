package interfaces

import (
	"context"

	"storefront/internal/models"
	"storefront/internal/utils"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Replace(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter, params *utils.PaginationParams) ([]*models.Product, int64, error)
}
