package product

import (
	"context"

	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/product/dto"
)

type Repository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, organizationID, id string) (*model.Product, error)
	FindByIDs(ctx context.Context, organizationID string, ids []string) ([]model.Product, error)
	FindBySKU(ctx context.Context, organizationID, sku string) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	Deactivate(ctx context.Context, organizationID, id string) error

	// Check SKU uniqueness within the organization
	IsSKUUnique(ctx context.Context, organizationID, sku, excludeID string) (bool, error)
}
