package stock

import (
	"context"

	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/stock/dto"
)

type Repository interface {
	// Stock rows
	Create(ctx context.Context, s *model.Stock, movement *model.StockMovement) error
	FindByID(ctx context.Context, organizationID, id string) (*model.Stock, error)
	FindAll(ctx context.Context, filters *dto.StockFilters) ([]model.Stock, int, error)
	FindByWarehouse(ctx context.Context, organizationID, warehouseID string, productIDs []string) ([]model.Stock, error)
	FindByProducts(ctx context.Context, organizationID string, productIDs []string) ([]model.Stock, error)
	UpdateReorderLevel(ctx context.Context, organizationID, id string, reorderLevel int) error

	// Quantity changes, each in its own transaction with a movement row
	Adjust(ctx context.Context, organizationID, id string, delta int, movement *model.StockMovement) (*model.Stock, error)
	Transfer(ctx context.Context, input *dto.TransferStockInput, reorderLevel int) (*model.Stock, *model.Stock, error)
	Upsert(ctx context.Context, input *dto.UpsertStockInput, movement *model.StockMovement) (*model.Stock, bool, error)

	// Movements / Audit
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)

	// Tenant checks
	ProductExists(ctx context.Context, organizationID, productID string) (bool, error)
	WarehouseExists(ctx context.Context, organizationID, warehouseID string) (bool, error)

	// Lookups by natural key for CSV import; "" when nothing matches
	FindProductIDBySKU(ctx context.Context, organizationID, sku string) (string, error)
	FindWarehouseIDByName(ctx context.Context, organizationID, name string) (string, error)
}
