package warehouse

import (
	"context"

	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/warehouse/dto"
)

type Repository interface {
	Create(ctx context.Context, w *model.Warehouse) error
	FindByID(ctx context.Context, organizationID, id string) (*model.Warehouse, error)
	FindAll(ctx context.Context, filters *dto.WarehouseFilters) ([]model.Warehouse, int, error)
	Update(ctx context.Context, w *model.Warehouse) error
	Deactivate(ctx context.Context, organizationID, id string) error
}
