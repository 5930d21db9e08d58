package stock

import (
	"context"

	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/stock/dto"
)

type UseCase interface {
	CreateStock(ctx context.Context, input *dto.CreateStockInput) (*model.Stock, error)
	GetStock(ctx context.Context, organizationID, id string) (*model.Stock, error)
	ListStocks(ctx context.Context, filters *dto.StockFilters) ([]model.Stock, int, error)
	UpdateStock(ctx context.Context, input *dto.UpdateStockInput) (*model.Stock, error)
	AdjustQuantity(ctx context.Context, input *dto.AdjustStockInput) (*model.Stock, error)
	TransferStock(ctx context.Context, input *dto.TransferStockInput) (*model.Stock, *model.Stock, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
	ListLowStock(ctx context.Context, filters *dto.StockFilters) ([]model.Stock, int, error)
	ImportStock(ctx context.Context, input *dto.ImportStockInput) (*dto.ImportResult, error)
}
