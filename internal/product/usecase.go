package product

import (
	"context"

	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/product/dto"
	stockdto "github.com/fekuna/omnipos-erp-service/internal/stock/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, organizationID, id string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, organizationID, id string) error

	// Stock views
	LowStockProducts(ctx context.Context, filters *stockdto.StockFilters) ([]model.Stock, int, error)
	StockSummary(ctx context.Context, organizationID, id string) (*dto.StockSummary, error)

	ImportProducts(ctx context.Context, input *dto.ImportProductsInput) (*dto.ImportResult, error)
}
