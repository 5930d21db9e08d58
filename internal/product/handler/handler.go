package handler

import (
	"context"

	erpv1 "github.com/fekuna/omnipos-erp-service/api/erp/v1"
	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/grpcerr"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/product"
	"github.com/fekuna/omnipos-erp-service/internal/product/dto"
	stockdto "github.com/fekuna/omnipos-erp-service/internal/stock/dto"
	stockhandler "github.com/fekuna/omnipos-erp-service/internal/stock/handler"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"google.golang.org/protobuf/types/known/emptypb"
)

var _ erpv1.ProductServiceServer = (*ProductHandler)(nil)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ProductHandler) CreateProduct(ctx context.Context, req *erpv1.CreateProductRequest) (*erpv1.Product, error) {
	p, err := h.uc.CreateProduct(ctx, &dto.CreateProductInput{
		OrganizationID: auth.GetOrganizationID(ctx),
		SKU:            req.SKU,
		Name:           req.Name,
		Category:       req.Category,
		Description:    req.Description,
		CostPrice:      req.CostPrice,
		SellingPrice:   req.SellingPrice,
		UserID:         auth.GetUserID(ctx),
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return mapProduct(p), nil
}

func (h *ProductHandler) GetProduct(ctx context.Context, req *erpv1.IDRequest) (*erpv1.Product, error) {
	p, err := h.uc.GetProduct(ctx, auth.GetOrganizationID(ctx), req.ID)
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return mapProduct(p), nil
}

func (h *ProductHandler) ListProducts(ctx context.Context, req *erpv1.ListProductsRequest) (*erpv1.ListProductsResponse, error) {
	products, count, err := h.uc.ListProducts(ctx, &dto.ProductFilters{
		OrganizationID: auth.GetOrganizationID(ctx),
		Category:       req.Category,
		IsActive:       req.IsActive,
		SearchQuery:    req.Search,
		SortBy:         req.SortBy,
		SortOrder:      req.SortOrder,
		Page:           req.Page,
		PageSize:       req.PageSize,
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}

	out := &erpv1.ListProductsResponse{
		Products: make([]erpv1.Product, 0, len(products)),
		Total:    count,
	}
	for i := range products {
		out.Products = append(out.Products, *mapProduct(&products[i]))
	}
	return out, nil
}

func (h *ProductHandler) UpdateProduct(ctx context.Context, req *erpv1.UpdateProductRequest) (*erpv1.Product, error) {
	p, err := h.uc.UpdateProduct(ctx, &dto.UpdateProductInput{
		ID:             req.ID,
		OrganizationID: auth.GetOrganizationID(ctx),
		SKU:            req.SKU,
		Name:           req.Name,
		Category:       req.Category,
		Description:    req.Description,
		CostPrice:      req.CostPrice,
		SellingPrice:   req.SellingPrice,
		IsActive:       req.IsActive,
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return mapProduct(p), nil
}

func (h *ProductHandler) DeleteProduct(ctx context.Context, req *erpv1.IDRequest) (*emptypb.Empty, error) {
	if err := h.uc.DeleteProduct(ctx, auth.GetOrganizationID(ctx), req.ID); err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return &emptypb.Empty{}, nil
}

func (h *ProductHandler) LowStockProducts(ctx context.Context, req *erpv1.ListStocksRequest) (*erpv1.ListStocksResponse, error) {
	items, count, err := h.uc.LowStockProducts(ctx, &stockdto.StockFilters{
		OrganizationID: auth.GetOrganizationID(ctx),
		WarehouseID:    req.WarehouseID,
		ProductID:      req.ProductID,
		Page:           req.Page,
		PageSize:       req.PageSize,
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return stockhandler.MapStocks(items, count), nil
}

func (h *ProductHandler) StockSummary(ctx context.Context, req *erpv1.IDRequest) (*erpv1.StockSummaryResponse, error) {
	summary, err := h.uc.StockSummary(ctx, auth.GetOrganizationID(ctx), req.ID)
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}

	out := &erpv1.StockSummaryResponse{
		ProductID:  summary.ProductID,
		TotalStock: summary.TotalStock,
		Warehouses: make([]erpv1.WarehouseStock, 0, len(summary.Stocks)),
	}
	for _, s := range summary.Stocks {
		out.Warehouses = append(out.Warehouses, erpv1.WarehouseStock{
			WarehouseID:   s.WarehouseID,
			WarehouseName: s.WarehouseName,
			Quantity:      s.Quantity,
			ReorderLevel:  s.ReorderLevel,
			Status:        string(s.Status()),
		})
	}
	return out, nil
}

func (h *ProductHandler) ImportProducts(ctx context.Context, req *erpv1.ImportProductsRequest) (*erpv1.ImportProductsResponse, error) {
	res, err := h.uc.ImportProducts(ctx, &dto.ImportProductsInput{
		OrganizationID: auth.GetOrganizationID(ctx),
		CSV:            req.CSV,
		UserID:         auth.GetUserID(ctx),
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}

	out := &erpv1.ImportProductsResponse{Created: res.Created, Updated: res.Updated}
	for _, e := range res.Errors {
		out.Errors = append(out.Errors, erpv1.ImportRowError{Row: e.Row, SKU: e.SKU, Message: e.Message})
	}
	return out, nil
}

func mapProduct(p *model.Product) *erpv1.Product {
	out := &erpv1.Product{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		Category:     p.Category,
		CostPrice:    p.CostPrice,
		SellingPrice: p.SellingPrice,
		ProfitMargin: p.ProfitMargin(),
		TotalStock:   p.TotalStock,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	return out
}
