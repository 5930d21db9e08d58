package handler

import (
	"context"

	erpv1 "github.com/fekuna/omnipos-erp-service/api/erp/v1"
	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/grpcerr"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/stock"
	"github.com/fekuna/omnipos-erp-service/internal/stock/dto"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
)

var _ erpv1.StockServiceServer = (*StockHandler)(nil)

type StockHandler struct {
	uc     stock.UseCase
	logger logger.ZapLogger
}

func NewStockHandler(uc stock.UseCase, log logger.ZapLogger) *StockHandler {
	return &StockHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *StockHandler) CreateStock(ctx context.Context, req *erpv1.CreateStockRequest) (*erpv1.Stock, error) {
	s, err := h.uc.CreateStock(ctx, &dto.CreateStockInput{
		OrganizationID: auth.GetOrganizationID(ctx),
		ProductID:      req.ProductID,
		WarehouseID:    req.WarehouseID,
		Quantity:       req.Quantity,
		ReorderLevel:   req.ReorderLevel,
		UserID:         auth.GetUserID(ctx),
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return MapStock(s), nil
}

func (h *StockHandler) GetStock(ctx context.Context, req *erpv1.IDRequest) (*erpv1.Stock, error) {
	s, err := h.uc.GetStock(ctx, auth.GetOrganizationID(ctx), req.ID)
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return MapStock(s), nil
}

func (h *StockHandler) ListStocks(ctx context.Context, req *erpv1.ListStocksRequest) (*erpv1.ListStocksResponse, error) {
	items, count, err := h.uc.ListStocks(ctx, stockFilters(ctx, req))
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return MapStocks(items, count), nil
}

func (h *StockHandler) ListLowStock(ctx context.Context, req *erpv1.ListStocksRequest) (*erpv1.ListStocksResponse, error) {
	items, count, err := h.uc.ListLowStock(ctx, stockFilters(ctx, req))
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return MapStocks(items, count), nil
}

func stockFilters(ctx context.Context, req *erpv1.ListStocksRequest) *dto.StockFilters {
	return &dto.StockFilters{
		OrganizationID: auth.GetOrganizationID(ctx),
		WarehouseID:    req.WarehouseID,
		ProductID:      req.ProductID,
		LowStock:       req.LowStock,
		Page:           req.Page,
		PageSize:       req.PageSize,
	}
}

func (h *StockHandler) UpdateStock(ctx context.Context, req *erpv1.UpdateStockRequest) (*erpv1.Stock, error) {
	s, err := h.uc.UpdateStock(ctx, &dto.UpdateStockInput{
		OrganizationID: auth.GetOrganizationID(ctx),
		ID:             req.ID,
		Quantity:       req.Quantity,
		ReorderLevel:   req.ReorderLevel,
		UserID:         auth.GetUserID(ctx),
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return MapStock(s), nil
}

func (h *StockHandler) AdjustQuantity(ctx context.Context, req *erpv1.AdjustQuantityRequest) (*erpv1.Stock, error) {
	s, err := h.uc.AdjustQuantity(ctx, &dto.AdjustStockInput{
		OrganizationID: auth.GetOrganizationID(ctx),
		ID:             req.ID,
		Adjustment:     req.Adjustment,
		Reason:         req.Reason,
		UserID:         auth.GetUserID(ctx),
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return MapStock(s), nil
}

func (h *StockHandler) TransferStock(ctx context.Context, req *erpv1.TransferStockRequest) (*erpv1.TransferStockResponse, error) {
	src, dst, err := h.uc.TransferStock(ctx, &dto.TransferStockInput{
		OrganizationID:    auth.GetOrganizationID(ctx),
		ProductID:         req.ProductID,
		SourceWarehouseID: req.SourceWarehouseID,
		TargetWarehouseID: req.TargetWarehouseID,
		Quantity:          req.Quantity,
		Notes:             req.Notes,
		UserID:            auth.GetUserID(ctx),
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return &erpv1.TransferStockResponse{Source: *MapStock(src), Target: *MapStock(dst)}, nil
}

func (h *StockHandler) ListMovements(ctx context.Context, req *erpv1.ListMovementsRequest) (*erpv1.ListMovementsResponse, error) {
	items, count, err := h.uc.ListMovements(ctx, &dto.MovementFilters{
		OrganizationID: auth.GetOrganizationID(ctx),
		ProductID:      req.ProductID,
		WarehouseID:    req.WarehouseID,
		MovementType:   req.MovementType,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Page:           req.Page,
		PageSize:       req.PageSize,
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}

	out := &erpv1.ListMovementsResponse{Movements: make([]erpv1.StockMovement, len(items)), Total: count}
	for i, m := range items {
		out.Movements[i] = erpv1.StockMovement{
			ID:             m.ID,
			StockID:        m.StockID,
			ProductID:      m.ProductID,
			WarehouseID:    m.WarehouseID,
			MovementType:   string(m.MovementType),
			QuantityChange: m.QuantityChange,
			QuantityBefore: m.QuantityBefore,
			QuantityAfter:  m.QuantityAfter,
			ReferenceType:  deref(m.ReferenceType),
			ReferenceID:    deref(m.ReferenceID),
			Notes:          m.Notes,
			CreatedBy:      deref(m.CreatedBy),
			CreatedAt:      m.CreatedAt,
		}
	}
	return out, nil
}

func (h *StockHandler) ImportStock(ctx context.Context, req *erpv1.ImportStockRequest) (*erpv1.ImportStockResponse, error) {
	res, err := h.uc.ImportStock(ctx, &dto.ImportStockInput{
		OrganizationID: auth.GetOrganizationID(ctx),
		CSV:            req.CSV,
		UserID:         auth.GetUserID(ctx),
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}

	out := &erpv1.ImportStockResponse{Created: res.Created, Updated: res.Updated}
	for _, e := range res.Errors {
		out.Errors = append(out.Errors, erpv1.ImportStockRowError{Row: e.Row, SKU: e.SKU, Warehouse: e.Warehouse, Message: e.Message})
	}
	return out, nil
}

// MapStock is shared with the warehouse and product handlers.
func MapStock(s *model.Stock) *erpv1.Stock {
	return &erpv1.Stock{
		ID:            s.ID,
		ProductID:     s.ProductID,
		ProductName:   s.ProductName,
		ProductSKU:    s.ProductSKU,
		WarehouseID:   s.WarehouseID,
		WarehouseName: s.WarehouseName,
		Quantity:      s.Quantity,
		ReorderLevel:  s.ReorderLevel,
		Status:        string(s.Status()),
		IsLowStock:    s.IsLow(),
		UpdatedAt:     s.UpdatedAt,
	}
}

func MapStocks(items []model.Stock, total int) *erpv1.ListStocksResponse {
	out := &erpv1.ListStocksResponse{Stocks: make([]erpv1.Stock, len(items)), Total: total}
	for i := range items {
		out.Stocks[i] = *MapStock(&items[i])
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
