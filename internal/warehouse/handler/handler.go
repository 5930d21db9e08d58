package handler

import (
	"context"

	erpv1 "github.com/fekuna/omnipos-erp-service/api/erp/v1"
	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/grpcerr"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	stockhandler "github.com/fekuna/omnipos-erp-service/internal/stock/handler"
	"github.com/fekuna/omnipos-erp-service/internal/warehouse"
	"github.com/fekuna/omnipos-erp-service/internal/warehouse/dto"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"google.golang.org/protobuf/types/known/emptypb"
)

var _ erpv1.WarehouseServiceServer = (*WarehouseHandler)(nil)

type WarehouseHandler struct {
	uc     warehouse.UseCase
	logger logger.ZapLogger
}

func NewWarehouseHandler(uc warehouse.UseCase, log logger.ZapLogger) *WarehouseHandler {
	return &WarehouseHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *WarehouseHandler) CreateWarehouse(ctx context.Context, req *erpv1.CreateWarehouseRequest) (*erpv1.Warehouse, error) {
	w, err := h.uc.CreateWarehouse(ctx, &dto.CreateWarehouseInput{
		OrganizationID: auth.GetOrganizationID(ctx),
		Name:           req.Name,
		Location:       req.Location,
		UserID:         auth.GetUserID(ctx),
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return mapWarehouse(w), nil
}

func (h *WarehouseHandler) GetWarehouse(ctx context.Context, req *erpv1.IDRequest) (*erpv1.Warehouse, error) {
	w, err := h.uc.GetWarehouse(ctx, auth.GetOrganizationID(ctx), req.ID)
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return mapWarehouse(w), nil
}

func (h *WarehouseHandler) ListWarehouses(ctx context.Context, req *erpv1.ListWarehousesRequest) (*erpv1.ListWarehousesResponse, error) {
	items, count, err := h.uc.ListWarehouses(ctx, &dto.WarehouseFilters{
		OrganizationID: auth.GetOrganizationID(ctx),
		Search:         req.Search,
		IsActive:       req.IsActive,
		Page:           req.Page,
		PageSize:       req.PageSize,
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}

	out := &erpv1.ListWarehousesResponse{Warehouses: make([]erpv1.Warehouse, len(items)), Total: count}
	for i := range items {
		out.Warehouses[i] = *mapWarehouse(&items[i])
	}
	return out, nil
}

func (h *WarehouseHandler) UpdateWarehouse(ctx context.Context, req *erpv1.UpdateWarehouseRequest) (*erpv1.Warehouse, error) {
	w, err := h.uc.UpdateWarehouse(ctx, &dto.UpdateWarehouseInput{
		ID:             req.ID,
		OrganizationID: auth.GetOrganizationID(ctx),
		Name:           req.Name,
		Location:       req.Location,
		IsActive:       req.IsActive,
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return mapWarehouse(w), nil
}

func (h *WarehouseHandler) DeleteWarehouse(ctx context.Context, req *erpv1.IDRequest) (*emptypb.Empty, error) {
	if err := h.uc.DeleteWarehouse(ctx, auth.GetOrganizationID(ctx), req.ID); err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return &emptypb.Empty{}, nil
}

func (h *WarehouseHandler) WarehouseStockLevels(ctx context.Context, req *erpv1.IDRequest) (*erpv1.ListStocksResponse, error) {
	items, count, err := h.uc.StockLevels(ctx, auth.GetOrganizationID(ctx), req.ID)
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return stockhandler.MapStocks(items, count), nil
}

func mapWarehouse(w *model.Warehouse) *erpv1.Warehouse {
	return &erpv1.Warehouse{
		ID:         w.ID,
		Name:       w.Name,
		Location:   w.Location,
		IsActive:   w.IsActive,
		StockCount: w.StockCount,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
}
