package handler

import (
	"context"

	erpv1 "github.com/fekuna/omnipos-erp-service/api/erp/v1"
	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/grpcerr"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/order"
	"github.com/fekuna/omnipos-erp-service/internal/order/dto"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"google.golang.org/protobuf/types/known/emptypb"
)

var _ erpv1.OrderServiceServer = (*OrderHandler)(nil)

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *OrderHandler) CreateOrder(ctx context.Context, req *erpv1.CreateOrderRequest) (*erpv1.Order, error) {
	o, err := h.uc.CreateOrder(ctx, &dto.CreateOrderInput{
		OrganizationID: auth.GetOrganizationID(ctx),
		CustomerID:     req.CustomerID,
		WarehouseID:    req.WarehouseID,
		Status:         model.OrderStatus(req.Status),
		Notes:          req.Notes,
		Items:          items(req.Items),
		UserID:         auth.GetUserID(ctx),
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return MapOrder(o), nil
}

func (h *OrderHandler) GetOrder(ctx context.Context, req *erpv1.IDRequest) (*erpv1.Order, error) {
	o, err := h.uc.GetOrder(ctx, auth.GetOrganizationID(ctx), req.ID)
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return MapOrder(o), nil
}

func (h *OrderHandler) ListOrders(ctx context.Context, req *erpv1.ListOrdersRequest) (*erpv1.ListOrdersResponse, error) {
	orders, count, err := h.uc.ListOrders(ctx, &dto.OrderFilters{
		OrganizationID: auth.GetOrganizationID(ctx),
		Status:         req.Status,
		CustomerID:     req.CustomerID,
		WarehouseID:    req.WarehouseID,
		Ordering:       req.Ordering,
		Page:           req.Page,
		PageSize:       req.PageSize,
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return MapOrders(orders, count), nil
}

func (h *OrderHandler) UpdateOrder(ctx context.Context, req *erpv1.UpdateOrderRequest) (*erpv1.Order, error) {
	o, err := h.uc.UpdateOrder(ctx, &dto.UpdateOrderInput{
		ID:             req.ID,
		OrganizationID: auth.GetOrganizationID(ctx),
		CustomerID:     req.CustomerID,
		WarehouseID:    req.WarehouseID,
		Notes:          req.Notes,
		Items:          items(req.Items),
		UserID:         auth.GetUserID(ctx),
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return MapOrder(o), nil
}

func (h *OrderHandler) ChangeStatus(ctx context.Context, req *erpv1.ChangeStatusRequest) (*erpv1.Order, error) {
	o, err := h.uc.ChangeStatus(ctx, &dto.ChangeStatusInput{
		ID:             req.ID,
		OrganizationID: auth.GetOrganizationID(ctx),
		Status:         model.OrderStatus(req.Status),
		UserID:         auth.GetUserID(ctx),
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return MapOrder(o), nil
}

func (h *OrderHandler) CancelOrder(ctx context.Context, req *erpv1.IDRequest) (*erpv1.Order, error) {
	o, err := h.uc.CancelOrder(ctx, auth.GetOrganizationID(ctx), req.ID, auth.GetUserID(ctx))
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return MapOrder(o), nil
}

func (h *OrderHandler) DeleteOrder(ctx context.Context, req *erpv1.IDRequest) (*emptypb.Empty, error) {
	if err := h.uc.DeleteOrder(ctx, auth.GetOrganizationID(ctx), req.ID, auth.GetUserID(ctx)); err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return &emptypb.Empty{}, nil
}

func (h *OrderHandler) QuickSale(ctx context.Context, req *erpv1.QuickSaleRequest) (*erpv1.Order, error) {
	o, err := h.uc.QuickSale(ctx, &dto.QuickSaleInput{
		OrganizationID: auth.GetOrganizationID(ctx),
		WarehouseID:    req.WarehouseID,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		Notes:          req.Notes,
		Items:          items(req.Items),
		UserID:         auth.GetUserID(ctx),
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return MapOrder(o), nil
}

func (h *OrderHandler) OrderStats(ctx context.Context, _ *emptypb.Empty) (*erpv1.OrderStatsResponse, error) {
	stats, err := h.uc.OrderStats(ctx, auth.GetOrganizationID(ctx))
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return &erpv1.OrderStatsResponse{
		Total:     stats.Total,
		ByStatus:  stats.ByStatus,
		Fulfilled: stats.Fulfilled,
		Revenue:   stats.Revenue,
	}, nil
}

func items(in []erpv1.OrderItemInput) []dto.ItemInput {
	out := make([]dto.ItemInput, len(in))
	for i, it := range in {
		out[i] = dto.ItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}
	return out
}

func MapOrder(o *model.Order) *erpv1.Order {
	out := &erpv1.Order{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerID:    o.CustomerID,
		CustomerName:  o.CustomerName,
		WarehouseName: o.WarehouseName,
		Status:        string(o.Status),
		TotalAmount:   o.TotalAmount,
		ItemsCount:    o.ItemsCount(),
		Notes:         o.Notes,
		OrderDate:     o.OrderDate,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.WarehouseID != nil {
		out.WarehouseID = *o.WarehouseID
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, erpv1.OrderItem{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			ProductSKU:  it.ProductSKU,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		})
	}
	return out
}

// MapOrders converts a page of orders. Items are left out of list replies.
func MapOrders(orders []model.Order, total int) *erpv1.ListOrdersResponse {
	out := &erpv1.ListOrdersResponse{
		Orders: make([]erpv1.Order, 0, len(orders)),
		Total:  total,
	}
	for i := range orders {
		o := MapOrder(&orders[i])
		o.Items = nil
		out.Orders = append(out.Orders, *o)
	}
	return out
}
