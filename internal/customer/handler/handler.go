package handler

import (
	"context"

	erpv1 "github.com/fekuna/omnipos-erp-service/api/erp/v1"
	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/customer"
	"github.com/fekuna/omnipos-erp-service/internal/customer/dto"
	"github.com/fekuna/omnipos-erp-service/internal/grpcerr"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	orderdto "github.com/fekuna/omnipos-erp-service/internal/order/dto"
	orderhandler "github.com/fekuna/omnipos-erp-service/internal/order/handler"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"google.golang.org/protobuf/types/known/emptypb"
)

var _ erpv1.CustomerServiceServer = (*CustomerHandler)(nil)

type CustomerHandler struct {
	uc     customer.UseCase
	logger logger.ZapLogger
}

func NewCustomerHandler(uc customer.UseCase, log logger.ZapLogger) *CustomerHandler {
	return &CustomerHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CustomerHandler) CreateCustomer(ctx context.Context, req *erpv1.CreateCustomerRequest) (*erpv1.Customer, error) {
	c, err := h.uc.CreateCustomer(ctx, &dto.CreateCustomerInput{
		OrganizationID: auth.GetOrganizationID(ctx),
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		UserID:         auth.GetUserID(ctx),
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return mapCustomer(c), nil
}

func (h *CustomerHandler) GetCustomer(ctx context.Context, req *erpv1.IDRequest) (*erpv1.Customer, error) {
	c, err := h.uc.GetCustomer(ctx, auth.GetOrganizationID(ctx), req.ID)
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return mapCustomer(c), nil
}

func (h *CustomerHandler) ListCustomers(ctx context.Context, req *erpv1.ListCustomersRequest) (*erpv1.ListCustomersResponse, error) {
	items, count, err := h.uc.ListCustomers(ctx, &dto.CustomerFilters{
		OrganizationID: auth.GetOrganizationID(ctx),
		Search:         req.Search,
		IsActive:       req.IsActive,
		Page:           req.Page,
		PageSize:       req.PageSize,
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}

	out := &erpv1.ListCustomersResponse{Customers: make([]erpv1.Customer, len(items)), Total: count}
	for i := range items {
		out.Customers[i] = *mapCustomer(&items[i])
	}
	return out, nil
}

func (h *CustomerHandler) UpdateCustomer(ctx context.Context, req *erpv1.UpdateCustomerRequest) (*erpv1.Customer, error) {
	c, err := h.uc.UpdateCustomer(ctx, &dto.UpdateCustomerInput{
		ID:             req.ID,
		OrganizationID: auth.GetOrganizationID(ctx),
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		IsActive:       req.IsActive,
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return mapCustomer(c), nil
}

func (h *CustomerHandler) DeleteCustomer(ctx context.Context, req *erpv1.IDRequest) (*emptypb.Empty, error) {
	if err := h.uc.DeleteCustomer(ctx, auth.GetOrganizationID(ctx), req.ID); err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return &emptypb.Empty{}, nil
}

func (h *CustomerHandler) CustomerOrders(ctx context.Context, req *erpv1.CustomerOrdersRequest) (*erpv1.ListOrdersResponse, error) {
	items, count, err := h.uc.CustomerOrders(ctx, &orderdto.OrderFilters{
		OrganizationID: auth.GetOrganizationID(ctx),
		CustomerID:     req.CustomerID,
		Page:           req.Page,
		PageSize:       req.PageSize,
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return orderhandler.MapOrders(items, count), nil
}

func mapCustomer(c *model.Customer) *erpv1.Customer {
	out := &erpv1.Customer{
		ID:          c.ID,
		Name:        c.Name,
		IsActive:    c.IsActive,
		TotalOrders: c.TotalOrders,
		TotalSpent:  c.TotalSpent,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.Email != nil {
		out.Email = *c.Email
	}
	if c.Phone != nil {
		out.Phone = *c.Phone
	}
	if c.Address != nil {
		out.Address = *c.Address
	}
	return out
}
