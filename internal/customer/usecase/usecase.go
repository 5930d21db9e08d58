package usecase

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/customer"
	"github.com/fekuna/omnipos-erp-service/internal/customer/dto"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/order"
	orderdto "github.com/fekuna/omnipos-erp-service/internal/order/dto"
	stockuc "github.com/fekuna/omnipos-erp-service/internal/stock/usecase"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"github.com/google/uuid"
)

type customerUseCase struct {
	repo   customer.Repository
	orders order.Repository
	logger logger.ZapLogger
}

func NewCustomerUseCase(repo customer.Repository, orders order.Repository, log logger.ZapLogger) customer.UseCase {
	return &customerUseCase{
		repo:   repo,
		orders: orders,
		logger: log,
	}
}

type fields struct {
	name, email, phone, address *string
}

func normalize(name, email, phone, address string) (fields, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return fields{}, model.Invalid("name", "customer name must be at least 2 characters")
	}
	f := fields{name: &name}
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return fields{}, model.Invalid("email", "invalid email address")
		}
		f.email = &email
	}
	if phone = strings.TrimSpace(phone); phone != "" {
		f.phone = &phone
	}
	if address = strings.TrimSpace(address); address != "" {
		f.address = &address
	}
	return f, nil
}

func (uc *customerUseCase) CreateCustomer(ctx context.Context, input *dto.CreateCustomerInput) (*model.Customer, error) {
	if !auth.FromContext(ctx).CanManageSales() {
		return nil, model.ErrPermissionDenied
	}
	f, err := normalize(input.Name, input.Email, input.Phone, input.Address)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	c := &model.Customer{
		BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OrganizationID: input.OrganizationID,
		Name:           *f.name,
		Email:          f.email,
		Phone:          f.phone,
		Address:        f.address,
		IsActive:       true,
	}
	if input.UserID != "" {
		c.CreatedBy = &input.UserID
	}

	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *customerUseCase) GetCustomer(ctx context.Context, organizationID, id string) (*model.Customer, error) {
	c, err := uc.repo.FindByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, model.ErrNotFound
	}
	return c, nil
}

func (uc *customerUseCase) ListCustomers(ctx context.Context, filters *dto.CustomerFilters) ([]model.Customer, int, error) {
	filters.Page, filters.PageSize = model.Page(filters.Page, filters.PageSize)
	return uc.repo.FindAll(ctx, filters)
}

func (uc *customerUseCase) UpdateCustomer(ctx context.Context, input *dto.UpdateCustomerInput) (*model.Customer, error) {
	if !auth.FromContext(ctx).CanManageSales() {
		return nil, model.ErrPermissionDenied
	}
	c, err := uc.GetCustomer(ctx, input.OrganizationID, input.ID)
	if err != nil {
		return nil, err
	}
	f, err := normalize(input.Name, input.Email, input.Phone, input.Address)
	if err != nil {
		return nil, err
	}

	c.Name = *f.name
	c.Email = f.email
	c.Phone = f.phone
	c.Address = f.address
	if input.IsActive != nil {
		c.IsActive = *input.IsActive
	}
	c.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *customerUseCase) DeleteCustomer(ctx context.Context, organizationID, id string) error {
	if !auth.FromContext(ctx).CanManageSales() {
		return model.ErrPermissionDenied
	}
	if _, err := uc.GetCustomer(ctx, organizationID, id); err != nil {
		return err
	}
	return uc.repo.Deactivate(ctx, organizationID, id)
}

func (uc *customerUseCase) CustomerOrders(ctx context.Context, filters *orderdto.OrderFilters) ([]model.Order, int, error) {
	if _, err := uc.GetCustomer(ctx, filters.OrganizationID, filters.CustomerID); err != nil {
		return nil, 0, err
	}
	filters.Scope = stockuc.ScopeFor(auth.FromContext(ctx))
	filters.Page, filters.PageSize = model.Page(filters.Page, filters.PageSize)
	return uc.orders.FindAll(ctx, filters)
}
