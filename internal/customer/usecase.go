package customer

import (
	"context"

	"github.com/fekuna/omnipos-erp-service/internal/customer/dto"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	orderdto "github.com/fekuna/omnipos-erp-service/internal/order/dto"
)

type UseCase interface {
	CreateCustomer(ctx context.Context, input *dto.CreateCustomerInput) (*model.Customer, error)
	GetCustomer(ctx context.Context, organizationID, id string) (*model.Customer, error)
	ListCustomers(ctx context.Context, filters *dto.CustomerFilters) ([]model.Customer, int, error)
	UpdateCustomer(ctx context.Context, input *dto.UpdateCustomerInput) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, organizationID, id string) error
	CustomerOrders(ctx context.Context, filters *orderdto.OrderFilters) ([]model.Order, int, error)
}
