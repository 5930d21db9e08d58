package customer

import (
	"context"

	"github.com/fekuna/omnipos-erp-service/internal/customer/dto"
	"github.com/fekuna/omnipos-erp-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, organizationID, id string) (*model.Customer, error)
	FindByEmail(ctx context.Context, organizationID, email string) (*model.Customer, error)
	FindByPhone(ctx context.Context, organizationID, phone string) (*model.Customer, error)
	FindAll(ctx context.Context, filters *dto.CustomerFilters) ([]model.Customer, int, error)
	Update(ctx context.Context, c *model.Customer) error
	Deactivate(ctx context.Context, organizationID, id string) error
}
