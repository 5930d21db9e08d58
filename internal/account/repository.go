package account

import (
	"context"

	"github.com/fekuna/omnipos-erp-service/internal/account/dto"
	"github.com/fekuna/omnipos-erp-service/internal/model"
)

type Repository interface {
	// CreateOrganization stores the organization and its owner atomically.
	CreateOrganization(ctx context.Context, org *model.Organization, owner *model.User) error
	SlugExists(ctx context.Context, slug string) (bool, error)

	CreateUser(ctx context.Context, user *model.User) error
	FindUserByID(ctx context.Context, id string) (*model.User, error)
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
	FindUsers(ctx context.Context, filters *dto.UserFilters) ([]model.User, int, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateWarehouse(ctx context.Context, organizationID, id string, warehouseID *string) error
	Deactivate(ctx context.Context, organizationID, id string) error
	TouchLogin(ctx context.Context, id string) error
}

// WarehouseReader resolves warehouses for assignments.
type WarehouseReader interface {
	FindByID(ctx context.Context, organizationID, id string) (*model.Warehouse, error)
}
