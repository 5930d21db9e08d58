package order

import (
	"context"

	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/order/dto"
	stockdto "github.com/fekuna/omnipos-erp-service/internal/stock/dto"
)

type Repository interface {
	// Create inserts the order with its items. A fulfilled order has its
	// stock locked, checked and deducted in the same transaction.
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, organizationID, id string) (*model.Order, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)
	// Update replaces items, customer, warehouse and notes of a pending order.
	Update(ctx context.Context, o *model.Order) error
	// ChangeStatus moves o from o.Status to status, applying effect. The
	// stored status is re-read under a row lock first.
	ChangeStatus(ctx context.Context, o *model.Order, status model.OrderStatus, effect model.StockEffect, actorID string) error
	// Delete removes the order, restoring stock when it was fulfilled.
	Delete(ctx context.Context, o *model.Order, actorID string) error
	Stats(ctx context.Context, organizationID string, scope stockdto.WarehouseScope) (*model.OrderStats, error)
}

// Collaborators the order workflow reads from. The catalog and stock
// repositories satisfy them.
type (
	CustomerStore interface {
		FindByID(ctx context.Context, organizationID, id string) (*model.Customer, error)
		FindByEmail(ctx context.Context, organizationID, email string) (*model.Customer, error)
		FindByPhone(ctx context.Context, organizationID, phone string) (*model.Customer, error)
		Create(ctx context.Context, c *model.Customer) error
	}

	ProductReader interface {
		FindByIDs(ctx context.Context, organizationID string, ids []string) ([]model.Product, error)
	}

	WarehouseReader interface {
		FindByID(ctx context.Context, organizationID, id string) (*model.Warehouse, error)
	}

	StockReader interface {
		FindByWarehouse(ctx context.Context, organizationID, warehouseID string, productIDs []string) ([]model.Stock, error)
		FindByProducts(ctx context.Context, organizationID string, productIDs []string) ([]model.Stock, error)
	}

	EventPublisher interface {
		Publish(ctx context.Context, key string, value []byte) error
	}
)
