package order

import (
	"context"

	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/order/dto"
)

type UseCase interface {
	CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error)
	GetOrder(ctx context.Context, organizationID, id string) (*model.Order, error)
	ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)
	UpdateOrder(ctx context.Context, input *dto.UpdateOrderInput) (*model.Order, error)
	ChangeStatus(ctx context.Context, input *dto.ChangeStatusInput) (*model.Order, error)
	CancelOrder(ctx context.Context, organizationID, id, userID string) (*model.Order, error)
	DeleteOrder(ctx context.Context, organizationID, id, userID string) error
	QuickSale(ctx context.Context, input *dto.QuickSaleInput) (*model.Order, error)
	OrderStats(ctx context.Context, organizationID string) (*model.OrderStats, error)
}
