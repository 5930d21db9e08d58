package v1

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const OrderServiceName = "omnipos.erp.v1.OrderService"

type OrderItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	// UnitPrice defaults to the product selling price when nil.
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

type CreateOrderRequest struct {
	CustomerID  string           `json:"customer_id"`
	WarehouseID string           `json:"warehouse_id"`
	Status      string           `json:"status"`
	Notes       string           `json:"notes"`
	Items       []OrderItemInput `json:"items"`
}

type UpdateOrderRequest struct {
	ID          string           `json:"id"`
	CustomerID  string           `json:"customer_id"`
	WarehouseID string           `json:"warehouse_id"`
	Notes       string           `json:"notes"`
	Items       []OrderItemInput `json:"items"`
}

type ChangeStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type QuickSaleRequest struct {
	WarehouseID   string           `json:"warehouse_id"`
	CustomerName  string           `json:"customer_name"`
	CustomerPhone string           `json:"customer_phone"`
	Notes         string           `json:"notes"`
	Items         []OrderItemInput `json:"items"`
}

type ListOrdersRequest struct {
	PageRequest
	Status      string `json:"status"`
	CustomerID  string `json:"customer_id"`
	WarehouseID string `json:"warehouse_id"`
	Ordering    string `json:"ordering"`
}

type OrderItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID            string          `json:"id"`
	OrderNumber   string          `json:"order_number"`
	CustomerID    string          `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	WarehouseID   string          `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	Status        string          `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ItemsCount    int             `json:"items_count"`
	Notes         string          `json:"notes"`
	OrderDate     time.Time       `json:"order_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Items         []OrderItem     `json:"items,omitempty"`
}

type ListOrdersResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
}

type OrderStatsResponse struct {
	Total     int             `json:"total"`
	ByStatus  map[string]int  `json:"by_status"`
	Fulfilled int             `json:"fulfilled"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type OrderServiceServer interface {
	CreateOrder(context.Context, *CreateOrderRequest) (*Order, error)
	GetOrder(context.Context, *IDRequest) (*Order, error)
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)
	UpdateOrder(context.Context, *UpdateOrderRequest) (*Order, error)
	ChangeStatus(context.Context, *ChangeStatusRequest) (*Order, error)
	CancelOrder(context.Context, *IDRequest) (*Order, error)
	DeleteOrder(context.Context, *IDRequest) (*emptypb.Empty, error)
	QuickSale(context.Context, *QuickSaleRequest) (*Order, error)
	OrderStats(context.Context, *emptypb.Empty) (*OrderStatsResponse, error)
}

var OrderServiceDesc = grpc.ServiceDesc{
	ServiceName: OrderServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(OrderServiceName, "CreateOrder", OrderServiceServer.CreateOrder),
		unary(OrderServiceName, "GetOrder", OrderServiceServer.GetOrder),
		unary(OrderServiceName, "ListOrders", OrderServiceServer.ListOrders),
		unary(OrderServiceName, "UpdateOrder", OrderServiceServer.UpdateOrder),
		unary(OrderServiceName, "ChangeStatus", OrderServiceServer.ChangeStatus),
		unary(OrderServiceName, "CancelOrder", OrderServiceServer.CancelOrder),
		unary(OrderServiceName, "DeleteOrder", OrderServiceServer.DeleteOrder),
		unary(OrderServiceName, "QuickSale", OrderServiceServer.QuickSale),
		unary(OrderServiceName, "OrderStats", OrderServiceServer.OrderStats),
	},
	Metadata: "erp/v1/order",
}

func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&OrderServiceDesc, srv)
}
