package v1

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const WarehouseServiceName = "omnipos.erp.v1.WarehouseService"

type CreateWarehouseRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

type UpdateWarehouseRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	IsActive *bool  `json:"is_active,omitempty"`
}

type ListWarehousesRequest struct {
	PageRequest
	Search   string `json:"search"`
	IsActive *bool  `json:"is_active,omitempty"`
}

type Warehouse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	IsActive   bool      `json:"is_active"`
	StockCount int       `json:"stock_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ListWarehousesResponse struct {
	Warehouses []Warehouse `json:"warehouses"`
	Total      int         `json:"total"`
}

type WarehouseServiceServer interface {
	CreateWarehouse(context.Context, *CreateWarehouseRequest) (*Warehouse, error)
	GetWarehouse(context.Context, *IDRequest) (*Warehouse, error)
	ListWarehouses(context.Context, *ListWarehousesRequest) (*ListWarehousesResponse, error)
	UpdateWarehouse(context.Context, *UpdateWarehouseRequest) (*Warehouse, error)
	DeleteWarehouse(context.Context, *IDRequest) (*emptypb.Empty, error)
	WarehouseStockLevels(context.Context, *IDRequest) (*ListStocksResponse, error)
}

var WarehouseServiceDesc = grpc.ServiceDesc{
	ServiceName: WarehouseServiceName,
	HandlerType: (*WarehouseServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(WarehouseServiceName, "CreateWarehouse", WarehouseServiceServer.CreateWarehouse),
		unary(WarehouseServiceName, "GetWarehouse", WarehouseServiceServer.GetWarehouse),
		unary(WarehouseServiceName, "ListWarehouses", WarehouseServiceServer.ListWarehouses),
		unary(WarehouseServiceName, "UpdateWarehouse", WarehouseServiceServer.UpdateWarehouse),
		unary(WarehouseServiceName, "DeleteWarehouse", WarehouseServiceServer.DeleteWarehouse),
		unary(WarehouseServiceName, "WarehouseStockLevels", WarehouseServiceServer.WarehouseStockLevels),
	},
	Metadata: "erp/v1/warehouse",
}

func RegisterWarehouseServiceServer(s grpc.ServiceRegistrar, srv WarehouseServiceServer) {
	s.RegisterService(&WarehouseServiceDesc, srv)
}
