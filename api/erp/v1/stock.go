package v1

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

const StockServiceName = "omnipos.erp.v1.StockService"

type CreateStockRequest struct {
	ProductID    string `json:"product_id"`
	WarehouseID  string `json:"warehouse_id"`
	Quantity     int    `json:"quantity"`
	ReorderLevel *int   `json:"reorder_level,omitempty"`
}

type UpdateStockRequest struct {
	ID           string `json:"id"`
	Quantity     *int   `json:"quantity,omitempty"`
	ReorderLevel *int   `json:"reorder_level,omitempty"`
}

type AdjustQuantityRequest struct {
	ID         string `json:"id"`
	Adjustment int    `json:"adjustment"`
	Reason     string `json:"reason"`
}

type TransferStockRequest struct {
	ProductID         string `json:"product_id"`
	SourceWarehouseID string `json:"source_warehouse_id"`
	TargetWarehouseID string `json:"target_warehouse_id"`
	Quantity          int    `json:"quantity"`
	Notes             string `json:"notes"`
}

type ImportStockRequest struct {
	// CSV with header sku,warehouse,quantity,reorder_level
	CSV string `json:"csv"`
}

type ImportStockRowError struct {
	Row       int    `json:"row"`
	SKU       string `json:"sku"`
	Warehouse string `json:"warehouse"`
	Message   string `json:"message"`
}

type ImportStockResponse struct {
	Created int                   `json:"created"`
	Updated int                   `json:"updated"`
	Errors  []ImportStockRowError `json:"errors"`
}

type ListStocksRequest struct {
	PageRequest
	WarehouseID string `json:"warehouse_id"`
	ProductID   string `json:"product_id"`
	LowStock    bool   `json:"low_stock"`
}

type ListMovementsRequest struct {
	PageRequest
	ProductID    string     `json:"product_id"`
	WarehouseID  string     `json:"warehouse_id"`
	MovementType string     `json:"movement_type"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}

type Stock struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	ProductName   string    `json:"product_name"`
	ProductSKU    string    `json:"product_sku"`
	WarehouseID   string    `json:"warehouse_id"`
	WarehouseName string    `json:"warehouse_name"`
	Quantity      int       `json:"quantity"`
	ReorderLevel  int       `json:"reorder_level"`
	Status        string    `json:"status"`
	IsLowStock    bool      `json:"is_low_stock"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ListStocksResponse struct {
	Stocks []Stock `json:"stocks"`
	Total  int     `json:"total"`
}

type TransferStockResponse struct {
	Source Stock `json:"source"`
	Target Stock `json:"target"`
}

type StockMovement struct {
	ID             string    `json:"id"`
	StockID        string    `json:"stock_id"`
	ProductID      string    `json:"product_id"`
	WarehouseID    string    `json:"warehouse_id"`
	MovementType   string    `json:"movement_type"`
	QuantityChange int       `json:"quantity_change"`
	QuantityBefore int       `json:"quantity_before"`
	QuantityAfter  int       `json:"quantity_after"`
	ReferenceType  string    `json:"reference_type,omitempty"`
	ReferenceID    string    `json:"reference_id,omitempty"`
	Notes          string    `json:"notes"`
	CreatedBy      string    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type ListMovementsResponse struct {
	Movements []StockMovement `json:"movements"`
	Total     int             `json:"total"`
}

type StockServiceServer interface {
	CreateStock(context.Context, *CreateStockRequest) (*Stock, error)
	GetStock(context.Context, *IDRequest) (*Stock, error)
	ListStocks(context.Context, *ListStocksRequest) (*ListStocksResponse, error)
	UpdateStock(context.Context, *UpdateStockRequest) (*Stock, error)
	AdjustQuantity(context.Context, *AdjustQuantityRequest) (*Stock, error)
	TransferStock(context.Context, *TransferStockRequest) (*TransferStockResponse, error)
	ListMovements(context.Context, *ListMovementsRequest) (*ListMovementsResponse, error)
	ListLowStock(context.Context, *ListStocksRequest) (*ListStocksResponse, error)
	ImportStock(context.Context, *ImportStockRequest) (*ImportStockResponse, error)
}

var StockServiceDesc = grpc.ServiceDesc{
	ServiceName: StockServiceName,
	HandlerType: (*StockServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(StockServiceName, "CreateStock", StockServiceServer.CreateStock),
		unary(StockServiceName, "GetStock", StockServiceServer.GetStock),
		unary(StockServiceName, "ListStocks", StockServiceServer.ListStocks),
		unary(StockServiceName, "UpdateStock", StockServiceServer.UpdateStock),
		unary(StockServiceName, "AdjustQuantity", StockServiceServer.AdjustQuantity),
		unary(StockServiceName, "TransferStock", StockServiceServer.TransferStock),
		unary(StockServiceName, "ListMovements", StockServiceServer.ListMovements),
		unary(StockServiceName, "ListLowStock", StockServiceServer.ListLowStock),
		unary(StockServiceName, "ImportStock", StockServiceServer.ImportStock),
	},
	Metadata: "erp/v1/stock",
}

func RegisterStockServiceServer(s grpc.ServiceRegistrar, srv StockServiceServer) {
	s.RegisterService(&StockServiceDesc, srv)
}
