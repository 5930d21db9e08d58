package v1

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const ProductServiceName = "omnipos.erp.v1.ProductService"

type CreateProductRequest struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

type UpdateProductRequest struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	IsActive     *bool           `json:"is_active,omitempty"`
}

type ListProductsRequest struct {
	PageRequest
	Category  string `json:"category"`
	IsActive  *bool  `json:"is_active,omitempty"`
	Search    string `json:"search"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

type ImportProductsRequest struct {
	// CSV with header sku,name,category,description,cost_price,selling_price
	CSV string `json:"csv"`
}

type Product struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
	TotalStock   int             `json:"total_stock"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type ListProductsResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

type WarehouseStock struct {
	WarehouseID   string `json:"warehouse_id"`
	WarehouseName string `json:"warehouse_name"`
	Quantity      int    `json:"quantity"`
	ReorderLevel  int    `json:"reorder_level"`
	Status        string `json:"status"`
}

type StockSummaryResponse struct {
	ProductID  string           `json:"product_id"`
	TotalStock int              `json:"total_stock"`
	Warehouses []WarehouseStock `json:"warehouses"`
}

type ImportRowError struct {
	Row     int    `json:"row"`
	SKU     string `json:"sku"`
	Message string `json:"message"`
}

type ImportProductsResponse struct {
	Created int              `json:"created"`
	Updated int              `json:"updated"`
	Errors  []ImportRowError `json:"errors"`
}

type ProductServiceServer interface {
	CreateProduct(context.Context, *CreateProductRequest) (*Product, error)
	GetProduct(context.Context, *IDRequest) (*Product, error)
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	UpdateProduct(context.Context, *UpdateProductRequest) (*Product, error)
	DeleteProduct(context.Context, *IDRequest) (*emptypb.Empty, error)
	LowStockProducts(context.Context, *ListStocksRequest) (*ListStocksResponse, error)
	StockSummary(context.Context, *IDRequest) (*StockSummaryResponse, error)
	ImportProducts(context.Context, *ImportProductsRequest) (*ImportProductsResponse, error)
}

var ProductServiceDesc = grpc.ServiceDesc{
	ServiceName: ProductServiceName,
	HandlerType: (*ProductServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ProductServiceName, "CreateProduct", ProductServiceServer.CreateProduct),
		unary(ProductServiceName, "GetProduct", ProductServiceServer.GetProduct),
		unary(ProductServiceName, "ListProducts", ProductServiceServer.ListProducts),
		unary(ProductServiceName, "UpdateProduct", ProductServiceServer.UpdateProduct),
		unary(ProductServiceName, "DeleteProduct", ProductServiceServer.DeleteProduct),
		unary(ProductServiceName, "LowStockProducts", ProductServiceServer.LowStockProducts),
		unary(ProductServiceName, "StockSummary", ProductServiceServer.StockSummary),
		unary(ProductServiceName, "ImportProducts", ProductServiceServer.ImportProducts),
	},
	Metadata: "erp/v1/product",
}

func RegisterProductServiceServer(s grpc.ServiceRegistrar, srv ProductServiceServer) {
	s.RegisterService(&ProductServiceDesc, srv)
}
