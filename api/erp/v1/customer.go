package v1

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const CustomerServiceName = "omnipos.erp.v1.CustomerService"

type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type UpdateCustomerRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	IsActive *bool  `json:"is_active,omitempty"`
}

type ListCustomersRequest struct {
	PageRequest
	Search   string `json:"search"`
	IsActive *bool  `json:"is_active,omitempty"`
}

type CustomerOrdersRequest struct {
	PageRequest
	CustomerID string `json:"customer_id"`
}

type Customer struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
	IsActive    bool            `json:"is_active"`
	TotalOrders int             `json:"total_orders"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ListCustomersResponse struct {
	Customers []Customer `json:"customers"`
	Total     int        `json:"total"`
}

type CustomerServiceServer interface {
	CreateCustomer(context.Context, *CreateCustomerRequest) (*Customer, error)
	GetCustomer(context.Context, *IDRequest) (*Customer, error)
	ListCustomers(context.Context, *ListCustomersRequest) (*ListCustomersResponse, error)
	UpdateCustomer(context.Context, *UpdateCustomerRequest) (*Customer, error)
	DeleteCustomer(context.Context, *IDRequest) (*emptypb.Empty, error)
	CustomerOrders(context.Context, *CustomerOrdersRequest) (*ListOrdersResponse, error)
}

var CustomerServiceDesc = grpc.ServiceDesc{
	ServiceName: CustomerServiceName,
	HandlerType: (*CustomerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(CustomerServiceName, "CreateCustomer", CustomerServiceServer.CreateCustomer),
		unary(CustomerServiceName, "GetCustomer", CustomerServiceServer.GetCustomer),
		unary(CustomerServiceName, "ListCustomers", CustomerServiceServer.ListCustomers),
		unary(CustomerServiceName, "UpdateCustomer", CustomerServiceServer.UpdateCustomer),
		unary(CustomerServiceName, "DeleteCustomer", CustomerServiceServer.DeleteCustomer),
		unary(CustomerServiceName, "CustomerOrders", CustomerServiceServer.CustomerOrders),
	},
	Metadata: "erp/v1/customer",
}

func RegisterCustomerServiceServer(s grpc.ServiceRegistrar, srv CustomerServiceServer) {
	s.RegisterService(&CustomerServiceDesc, srv)
}
