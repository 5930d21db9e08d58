package dto

import (
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/shopspring/decimal"
)

type ItemInput struct {
	ProductID string
	Quantity  int
	UnitPrice *decimal.Decimal
}

type CreateOrderInput struct {
	OrganizationID string
	CustomerID     string
	WarehouseID    string
	Status         model.OrderStatus
	Notes          string
	Items          []ItemInput
	UserID         string
}

type UpdateOrderInput struct {
	ID             string
	OrganizationID string
	CustomerID     string
	WarehouseID    string
	Notes          string
	Items          []ItemInput
	UserID         string
}

type ChangeStatusInput struct {
	ID             string
	OrganizationID string
	Status         model.OrderStatus
	UserID         string
}

type QuickSaleInput struct {
	OrganizationID string
	WarehouseID    string
	CustomerName   string
	CustomerPhone  string
	Notes          string
	Items          []ItemInput
	UserID         string
}
