package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderConfirmed     = "order.confirmed"
	EventOrderCancelled     = "order.cancelled"
	EventOrderDeleted       = "order.deleted"
	EventOrderStatusChanged = "order.status_changed"
	EventLowStock           = "inventory.low_stock"
)

// OrderEvent is published on the order topic after a change is committed.
type OrderEvent struct {
	EventID        string          `json:"event_id"`
	EventType      string          `json:"event_type"`
	OrganizationID string          `json:"organization_id"`
	OrderID        string          `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	WarehouseID    string          `json:"warehouse_id,omitempty"`
	FromStatus     OrderStatus     `json:"from_status,omitempty"`
	Status         OrderStatus     `json:"status"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	OrderDate      time.Time       `json:"order_date"`
	Timestamp      time.Time       `json:"timestamp"`
}

// LowStockEvent is published on the alert topic for every low stock row.
type LowStockEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	OrganizationID string    `json:"organization_id"`
	StockID        string    `json:"stock_id"`
	ProductID      string    `json:"product_id"`
	ProductSKU     string    `json:"product_sku"`
	ProductName    string    `json:"product_name"`
	WarehouseID    string    `json:"warehouse_id"`
	WarehouseName  string    `json:"warehouse_name"`
	Quantity       int       `json:"quantity"`
	ReorderLevel   int       `json:"reorder_level"`
	Timestamp      time.Time `json:"timestamp"`
}
