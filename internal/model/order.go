package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

var (
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrAlreadyCancelled   = errors.New("order is already cancelled")
	ErrOrderLocked        = errors.New("only pending orders can be modified")
	ErrWarehouseRequired  = errors.New("a warehouse is required to fulfil the order")
	ErrConcurrentUpdate   = errors.New("order status changed concurrently")
	ErrEmptyOrder         = errors.New("order must contain at least one item")
	ErrInactiveCustomer   = errors.New("customer is not active")
	ErrInactiveProduct    = errors.New("product is not active")
	ErrWarehouseForbidden = errors.New("warehouse is not accessible")
)

// rank orders the fulfilled states; pending is 0 and cancelled is terminal.
var statusRank = map[OrderStatus]int{
	OrderPending:   0,
	OrderConfirmed: 1,
	OrderShipped:   2,
	OrderDelivered: 3,
}

func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok || s == OrderCancelled
}

// IsFulfilled reports whether stock has been taken for an order in this state.
func (s OrderStatus) IsFulfilled() bool {
	return s == OrderConfirmed || s == OrderShipped || s == OrderDelivered
}

// StockEffect is what a status change does to warehouse stock.
type StockEffect int

const (
	EffectNone StockEffect = iota
	EffectDeduct
	EffectRestore
)

func (e StockEffect) String() string {
	switch e {
	case EffectDeduct:
		return "deduct"
	case EffectRestore:
		return "restore"
	default:
		return "none"
	}
}

// PlanTransition validates from -> to and returns the stock effect to apply.
func PlanTransition(from, to OrderStatus) (StockEffect, error) {
	if !from.Valid() || !to.Valid() {
		return EffectNone, ErrInvalidTransition
	}
	if from == OrderCancelled {
		if to == OrderCancelled {
			return EffectNone, ErrAlreadyCancelled
		}
		return EffectNone, ErrInvalidTransition
	}
	if from == to {
		return EffectNone, nil
	}
	if to == OrderCancelled {
		if from.IsFulfilled() {
			return EffectRestore, nil
		}
		return EffectNone, nil
	}
	if statusRank[to] < statusRank[from] {
		return EffectNone, ErrInvalidTransition
	}
	if from == OrderPending {
		return EffectDeduct, nil
	}
	return EffectNone, nil
}

type Order struct {
	BaseModel
	OrganizationID string          `db:"organization_id" json:"organization_id"`
	OrderNumber    string          `db:"order_number" json:"order_number"`
	CustomerID     string          `db:"customer_id" json:"customer_id"`
	WarehouseID    *string         `db:"warehouse_id" json:"warehouse_id"`
	Status         OrderStatus     `db:"status" json:"status"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
	Notes          string          `db:"notes" json:"notes"`
	CreatedBy      *string         `db:"created_by" json:"created_by"`
	OrderDate      time.Time       `db:"order_date" json:"order_date"`

	// Joined data
	CustomerName  string `db:"customer_name" json:"customer_name"`
	WarehouseName string `db:"warehouse_name" json:"warehouse_name"`

	Items []OrderItem `db:"-" json:"items"`
}

// IsLocked reports whether items, customer and warehouse are frozen.
func (o *Order) IsLocked() bool {
	return o.Status != OrderPending
}

func (o *Order) ItemsCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// Recalculate sets every subtotal and the order total from the items.
func (o *Order) Recalculate() {
	total := decimal.Zero
	for i := range o.Items {
		o.Items[i].Subtotal = o.Items[i].UnitPrice.Mul(decimal.NewFromInt(int64(o.Items[i].Quantity)))
		total = total.Add(o.Items[i].Subtotal)
	}
	o.TotalAmount = total
}

// Lines aggregates item quantities per product in first-seen order.
func (o *Order) Lines() []LineRequest {
	idx := make(map[string]int, len(o.Items))
	var lines []LineRequest
	for _, it := range o.Items {
		if i, ok := idx[it.ProductID]; ok {
			lines[i].Quantity += it.Quantity
			continue
		}
		idx[it.ProductID] = len(lines)
		lines = append(lines, LineRequest{ProductID: it.ProductID, ProductName: it.ProductName, Quantity: it.Quantity})
	}
	return lines
}

type OrderItem struct {
	ID        string          `db:"id" json:"id"`
	OrderID   string          `db:"order_id" json:"order_id"`
	ProductID string          `db:"product_id" json:"product_id"`
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Subtotal  decimal.Decimal `db:"subtotal" json:"subtotal"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`

	ProductName string `db:"product_name" json:"product_name"`
	ProductSKU  string `db:"product_sku" json:"product_sku"`
}

type OrderStats struct {
	Total     int             `json:"total"`
	ByStatus  map[string]int  `json:"by_status"`
	Revenue   decimal.Decimal `json:"revenue"`
	Fulfilled int             `json:"fulfilled"`
}
