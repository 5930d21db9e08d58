package model

import "time"

type Stock struct {
	ID             string    `db:"id" json:"id"`
	OrganizationID string    `db:"organization_id" json:"organization_id"`
	ProductID      string    `db:"product_id" json:"product_id"`
	WarehouseID    string    `db:"warehouse_id" json:"warehouse_id"`
	Quantity       int       `db:"quantity" json:"quantity"`
	ReorderLevel   int       `db:"reorder_level" json:"reorder_level"`
	CreatedBy      *string   `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`

	// Joined data
	ProductName   string `db:"product_name" json:"product_name"`
	ProductSKU    string `db:"product_sku" json:"product_sku"`
	WarehouseName string `db:"warehouse_name" json:"warehouse_name"`
}

type StockStatus string

const (
	StockOut StockStatus = "out_of_stock"
	StockLow StockStatus = "low_stock"
	StockIn  StockStatus = "in_stock"
)

func (s *Stock) Status() StockStatus {
	switch {
	case s.Quantity <= 0:
		return StockOut
	case s.Quantity <= s.ReorderLevel:
		return StockLow
	default:
		return StockIn
	}
}

func (s *Stock) IsLow() bool {
	return s.Quantity <= s.ReorderLevel
}

type MovementType string

const (
	MovementInitial     MovementType = "initial"
	MovementAdjustment  MovementType = "adjustment"
	MovementSale        MovementType = "sale"
	MovementReturn      MovementType = "cancellation"
	MovementTransferIn  MovementType = "transfer_in"
	MovementTransferOut MovementType = "transfer_out"
)

type StockMovement struct {
	ID             string       `db:"id" json:"id"`
	OrganizationID string       `db:"organization_id" json:"organization_id"`
	StockID        string       `db:"stock_id" json:"stock_id"`
	ProductID      string       `db:"product_id" json:"product_id"`
	WarehouseID    string       `db:"warehouse_id" json:"warehouse_id"`
	MovementType   MovementType `db:"movement_type" json:"movement_type"`
	QuantityChange int          `db:"quantity_change" json:"quantity_change"`
	QuantityBefore int          `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int          `db:"quantity_after" json:"quantity_after"`
	ReferenceType  *string      `db:"reference_type" json:"reference_type"`
	ReferenceID    *string      `db:"reference_id" json:"reference_id"`
	Notes          string       `db:"notes" json:"notes"`
	CreatedBy      *string      `db:"created_by" json:"created_by"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}
