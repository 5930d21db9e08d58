package dto

import "time"

// WarehouseScope restricts a listing to the warehouses a caller can see.
// Restricted with no IDs matches nothing.
type WarehouseScope struct {
	Restricted   bool
	WarehouseIDs []string
}

type StockFilters struct {
	OrganizationID string
	WarehouseID    string
	ProductID      string
	LowStock       bool // quantity <= reorder_level
	Scope          WarehouseScope
	Page           int
	PageSize       int
}

type MovementFilters struct {
	OrganizationID string
	ProductID      string
	WarehouseID    string
	MovementType   string
	StartDate      *time.Time
	EndDate        *time.Time
	Scope          WarehouseScope
	Page           int
	PageSize       int
}
