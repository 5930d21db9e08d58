package dto

type CreateStockInput struct {
	OrganizationID string
	ProductID      string
	WarehouseID    string
	Quantity       int
	ReorderLevel   *int
	UserID         string
}

type UpdateStockInput struct {
	OrganizationID string
	ID             string
	Quantity       *int
	ReorderLevel   *int
	UserID         string
}

type AdjustStockInput struct {
	OrganizationID string
	ID             string
	Adjustment     int
	Reason         string
	UserID         string
}

type TransferStockInput struct {
	OrganizationID    string
	ProductID         string
	SourceWarehouseID string
	TargetWarehouseID string
	Quantity          int
	Notes             string
	UserID            string
}

type ImportStockInput struct {
	OrganizationID string
	CSV            string
	UserID         string
}

// UpsertStockInput sets a row to an absolute quantity, creating it when the
// product has no row at the warehouse yet.
type UpsertStockInput struct {
	OrganizationID string
	ProductID      string
	WarehouseID    string
	Quantity       int
	ReorderLevel   int
	UserID         string
}

type ImportRowError struct {
	Row       int
	SKU       string
	Warehouse string
	Message   string
}

type ImportResult struct {
	Created int
	Updated int
	Errors  []ImportRowError
}
