package model

type Warehouse struct {
	BaseModel
	OrganizationID string  `db:"organization_id" json:"organization_id"`
	Name           string  `db:"name" json:"name"`
	Location       string  `db:"location" json:"location"`
	IsActive       bool    `db:"is_active" json:"is_active"`
	CreatedBy      *string `db:"created_by" json:"created_by"`
	StockCount     int     `db:"stock_count" json:"stock_count"` // computed in queries
}
