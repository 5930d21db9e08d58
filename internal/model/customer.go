package model

import "github.com/shopspring/decimal"

type Customer struct {
	BaseModel
	OrganizationID string          `db:"organization_id" json:"organization_id"`
	Name           string          `db:"name" json:"name"`
	Email          *string         `db:"email" json:"email"`
	Phone          *string         `db:"phone" json:"phone"`
	Address        *string         `db:"address" json:"address"`
	IsActive       bool            `db:"is_active" json:"is_active"`
	CreatedBy      *string         `db:"created_by" json:"created_by"`
	TotalOrders    int             `db:"total_orders" json:"total_orders"`
	TotalSpent     decimal.Decimal `db:"total_spent" json:"total_spent"`
}

const WalkInEmail = "walkin@store.local"
