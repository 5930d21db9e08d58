package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	OrganizationID string          `db:"organization_id" json:"organization_id"`
	SKU            string          `db:"sku" json:"sku"`
	Name           string          `db:"name" json:"name"`
	Category       string          `db:"category" json:"category"`
	Description    *string         `db:"description" json:"description"`
	CostPrice      decimal.Decimal `db:"cost_price" json:"cost_price"`
	SellingPrice   decimal.Decimal `db:"selling_price" json:"selling_price"`
	IsActive       bool            `db:"is_active" json:"is_active"`
	CreatedBy      *string         `db:"created_by" json:"created_by"`
	TotalStock     int             `db:"total_stock" json:"total_stock"` // computed in queries
}

var hundred = decimal.NewFromInt(100)

// ProfitMargin is the markup over cost in percent, rounded to 2 places.
func (p *Product) ProfitMargin() decimal.Decimal {
	if !p.CostPrice.IsPositive() {
		return decimal.Zero
	}
	return p.SellingPrice.Sub(p.CostPrice).Div(p.CostPrice).Mul(hundred).Round(2)
}
