package dto

import (
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/shopspring/decimal"
)

type CreateProductInput struct {
	OrganizationID string
	SKU            string
	Name           string
	Category       string
	Description    string
	CostPrice      decimal.Decimal
	SellingPrice   decimal.Decimal
	UserID         string
}

type UpdateProductInput struct {
	ID             string
	OrganizationID string
	SKU            string
	Name           string
	Category       string
	Description    string
	CostPrice      decimal.Decimal
	SellingPrice   decimal.Decimal
	IsActive       *bool
}

type ImportProductsInput struct {
	OrganizationID string
	CSV            string
	UserID         string
}

type ImportRowError struct {
	Row     int
	SKU     string
	Message string
}

type ImportResult struct {
	Created int
	Updated int
	Errors  []ImportRowError
}

// StockSummary is the stock of one product across the warehouses the
// caller can see.
type StockSummary struct {
	ProductID  string
	TotalStock int
	Stocks     []model.Stock
}
