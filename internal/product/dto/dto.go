package dto

type ProductFilters struct {
	OrganizationID string
	Category       string
	IsActive       *bool
	SearchQuery    string // name, sku, description
	SortBy         string // name, sku, price, created_at
	SortOrder      string // asc, desc
	Page           int
	PageSize       int
}
