package dto

import stockdto "github.com/fekuna/omnipos-erp-service/internal/stock/dto"

type OrderFilters struct {
	OrganizationID string
	Status         string
	CustomerID     string
	WarehouseID    string
	Ordering       string // e.g. "-order_date", "total_amount"
	Scope          stockdto.WarehouseScope
	Page           int
	PageSize       int
}
