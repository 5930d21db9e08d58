package dto

import stockdto "github.com/fekuna/omnipos-erp-service/internal/stock/dto"

type WarehouseFilters struct {
	OrganizationID string
	Search         string
	IsActive       *bool
	Scope          stockdto.WarehouseScope
	Page           int
	PageSize       int
}
