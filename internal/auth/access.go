package auth

import "github.com/fekuna/omnipos-erp-service/internal/model"

// WarehouseScope describes which warehouses of the tenant a caller may use.
// All means every warehouse; otherwise only IDs (possibly none).
type WarehouseScope struct {
	All bool
	IDs []string
}

func (s WarehouseScope) Allows(warehouseID string) bool {
	if s.All {
		return true
	}
	for _, id := range s.IDs {
		if id == warehouseID {
			return true
		}
	}
	return false
}

func (p *Principal) WarehouseScope() WarehouseScope {
	if p == nil {
		return WarehouseScope{}
	}
	if p.IsSuperuser {
		return WarehouseScope{All: true}
	}
	switch p.Role {
	case model.RoleOwner, model.RoleGeneralManager, model.RoleInventoryManager:
		return WarehouseScope{All: true}
	case model.RoleStoreManager, model.RoleStoreStaff:
		if p.AssignedWarehouseID != "" {
			return WarehouseScope{IDs: []string{p.AssignedWarehouseID}}
		}
	}
	return WarehouseScope{}
}

func (p *Principal) CanAccessWarehouse(warehouseID string) bool {
	return p.WarehouseScope().Allows(warehouseID)
}

// SeesStockDetails is false for location-bound roles, which only learn how
// many other warehouses could serve a shortage.
func (p *Principal) SeesStockDetails() bool {
	return p != nil && (p.IsSuperuser || !p.Role.LocationBound())
}

func (p *Principal) has(roles ...model.Role) bool {
	if p == nil {
		return false
	}
	if p.IsSuperuser {
		return true
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

func (p *Principal) CanManageInventory() bool {
	return p.has(model.RoleOwner, model.RoleGeneralManager, model.RoleInventoryManager)
}

func (p *Principal) CanManageSales() bool {
	return p.has(model.RoleOwner, model.RoleGeneralManager, model.RoleStoreManager, model.RoleStoreStaff)
}

func (p *Principal) CanViewAnalytics() bool {
	return p.has(model.RoleOwner, model.RoleGeneralManager)
}

func (p *Principal) CanManageUsers() bool {
	return p.has(model.RoleOwner, model.RoleGeneralManager)
}
