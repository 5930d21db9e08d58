package dto

type CreateWarehouseInput struct {
	OrganizationID string
	Name           string
	Location       string
	UserID         string
}

type UpdateWarehouseInput struct {
	ID             string
	OrganizationID string
	Name           string
	Location       string
	IsActive       *bool
}
