package dto

type CreateCustomerInput struct {
	OrganizationID string
	Name           string
	Email          string
	Phone          string
	Address        string
	UserID         string
}

type UpdateCustomerInput struct {
	ID             string
	OrganizationID string
	Name           string
	Email          string
	Phone          string
	Address        string
	IsActive       *bool
}
