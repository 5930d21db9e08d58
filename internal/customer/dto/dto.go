package dto

type CustomerFilters struct {
	OrganizationID string
	Search         string
	IsActive       *bool
	Page           int
	PageSize       int
}
