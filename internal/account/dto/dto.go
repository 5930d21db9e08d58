package dto

type UserFilters struct {
	OrganizationID string
	Role           string
	Search         string // username, email, first or last name
	Page           int
	PageSize       int
}
