package dto

type SignUpInput struct {
	OrganizationName string
	Username         string
	Email            string
	Password         string
	PasswordConfirm  string
	FirstName        string
	LastName         string
}

type CreateUserInput struct {
	OrganizationID      string
	Username            string
	Email               string
	Password            string
	PasswordConfirm     string
	FirstName           string
	LastName            string
	Phone               string
	Role                string
	AssignedWarehouseID string
}

type ChangePasswordInput struct {
	UserID          string
	OldPassword     string
	NewPassword     string
	NewPasswordConf string
}

type AssignWarehouseInput struct {
	OrganizationID string
	UserID         string
	WarehouseID    string // empty clears the assignment
}

// CreateAdminInput creates a superuser that belongs to no organization.
type CreateAdminInput struct {
	Username string
	Email    string
	Password string
}
