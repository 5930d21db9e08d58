package v1

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const AccountServiceName = "omnipos.erp.v1.AccountService"

// Methods that do not require a bearer token.
var PublicMethods = []string{
	"/" + AccountServiceName + "/SignUp",
	"/" + AccountServiceName + "/Login",
	"/" + AccountServiceName + "/RefreshToken",
}

type SignUpRequest struct {
	OrganizationName string `json:"organization_name"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	PasswordConfirm  string `json:"password_confirm"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type CreateUserRequest struct {
	Username            string `json:"username"`
	Email               string `json:"email"`
	Password            string `json:"password"`
	PasswordConfirm     string `json:"password_confirm"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Phone               string `json:"phone"`
	Role                string `json:"role"`
	AssignedWarehouseID string `json:"assigned_warehouse_id"`
}

type ListUsersRequest struct {
	PageRequest
	Role   string `json:"role"`
	Search string `json:"search"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	NewPasswordConf string `json:"new_password_confirm"`
}

type AssignWarehouseRequest struct {
	UserID      string `json:"user_id"`
	WarehouseID string `json:"warehouse_id"`
}

type User struct {
	ID                  string     `json:"id"`
	OrganizationID      string     `json:"organization_id"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	FullName            string     `json:"full_name"`
	Phone               string     `json:"phone"`
	Role                string     `json:"role"`
	AssignedWarehouseID string     `json:"assigned_warehouse_id"`
	IsSuperuser         bool       `json:"is_superuser"`
	IsActive            bool       `json:"is_active"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

type ListUsersResponse struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user,omitempty"`
}

type AccountServiceServer interface {
	SignUp(context.Context, *SignUpRequest) (*TokenResponse, error)
	Login(context.Context, *LoginRequest) (*TokenResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error)
	GetMe(context.Context, *emptypb.Empty) (*User, error)
	CreateUser(context.Context, *CreateUserRequest) (*User, error)
	ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error)
	ChangePassword(context.Context, *ChangePasswordRequest) (*emptypb.Empty, error)
	AssignWarehouse(context.Context, *AssignWarehouseRequest) (*User, error)
	DeactivateUser(context.Context, *IDRequest) (*emptypb.Empty, error)
}

var AccountServiceDesc = grpc.ServiceDesc{
	ServiceName: AccountServiceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(AccountServiceName, "SignUp", AccountServiceServer.SignUp),
		unary(AccountServiceName, "Login", AccountServiceServer.Login),
		unary(AccountServiceName, "RefreshToken", AccountServiceServer.RefreshToken),
		unary(AccountServiceName, "GetMe", AccountServiceServer.GetMe),
		unary(AccountServiceName, "CreateUser", AccountServiceServer.CreateUser),
		unary(AccountServiceName, "ListUsers", AccountServiceServer.ListUsers),
		unary(AccountServiceName, "ChangePassword", AccountServiceServer.ChangePassword),
		unary(AccountServiceName, "AssignWarehouse", AccountServiceServer.AssignWarehouse),
		unary(AccountServiceName, "DeactivateUser", AccountServiceServer.DeactivateUser),
	},
	Metadata: "erp/v1/account",
}

func RegisterAccountServiceServer(s grpc.ServiceRegistrar, srv AccountServiceServer) {
	s.RegisterService(&AccountServiceDesc, srv)
}
