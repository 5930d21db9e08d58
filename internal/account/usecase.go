package account

import (
	"context"

	"github.com/fekuna/omnipos-erp-service/internal/account/dto"
	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/model"
)

type UseCase interface {
	SignUp(ctx context.Context, input *dto.SignUpInput) (*model.User, *auth.TokenPair, error)
	Login(ctx context.Context, username, password string) (*model.User, *auth.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*model.User, *auth.TokenPair, error)
	GetMe(ctx context.Context) (*model.User, error)

	CreateUser(ctx context.Context, input *dto.CreateUserInput) (*model.User, error)
	ListUsers(ctx context.Context, filters *dto.UserFilters) ([]model.User, int, error)
	ChangePassword(ctx context.Context, input *dto.ChangePasswordInput) error
	AssignWarehouse(ctx context.Context, input *dto.AssignWarehouseInput) (*model.User, error)
	DeactivateUser(ctx context.Context, organizationID, id string) error

	CreateAdmin(ctx context.Context, input *dto.CreateAdminInput) (*model.User, error)
}
