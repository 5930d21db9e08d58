package handler

import (
	"context"

	erpv1 "github.com/fekuna/omnipos-erp-service/api/erp/v1"
	"github.com/fekuna/omnipos-erp-service/internal/account"
	"github.com/fekuna/omnipos-erp-service/internal/account/dto"
	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/grpcerr"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"google.golang.org/protobuf/types/known/emptypb"
)

var _ erpv1.AccountServiceServer = (*AccountHandler)(nil)

type AccountHandler struct {
	uc     account.UseCase
	logger logger.ZapLogger
}

func NewAccountHandler(uc account.UseCase, log logger.ZapLogger) *AccountHandler {
	return &AccountHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *AccountHandler) SignUp(ctx context.Context, req *erpv1.SignUpRequest) (*erpv1.TokenResponse, error) {
	u, pair, err := h.uc.SignUp(ctx, &dto.SignUpInput{
		OrganizationName: req.OrganizationName,
		Username:         req.Username,
		Email:            req.Email,
		Password:         req.Password,
		PasswordConfirm:  req.PasswordConfirm,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return tokenResponse(u, pair), nil
}

func (h *AccountHandler) Login(ctx context.Context, req *erpv1.LoginRequest) (*erpv1.TokenResponse, error) {
	u, pair, err := h.uc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return tokenResponse(u, pair), nil
}

func (h *AccountHandler) RefreshToken(ctx context.Context, req *erpv1.RefreshTokenRequest) (*erpv1.TokenResponse, error) {
	u, pair, err := h.uc.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return tokenResponse(u, pair), nil
}

func (h *AccountHandler) GetMe(ctx context.Context, _ *emptypb.Empty) (*erpv1.User, error) {
	u, err := h.uc.GetMe(ctx)
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return mapUser(u), nil
}

func (h *AccountHandler) CreateUser(ctx context.Context, req *erpv1.CreateUserRequest) (*erpv1.User, error) {
	u, err := h.uc.CreateUser(ctx, &dto.CreateUserInput{
		OrganizationID:      auth.GetOrganizationID(ctx),
		Username:            req.Username,
		Email:               req.Email,
		Password:            req.Password,
		PasswordConfirm:     req.PasswordConfirm,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Phone:               req.Phone,
		Role:                req.Role,
		AssignedWarehouseID: req.AssignedWarehouseID,
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return mapUser(u), nil
}

func (h *AccountHandler) ListUsers(ctx context.Context, req *erpv1.ListUsersRequest) (*erpv1.ListUsersResponse, error) {
	users, count, err := h.uc.ListUsers(ctx, &dto.UserFilters{
		OrganizationID: auth.GetOrganizationID(ctx),
		Role:           req.Role,
		Search:         req.Search,
		Page:           req.Page,
		PageSize:       req.PageSize,
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}

	out := &erpv1.ListUsersResponse{Users: make([]erpv1.User, 0, len(users)), Total: count}
	for i := range users {
		out.Users = append(out.Users, *mapUser(&users[i]))
	}
	return out, nil
}

func (h *AccountHandler) ChangePassword(ctx context.Context, req *erpv1.ChangePasswordRequest) (*emptypb.Empty, error) {
	err := h.uc.ChangePassword(ctx, &dto.ChangePasswordInput{
		UserID:          auth.GetUserID(ctx),
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		NewPasswordConf: req.NewPasswordConf,
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return &emptypb.Empty{}, nil
}

func (h *AccountHandler) AssignWarehouse(ctx context.Context, req *erpv1.AssignWarehouseRequest) (*erpv1.User, error) {
	u, err := h.uc.AssignWarehouse(ctx, &dto.AssignWarehouseInput{
		OrganizationID: auth.GetOrganizationID(ctx),
		UserID:         req.UserID,
		WarehouseID:    req.WarehouseID,
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return mapUser(u), nil
}

func (h *AccountHandler) DeactivateUser(ctx context.Context, req *erpv1.IDRequest) (*emptypb.Empty, error) {
	if err := h.uc.DeactivateUser(ctx, auth.GetOrganizationID(ctx), req.ID); err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return &emptypb.Empty{}, nil
}

func tokenResponse(u *model.User, pair *auth.TokenPair) *erpv1.TokenResponse {
	return &erpv1.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
		User:         mapUser(u),
	}
}

func mapUser(u *model.User) *erpv1.User {
	out := &erpv1.User{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName(),
		Role:        string(u.Role),
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
	if u.OrganizationID != nil {
		out.OrganizationID = *u.OrganizationID
	}
	if u.AssignedWarehouseID != nil {
		out.AssignedWarehouseID = *u.AssignedWarehouseID
	}
	if u.Phone != nil {
		out.Phone = *u.Phone
	}
	return out
}
