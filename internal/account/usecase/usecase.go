package usecase

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/account"
	"github.com/fekuna/omnipos-erp-service/internal/account/dto"
	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type accountUseCase struct {
	repo       account.Repository
	warehouses account.WarehouseReader
	tokens     *auth.TokenManager
	logger     logger.ZapLogger
}

func NewAccountUseCase(repo account.Repository, warehouses account.WarehouseReader, tokens *auth.TokenManager, log logger.ZapLogger) account.UseCase {
	return &accountUseCase{
		repo:       repo,
		warehouses: warehouses,
		tokens:     tokens,
		logger:     log,
	}
}

type userFields struct {
	username, email, password, confirm, firstName, lastName string
}

// newUser validates the common user fields and hashes the password.
func newUser(f userFields) (*model.User, error) {
	username := strings.TrimSpace(f.username)
	if len(username) < 3 {
		return nil, model.Invalid("username", "must be at least 3 characters long")
	}
	email := strings.ToLower(strings.TrimSpace(f.email))
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, model.Invalid("email", "invalid email address")
		}
	}
	if err := auth.ValidatePassword(f.password, f.confirm); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(f.password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &model.User{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(f.firstName),
		LastName:     strings.TrimSpace(f.lastName),
		IsActive:     true,
	}, nil
}

func (uc *accountUseCase) SignUp(ctx context.Context, input *dto.SignUpInput) (*model.User, *auth.TokenPair, error) {
	name := strings.TrimSpace(input.OrganizationName)
	if len(name) < 2 {
		return nil, nil, model.Invalid("organization_name", "must be at least 2 characters long")
	}
	slug := Slugify(name)
	if slug == "" {
		return nil, nil, model.Invalid("organization_name", "must contain letters or digits")
	}
	exists, err := uc.repo.SlugExists(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		slug += "-" + uuid.New().String()[:6]
	}

	owner, err := newUser(userFields{
		username:  input.Username,
		email:     input.Email,
		password:  input.Password,
		confirm:   input.PasswordConfirm,
		firstName: input.FirstName,
		lastName:  input.LastName,
	})
	if err != nil {
		return nil, nil, err
	}

	org := &model.Organization{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: owner.CreatedAt, UpdatedAt: owner.CreatedAt},
		Name:      name,
		Slug:      slug,
		IsActive:  true,
	}
	owner.OrganizationID = &org.ID
	owner.Role = model.RoleOwner

	if err := uc.repo.CreateOrganization(ctx, org, owner); err != nil {
		return nil, nil, err
	}
	uc.logger.Info("organization signed up",
		zap.String("organization_id", org.ID),
		zap.String("slug", org.Slug),
		zap.String("owner_id", owner.ID),
	)

	pair, err := uc.tokens.Issue(owner)
	if err != nil {
		return nil, nil, err
	}
	return owner, pair, nil
}

func (uc *accountUseCase) Login(ctx context.Context, username, password string) (*model.User, *auth.TokenPair, error) {
	u, err := uc.repo.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, nil, err
	}
	if u == nil || !u.IsActive || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, nil, auth.ErrInvalidCredentials
	}

	if err := uc.repo.TouchLogin(ctx, u.ID); err != nil {
		uc.logger.Warn("failed to record login", zap.String("user_id", u.ID), zap.Error(err))
	}
	pair, err := uc.tokens.Issue(u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

func (uc *accountUseCase) RefreshToken(ctx context.Context, refreshToken string) (*model.User, *auth.TokenPair, error) {
	claims, err := uc.tokens.Parse(refreshToken, auth.TokenRefresh)
	if err != nil {
		return nil, nil, err
	}
	// Reload so role or warehouse changes reach the new access token.
	u, err := uc.repo.FindUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, nil, err
	}
	if u == nil || !u.IsActive {
		return nil, nil, auth.ErrInvalidToken
	}
	pair, err := uc.tokens.Issue(u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

func (uc *accountUseCase) GetMe(ctx context.Context) (*model.User, error) {
	p := auth.FromContext(ctx)
	if p == nil {
		return nil, auth.ErrInvalidToken
	}
	u, err := uc.repo.FindUserByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, model.ErrNotFound
	}
	return u, nil
}

func (uc *accountUseCase) CreateUser(ctx context.Context, input *dto.CreateUserInput) (*model.User, error) {
	p := auth.FromContext(ctx)
	if !p.CanManageUsers() {
		return nil, model.ErrPermissionDenied
	}
	role := model.Role(input.Role)
	if !role.Valid() {
		return nil, model.Invalid("role", "unknown role")
	}
	if role == model.RoleOwner && !p.IsSuperuser && p.Role != model.RoleOwner {
		return nil, model.ErrPermissionDenied
	}

	u, err := newUser(userFields{
		username:  input.Username,
		email:     input.Email,
		password:  input.Password,
		confirm:   input.PasswordConfirm,
		firstName: input.FirstName,
		lastName:  input.LastName,
	})
	if err != nil {
		return nil, err
	}
	u.OrganizationID = &input.OrganizationID
	u.Role = role
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		u.Phone = &phone
	}
	if input.AssignedWarehouseID != "" {
		w, err := uc.warehouse(ctx, input.OrganizationID, input.AssignedWarehouseID)
		if err != nil {
			return nil, err
		}
		u.AssignedWarehouseID = &w.ID
	}

	if err := uc.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	uc.logger.Info("user created",
		zap.String("user_id", u.ID),
		zap.String("role", string(u.Role)),
		zap.String("created_by", p.UserID),
	)
	return u, nil
}

func (uc *accountUseCase) warehouse(ctx context.Context, organizationID, id string) (*model.Warehouse, error) {
	w, err := uc.warehouses.FindByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if w == nil || !w.IsActive {
		return nil, model.Invalid("warehouse_id", "warehouse not found")
	}
	return w, nil
}

func (uc *accountUseCase) ListUsers(ctx context.Context, filters *dto.UserFilters) ([]model.User, int, error) {
	if !auth.FromContext(ctx).CanManageUsers() {
		return nil, 0, model.ErrPermissionDenied
	}
	filters.Page, filters.PageSize = model.Page(filters.Page, filters.PageSize)
	return uc.repo.FindUsers(ctx, filters)
}

func (uc *accountUseCase) ChangePassword(ctx context.Context, input *dto.ChangePasswordInput) error {
	u, err := uc.repo.FindUserByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if u == nil {
		return model.ErrNotFound
	}
	if !auth.CheckPassword(u.PasswordHash, input.OldPassword) {
		return model.Invalid("old_password", "current password is incorrect")
	}
	if err := auth.ValidatePassword(input.NewPassword, input.NewPasswordConf); err != nil {
		return err
	}
	hash, err := auth.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	return uc.repo.UpdatePassword(ctx, u.ID, hash)
}

func (uc *accountUseCase) AssignWarehouse(ctx context.Context, input *dto.AssignWarehouseInput) (*model.User, error) {
	if !auth.FromContext(ctx).CanManageUsers() {
		return nil, model.ErrPermissionDenied
	}
	u, err := uc.member(ctx, input.OrganizationID, input.UserID)
	if err != nil {
		return nil, err
	}

	var warehouseID *string
	if input.WarehouseID != "" {
		w, err := uc.warehouse(ctx, input.OrganizationID, input.WarehouseID)
		if err != nil {
			return nil, err
		}
		warehouseID = &w.ID
	}
	if err := uc.repo.UpdateWarehouse(ctx, input.OrganizationID, u.ID, warehouseID); err != nil {
		return nil, err
	}
	u.AssignedWarehouseID = warehouseID
	return u, nil
}

// member loads a user of organizationID; users of other tenants are not found.
func (uc *accountUseCase) member(ctx context.Context, organizationID, id string) (*model.User, error) {
	u, err := uc.repo.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || u.OrganizationID == nil || *u.OrganizationID != organizationID {
		return nil, model.ErrNotFound
	}
	return u, nil
}

func (uc *accountUseCase) DeactivateUser(ctx context.Context, organizationID, id string) error {
	p := auth.FromContext(ctx)
	if !p.CanManageUsers() {
		return model.ErrPermissionDenied
	}
	if p.UserID == id {
		return model.Invalid("id", "you cannot deactivate your own account")
	}
	u, err := uc.member(ctx, organizationID, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Deactivate(ctx, organizationID, u.ID); err != nil {
		return err
	}
	uc.logger.Info("user deactivated", zap.String("user_id", u.ID), zap.String("by", p.UserID))
	return nil
}

func (uc *accountUseCase) CreateAdmin(ctx context.Context, input *dto.CreateAdminInput) (*model.User, error) {
	u, err := newUser(userFields{
		username: input.Username,
		email:    input.Email,
		password: input.Password,
		confirm:  input.Password,
	})
	if err != nil {
		return nil, err
	}
	u.Role = model.RoleOwner
	u.IsSuperuser = true
	if err := uc.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
