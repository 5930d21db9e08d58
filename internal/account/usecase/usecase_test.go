package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/account/dto"
	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	orgs  map[string]*model.Organization
	users map[string]*model.User
}

func newMemRepo() *memRepo {
	return &memRepo{orgs: map[string]*model.Organization{}, users: map[string]*model.User{}}
}

func (m *memRepo) CreateOrganization(ctx context.Context, org *model.Organization, owner *model.User) error {
	if err := m.CreateUser(ctx, owner); err != nil {
		return err
	}
	m.orgs[org.ID] = org
	return nil
}

func (m *memRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, o := range m.orgs {
		if o.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) CreateUser(_ context.Context, u *model.User) error {
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return model.ErrUsernameTaken
		}
	}
	c := *u
	m.users[u.ID] = &c
	return nil
}

func (m *memRepo) FindUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (m *memRepo) FindUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memRepo) FindUsers(_ context.Context, f *dto.UserFilters) ([]model.User, int, error) {
	var out []model.User
	for _, u := range m.users {
		if u.OrganizationID != nil && *u.OrganizationID == f.OrganizationID {
			out = append(out, *u)
		}
	}
	return out, len(out), nil
}

func (m *memRepo) UpdatePassword(_ context.Context, id, hash string) error {
	m.users[id].PasswordHash = hash
	return nil
}

func (m *memRepo) UpdateWarehouse(_ context.Context, _ string, id string, warehouseID *string) error {
	m.users[id].AssignedWarehouseID = warehouseID
	return nil
}

func (m *memRepo) Deactivate(_ context.Context, _ string, id string) error {
	m.users[id].IsActive = false
	return nil
}

func (m *memRepo) TouchLogin(_ context.Context, id string) error {
	now := time.Now()
	m.users[id].LastLoginAt = &now
	return nil
}

type warehouses map[string]*model.Warehouse

func (w warehouses) FindByID(_ context.Context, organizationID, id string) (*model.Warehouse, error) {
	wh, ok := w[id]
	if !ok || wh.OrganizationID != organizationID {
		return nil, nil
	}
	return wh, nil
}

func setup(t *testing.T) (*accountUseCase, *memRepo, *auth.TokenManager) {
	t.Helper()
	repo := newMemRepo()
	tokens := auth.NewTokenManager("test-secret", "omnipos-erp", time.Minute, time.Hour)
	uc := NewAccountUseCase(repo, warehouses{}, tokens, logger.NewNop()).(*accountUseCase)
	return uc, repo, tokens
}

func signUp(t *testing.T, uc *accountUseCase) (*model.User, context.Context) {
	t.Helper()
	owner, _, err := uc.SignUp(context.Background(), &dto.SignUpInput{
		OrganizationName: "Café Milano",
		Username:         "maria",
		Email:            "Maria@Example.com",
		Password:         "s3cret-pass",
		PasswordConfirm:  "s3cret-pass",
	})
	require.NoError(t, err)
	ctx := auth.WithPrincipal(context.Background(), &auth.Principal{
		UserID: owner.ID, OrganizationID: *owner.OrganizationID, Role: owner.Role,
	})
	return owner, ctx
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "cafe-milano", Slugify("Café Milano"))
	assert.Equal(t, "acme-co-2", Slugify("  ACME & Co. (2) "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestSignUpCreatesOwner(t *testing.T) {
	uc, repo, tokens := setup(t)

	owner, ctx := signUp(t, uc)
	assert.Equal(t, model.RoleOwner, owner.Role)
	assert.Equal(t, "maria@example.com", owner.Email)
	require.Len(t, repo.orgs, 1)
	for _, org := range repo.orgs {
		assert.Equal(t, "cafe-milano", org.Slug)
	}

	_, pair, err := uc.Login(ctx, "maria", "s3cret-pass")
	require.NoError(t, err)
	claims, err := tokens.Parse(pair.AccessToken, auth.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, claims.Subject)
	assert.Equal(t, model.RoleOwner, claims.Role)

	_, _, err = uc.SignUp(context.Background(), &dto.SignUpInput{
		OrganizationName: "Cafe Milano",
		Username:         "other",
		Password:         "s3cret-pass",
		PasswordConfirm:  "s3cret-pass",
	})
	require.NoError(t, err)
	slugs := map[string]bool{}
	for _, org := range repo.orgs {
		slugs[org.Slug] = true
	}
	assert.Len(t, slugs, 2)
}

func TestSignUpRejectsWeakPassword(t *testing.T) {
	uc, repo, _ := setup(t)
	_, _, err := uc.SignUp(context.Background(), &dto.SignUpInput{
		OrganizationName: "Shop",
		Username:         "bob",
		Password:         "12345678",
		PasswordConfirm:  "12345678",
	})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	assert.Empty(t, repo.orgs)
}

func TestLoginFailures(t *testing.T) {
	uc, repo, _ := setup(t)
	owner, ctx := signUp(t, uc)

	_, _, err := uc.Login(ctx, "maria", "wrong-pass1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, _, err = uc.Login(ctx, "nobody", "s3cret-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	repo.users[owner.ID].IsActive = false
	_, _, err = uc.Login(ctx, "maria", "s3cret-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestRefreshReloadsUser(t *testing.T) {
	uc, repo, tokens := setup(t)
	owner, ctx := signUp(t, uc)

	_, pair, err := uc.Login(ctx, "maria", "s3cret-pass")
	require.NoError(t, err)

	_, _, err = uc.RefreshToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	repo.users[owner.ID].Role = model.RoleGeneralManager
	_, refreshed, err := uc.RefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	claims, err := tokens.Parse(refreshed.AccessToken, auth.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, model.RoleGeneralManager, claims.Role)
}

func TestCreateUserAndAssignWarehouse(t *testing.T) {
	uc, repo, _ := setup(t)
	owner, ctx := signUp(t, uc)
	org := *owner.OrganizationID
	uc.warehouses = warehouses{
		"wh-1": {BaseModel: model.BaseModel{ID: "wh-1"}, OrganizationID: org, IsActive: true},
		"wh-x": {BaseModel: model.BaseModel{ID: "wh-x"}, OrganizationID: "other-org", IsActive: true},
	}

	staff, err := uc.CreateUser(ctx, &dto.CreateUserInput{
		OrganizationID:      org,
		Username:            "sam",
		Password:            "another-pass",
		PasswordConfirm:     "another-pass",
		Role:                string(model.RoleStoreStaff),
		AssignedWarehouseID: "wh-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "wh-1", *staff.AssignedWarehouseID)

	_, err = uc.CreateUser(ctx, &dto.CreateUserInput{
		OrganizationID: org, Username: "sam", Password: "another-pass", PasswordConfirm: "another-pass",
		Role: string(model.RoleStoreStaff),
	})
	assert.ErrorIs(t, err, model.ErrUsernameTaken)

	_, err = uc.AssignWarehouse(ctx, &dto.AssignWarehouseInput{OrganizationID: org, UserID: staff.ID, WarehouseID: "wh-x"})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	cleared, err := uc.AssignWarehouse(ctx, &dto.AssignWarehouseInput{OrganizationID: org, UserID: staff.ID})
	require.NoError(t, err)
	assert.Nil(t, cleared.AssignedWarehouseID)
	assert.Nil(t, repo.users[staff.ID].AssignedWarehouseID)

	staffCtx := auth.WithPrincipal(context.Background(), &auth.Principal{UserID: staff.ID, OrganizationID: org, Role: model.RoleStoreStaff})
	_, err = uc.CreateUser(staffCtx, &dto.CreateUserInput{OrganizationID: org, Username: "eve", Role: "store_staff"})
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
}

func TestGeneralManagerCannotCreateOwner(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := auth.WithPrincipal(context.Background(), &auth.Principal{UserID: "gm", OrganizationID: "org-1", Role: model.RoleGeneralManager})
	_, err := uc.CreateUser(ctx, &dto.CreateUserInput{
		OrganizationID: "org-1", Username: "boss", Password: "another-pass", PasswordConfirm: "another-pass",
		Role: string(model.RoleOwner),
	})
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
}

func TestChangePassword(t *testing.T) {
	uc, _, _ := setup(t)
	owner, ctx := signUp(t, uc)

	err := uc.ChangePassword(ctx, &dto.ChangePasswordInput{UserID: owner.ID, OldPassword: "nope", NewPassword: "fresh-pass1", NewPasswordConf: "fresh-pass1"})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	err = uc.ChangePassword(ctx, &dto.ChangePasswordInput{UserID: owner.ID, OldPassword: "s3cret-pass", NewPassword: "fresh-pass1", NewPasswordConf: "fresh-pass2"})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	require.NoError(t, uc.ChangePassword(ctx, &dto.ChangePasswordInput{UserID: owner.ID, OldPassword: "s3cret-pass", NewPassword: "fresh-pass1", NewPasswordConf: "fresh-pass1"}))
	_, _, err = uc.Login(ctx, "maria", "fresh-pass1")
	assert.NoError(t, err)
}

func TestDeactivateUser(t *testing.T) {
	uc, repo, _ := setup(t)
	owner, ctx := signUp(t, uc)
	org := *owner.OrganizationID

	assert.ErrorIs(t, uc.DeactivateUser(ctx, org, owner.ID), model.ErrInvalidArgument)

	staff, err := uc.CreateUser(ctx, &dto.CreateUserInput{
		OrganizationID: org, Username: "sam", Password: "another-pass", PasswordConfirm: "another-pass",
		Role: string(model.RoleStoreManager),
	})
	require.NoError(t, err)

	require.NoError(t, uc.DeactivateUser(ctx, org, staff.ID))
	assert.False(t, repo.users[staff.ID].IsActive)

	assert.ErrorIs(t, uc.DeactivateUser(ctx, "other-org", staff.ID), model.ErrNotFound)
}
