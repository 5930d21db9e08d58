package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
)

func strPtr(s string) *string { return &s }

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", "test", 15*time.Minute, 7*24*time.Hour)
	u := &model.User{
		BaseModel:           model.BaseModel{ID: "u1"},
		OrganizationID:      strPtr("org1"),
		AssignedWarehouseID: strPtr("w1"),
		Role:                model.RoleStoreStaff,
	}

	pair, err := m.Issue(u)
	require.NoError(t, err)

	ctx, err := m.Authenticate(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	p := FromContext(ctx)
	require.NotNil(t, p)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "org1", p.OrganizationID)
	assert.Equal(t, "w1", p.AssignedWarehouseID)
	assert.Equal(t, model.RoleStoreStaff, p.Role)

	_, err = m.Authenticate(context.Background(), pair.RefreshToken)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	claims, err := m.Parse(pair.RefreshToken, TokenRefresh)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
}

func TestTokenExpiredAndForeign(t *testing.T) {
	m := NewTokenManager("secret", "test", time.Minute, time.Hour)
	pair, err := m.Issue(&model.User{BaseModel: model.BaseModel{ID: "u1"}, Role: model.RoleOwner})
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = m.Parse(pair.AccessToken, TokenAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokenManager("other", "test", time.Minute, time.Hour)
	_, err = other.Parse(pair.RefreshToken, TokenRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidatePassword(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword("short1", "short1"), model.ErrInvalidArgument)
	assert.ErrorIs(t, ValidatePassword("12345678", "12345678"), model.ErrInvalidArgument)
	assert.ErrorIs(t, ValidatePassword("s3cretpass", "s3cretpas"), model.ErrInvalidArgument)
	assert.NoError(t, ValidatePassword("s3cretpass", "s3cretpass"))

	hash, err := HashPassword("s3cretpass")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cretpass"))
	assert.False(t, CheckPassword(hash, "wrong-pass"))
}

func TestWarehouseScope(t *testing.T) {
	owner := &Principal{Role: model.RoleOwner}
	staff := &Principal{Role: model.RoleStoreStaff, AssignedWarehouseID: "w1"}
	unassigned := &Principal{Role: model.RoleStoreManager}
	super := &Principal{IsSuperuser: true}

	assert.True(t, owner.CanAccessWarehouse("any"))
	assert.True(t, staff.CanAccessWarehouse("w1"))
	assert.False(t, staff.CanAccessWarehouse("w2"))
	assert.False(t, unassigned.CanAccessWarehouse("w1"))
	assert.True(t, super.CanAccessWarehouse("w9"))

	assert.True(t, owner.SeesStockDetails())
	assert.False(t, staff.SeesStockDetails())
	assert.True(t, super.SeesStockDetails())
}

func TestPermissions(t *testing.T) {
	inv := &Principal{Role: model.RoleInventoryManager}
	staff := &Principal{Role: model.RoleStoreStaff}
	gm := &Principal{Role: model.RoleGeneralManager}
	var anon *Principal

	assert.True(t, inv.CanManageInventory())
	assert.False(t, inv.CanManageSales())
	assert.False(t, staff.CanManageInventory())
	assert.True(t, staff.CanManageSales())
	assert.True(t, gm.CanViewAnalytics())
	assert.True(t, gm.CanManageUsers())
	assert.False(t, staff.CanViewAnalytics())
	assert.False(t, anon.CanManageSales())
}

func TestGetOrganizationID(t *testing.T) {
	md := metadata.Pairs("x-organization-id", "org2")
	base := metadata.NewIncomingContext(context.Background(), md)

	ctx := WithPrincipal(base, &Principal{OrganizationID: "org1"})
	assert.Equal(t, "org1", GetOrganizationID(ctx))

	ctx = WithPrincipal(base, &Principal{OrganizationID: "org1", IsSuperuser: true})
	assert.Equal(t, "org2", GetOrganizationID(ctx))

	assert.Equal(t, "", GetOrganizationID(context.Background()))
}
