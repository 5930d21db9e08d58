package usecase

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/customer/dto"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/order"
	orderdto "github.com/fekuna/omnipos-erp-service/internal/order/dto"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	rows map[string]*model.Customer
}

func (m *memRepo) Create(_ context.Context, c *model.Customer) error {
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *memRepo) FindByID(_ context.Context, organizationID, id string) (*model.Customer, error) {
	c, ok := m.rows[id]
	if !ok || c.OrganizationID != organizationID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) FindByEmail(context.Context, string, string) (*model.Customer, error) {
	return nil, nil
}

func (m *memRepo) FindByPhone(context.Context, string, string) (*model.Customer, error) {
	return nil, nil
}

func (m *memRepo) FindAll(context.Context, *dto.CustomerFilters) ([]model.Customer, int, error) {
	return nil, 0, nil
}

func (m *memRepo) Update(_ context.Context, c *model.Customer) error {
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *memRepo) Deactivate(_ context.Context, _, id string) error {
	m.rows[id].IsActive = false
	return nil
}

type orderHistory struct {
	order.Repository
	filters *orderdto.OrderFilters
}

func (o *orderHistory) FindAll(_ context.Context, f *orderdto.OrderFilters) ([]model.Order, int, error) {
	o.filters = f
	return []model.Order{{OrderNumber: "ORD-20250314-AAAAAAAA"}}, 1, nil
}

func staff() context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{
		UserID: "u1", OrganizationID: "org-1", Role: model.RoleStoreStaff, AssignedWarehouseID: "wh-1",
	})
}

func setup() (*customerUseCase, *memRepo, *orderHistory) {
	repo := &memRepo{rows: map[string]*model.Customer{}}
	orders := &orderHistory{}
	return NewCustomerUseCase(repo, orders, logger.NewNop()).(*customerUseCase), repo, orders
}

func TestCreateCustomerNormalizes(t *testing.T) {
	uc, _, _ := setup()

	c, err := uc.CreateCustomer(staff(), &dto.CreateCustomerInput{
		OrganizationID: "org-1", Name: " Anna Rossi ", Email: " Anna@Example.COM ", Phone: " 555-1234 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Anna Rossi", c.Name)
	assert.Equal(t, "anna@example.com", *c.Email)
	assert.Equal(t, "555-1234", *c.Phone)
	assert.Nil(t, c.Address)

	_, err = uc.CreateCustomer(staff(), &dto.CreateCustomerInput{OrganizationID: "org-1", Name: "A"})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = uc.CreateCustomer(staff(), &dto.CreateCustomerInput{OrganizationID: "org-1", Name: "Anna", Email: "not-an-email"})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	inventory := auth.WithPrincipal(context.Background(), &auth.Principal{UserID: "u2", OrganizationID: "org-1", Role: model.RoleInventoryManager})
	_, err = uc.CreateCustomer(inventory, &dto.CreateCustomerInput{OrganizationID: "org-1", Name: "Anna"})
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
}

func TestDeleteCustomerIsSoft(t *testing.T) {
	uc, repo, _ := setup()
	repo.rows["c-1"] = &model.Customer{BaseModel: model.BaseModel{ID: "c-1"}, OrganizationID: "org-1", Name: "Anna", IsActive: true}

	require.NoError(t, uc.DeleteCustomer(staff(), "org-1", "c-1"))
	assert.False(t, repo.rows["c-1"].IsActive)

	_, err := uc.GetCustomer(staff(), "org-2", "c-1")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCustomerOrdersScopedToCallerWarehouses(t *testing.T) {
	uc, repo, orders := setup()
	repo.rows["c-1"] = &model.Customer{BaseModel: model.BaseModel{ID: "c-1"}, OrganizationID: "org-1", Name: "Anna", IsActive: true}

	items, count, err := uc.CustomerOrders(staff(), &orderdto.OrderFilters{OrganizationID: "org-1", CustomerID: "c-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, items, 1)
	assert.True(t, orders.filters.Scope.Restricted)
	assert.Equal(t, []string{"wh-1"}, orders.filters.Scope.WarehouseIDs)

	_, _, err = uc.CustomerOrders(staff(), &orderdto.OrderFilters{OrganizationID: "org-1", CustomerID: "missing"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}
