package usecase

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/stock"
	stockdto "github.com/fekuna/omnipos-erp-service/internal/stock/dto"
	"github.com/fekuna/omnipos-erp-service/internal/warehouse/dto"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	rows    map[string]*model.Warehouse
	filters *dto.WarehouseFilters
}

func (m *memRepo) Create(_ context.Context, w *model.Warehouse) error {
	c := *w
	m.rows[w.ID] = &c
	return nil
}

func (m *memRepo) FindByID(_ context.Context, organizationID, id string) (*model.Warehouse, error) {
	w, ok := m.rows[id]
	if !ok || w.OrganizationID != organizationID {
		return nil, nil
	}
	c := *w
	return &c, nil
}

func (m *memRepo) FindAll(_ context.Context, f *dto.WarehouseFilters) ([]model.Warehouse, int, error) {
	m.filters = f
	return nil, 0, nil
}

func (m *memRepo) Update(_ context.Context, w *model.Warehouse) error {
	c := *w
	m.rows[w.ID] = &c
	return nil
}

func (m *memRepo) Deactivate(_ context.Context, _, id string) error {
	m.rows[id].IsActive = false
	return nil
}

type stockLevels struct {
	stock.Repository
	filters *stockdto.StockFilters
}

func (s *stockLevels) FindAll(_ context.Context, f *stockdto.StockFilters) ([]model.Stock, int, error) {
	s.filters = f
	return []model.Stock{{ID: "s-1", WarehouseID: f.WarehouseID, Quantity: 3}}, 1, nil
}

func as(role model.Role, warehouseID string) context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{
		UserID: "u1", OrganizationID: "org-1", Role: role, AssignedWarehouseID: warehouseID,
	})
}

func setup() (*warehouseUseCase, *memRepo, *stockLevels) {
	repo := &memRepo{rows: map[string]*model.Warehouse{}}
	levels := &stockLevels{}
	return NewWarehouseUseCase(repo, levels, logger.NewNop()).(*warehouseUseCase), repo, levels
}

func TestCreateWarehouseTrimsName(t *testing.T) {
	uc, repo, _ := setup()

	w, err := uc.CreateWarehouse(as(model.RoleInventoryManager, ""), &dto.CreateWarehouseInput{
		OrganizationID: "org-1", Name: "  Main  ", Location: " Milano ", UserID: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Main", w.Name)
	assert.Equal(t, "Milano", w.Location)
	assert.True(t, w.IsActive)
	assert.Contains(t, repo.rows, w.ID)

	_, err = uc.CreateWarehouse(as(model.RoleOwner, ""), &dto.CreateWarehouseInput{OrganizationID: "org-1", Name: " M "})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = uc.CreateWarehouse(as(model.RoleStoreManager, "wh-1"), &dto.CreateWarehouseInput{OrganizationID: "org-1", Name: "Outlet"})
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
}

func TestWarehouseVisibility(t *testing.T) {
	uc, repo, levels := setup()
	repo.rows["wh-1"] = &model.Warehouse{BaseModel: model.BaseModel{ID: "wh-1"}, OrganizationID: "org-1", Name: "Main", IsActive: true}
	repo.rows["wh-2"] = &model.Warehouse{BaseModel: model.BaseModel{ID: "wh-2"}, OrganizationID: "org-1", Name: "Outlet", IsActive: true}

	_, err := uc.GetWarehouse(as(model.RoleStoreStaff, "wh-1"), "org-1", "wh-2")
	assert.ErrorIs(t, err, model.ErrNotFound)

	stocks, count, err := uc.StockLevels(as(model.RoleStoreStaff, "wh-1"), "org-1", "wh-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, stocks, 1)
	assert.Equal(t, "wh-1", levels.filters.WarehouseID)
	assert.Zero(t, levels.filters.PageSize)

	_, _, err = uc.ListWarehouses(as(model.RoleStoreStaff, "wh-1"), &dto.WarehouseFilters{OrganizationID: "org-1"})
	require.NoError(t, err)
	assert.Equal(t, stockdto.WarehouseScope{Restricted: true, WarehouseIDs: []string{"wh-1"}}, repo.filters.Scope)
}

func TestDeleteWarehouseDeactivates(t *testing.T) {
	uc, repo, _ := setup()
	repo.rows["wh-1"] = &model.Warehouse{BaseModel: model.BaseModel{ID: "wh-1"}, OrganizationID: "org-1", Name: "Main", IsActive: true}

	require.NoError(t, uc.DeleteWarehouse(as(model.RoleGeneralManager, ""), "org-1", "wh-1"))
	assert.False(t, repo.rows["wh-1"].IsActive)

	assert.ErrorIs(t, uc.DeleteWarehouse(as(model.RoleGeneralManager, ""), "org-2", "wh-1"), model.ErrNotFound)
}

func TestUpdateWarehouse(t *testing.T) {
	uc, repo, _ := setup()
	repo.rows["wh-1"] = &model.Warehouse{BaseModel: model.BaseModel{ID: "wh-1"}, OrganizationID: "org-1", Name: "Main", IsActive: true}
	inactive := false

	w, err := uc.UpdateWarehouse(as(model.RoleOwner, ""), &dto.UpdateWarehouseInput{
		ID: "wh-1", OrganizationID: "org-1", Name: "Main Store", IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Main Store", w.Name)
	assert.False(t, repo.rows["wh-1"].IsActive)
}
