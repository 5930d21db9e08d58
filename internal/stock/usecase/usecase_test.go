package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-erp-service/config"
	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/stock/dto"
	"github.com/fekuna/omnipos-erp-service/pkg/cache"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	rows       map[string]*model.Stock
	movements  []model.StockMovement
	products   map[string]bool
	warehouses map[string]bool
	filters    *dto.StockFilters
}

func newMemRepo() *memRepo {
	return &memRepo{
		rows:       map[string]*model.Stock{},
		products:   map[string]bool{"p-1": true},
		warehouses: map[string]bool{"wh-1": true, "wh-2": true},
	}
}

func (m *memRepo) Create(_ context.Context, s *model.Stock, mv *model.StockMovement) error {
	for _, r := range m.rows {
		if r.ProductID == s.ProductID && r.WarehouseID == s.WarehouseID {
			return model.ErrDuplicateStock
		}
	}
	c := *s
	m.rows[s.ID] = &c
	m.movements = append(m.movements, *mv)
	return nil
}

func (m *memRepo) FindByID(_ context.Context, organizationID, id string) (*model.Stock, error) {
	s, ok := m.rows[id]
	if !ok || s.OrganizationID != organizationID {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (m *memRepo) FindAll(_ context.Context, f *dto.StockFilters) ([]model.Stock, int, error) {
	m.filters = f
	return nil, 0, nil
}

func (m *memRepo) FindByWarehouse(context.Context, string, string, []string) ([]model.Stock, error) {
	return nil, nil
}

func (m *memRepo) FindByProducts(context.Context, string, []string) ([]model.Stock, error) {
	return nil, nil
}

func (m *memRepo) UpdateReorderLevel(_ context.Context, _ string, id string, level int) error {
	m.rows[id].ReorderLevel = level
	return nil
}

func (m *memRepo) Adjust(_ context.Context, _ string, id string, delta int, mv *model.StockMovement) (*model.Stock, error) {
	s := m.rows[id]
	if s.Quantity+delta < 0 {
		return nil, model.ErrInsufficientStock
	}
	s.Quantity += delta
	mv.QuantityChange = delta
	m.movements = append(m.movements, *mv)
	c := *s
	return &c, nil
}

func (m *memRepo) Transfer(_ context.Context, in *dto.TransferStockInput, _ int) (*model.Stock, *model.Stock, error) {
	return &model.Stock{WarehouseID: in.SourceWarehouseID}, &model.Stock{WarehouseID: in.TargetWarehouseID, Quantity: in.Quantity}, nil
}

func (m *memRepo) ListMovements(_ context.Context, _ *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return m.movements, len(m.movements), nil
}

func (m *memRepo) ProductExists(_ context.Context, _, id string) (bool, error) {
	return m.products[id], nil
}

func (m *memRepo) WarehouseExists(_ context.Context, _, id string) (bool, error) {
	return m.warehouses[id], nil
}

func (m *memRepo) Upsert(_ context.Context, in *dto.UpsertStockInput, mv *model.StockMovement) (*model.Stock, bool, error) {
	var s *model.Stock
	for _, r := range m.rows {
		if r.ProductID == in.ProductID && r.WarehouseID == in.WarehouseID {
			s = r
		}
	}
	created := s == nil
	if created {
		s = &model.Stock{ID: "s-" + in.ProductID + "-" + in.WarehouseID, OrganizationID: in.OrganizationID, ProductID: in.ProductID, WarehouseID: in.WarehouseID}
		m.rows[s.ID] = s
		mv.MovementType = model.MovementInitial
	}
	s.ReorderLevel = in.ReorderLevel
	if delta := in.Quantity - s.Quantity; delta != 0 {
		mv.QuantityChange = delta
		s.Quantity = in.Quantity
		m.movements = append(m.movements, *mv)
	}
	c := *s
	return &c, created, nil
}

func (m *memRepo) FindProductIDBySKU(_ context.Context, _, sku string) (string, error) {
	if sku == "KEY-001" {
		return "p-1", nil
	}
	return "", nil
}

func (m *memRepo) FindWarehouseIDByName(_ context.Context, _, name string) (string, error) {
	switch strings.ToLower(name) {
	case "milano":
		return "wh-1", nil
	case "roma":
		return "wh-2", nil
	}
	return "", nil
}

var stockCfg = config.StockConfig{
	LockTTL:             time.Second,
	LockAttempts:        2,
	LockBackoff:         5 * time.Millisecond,
	DefaultReorderLevel: 10,
}

func setup(t *testing.T) (*stockUseCase, *memRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	repo := newMemRepo()
	uc := NewStockUseCase(repo, rc, stockCfg, logger.NewNop()).(*stockUseCase)
	return uc, repo, mr
}

func as(role model.Role, warehouseID string) context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{
		UserID: "u1", OrganizationID: "org-1", Role: role, AssignedWarehouseID: warehouseID,
	})
}

func TestCreateStockDefaultsReorderLevel(t *testing.T) {
	uc, repo, _ := setup(t)
	ctx := as(model.RoleInventoryManager, "")

	s, err := uc.CreateStock(ctx, &dto.CreateStockInput{OrganizationID: "org-1", ProductID: "p-1", WarehouseID: "wh-1", Quantity: 5, UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 10, s.ReorderLevel)
	require.Len(t, repo.movements, 1)
	assert.Equal(t, model.MovementInitial, repo.movements[0].MovementType)

	_, err = uc.CreateStock(ctx, &dto.CreateStockInput{OrganizationID: "org-1", ProductID: "p-1", WarehouseID: "wh-1"})
	assert.ErrorIs(t, err, model.ErrDuplicateStock)

	_, err = uc.CreateStock(ctx, &dto.CreateStockInput{OrganizationID: "org-1", ProductID: "p-9", WarehouseID: "wh-1"})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = uc.CreateStock(as(model.RoleStoreManager, "wh-1"), &dto.CreateStockInput{OrganizationID: "org-1", ProductID: "p-1", WarehouseID: "wh-2"})
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
}

func TestAdjustQuantityTakesAndReleasesLock(t *testing.T) {
	uc, repo, mr := setup(t)
	repo.rows["s-1"] = &model.Stock{ID: "s-1", OrganizationID: "org-1", ProductID: "p-1", WarehouseID: "wh-1", Quantity: 4}

	s, err := uc.AdjustQuantity(as(model.RoleOwner, ""), &dto.AdjustStockInput{OrganizationID: "org-1", ID: "s-1", Adjustment: 6, Reason: "recount"})
	require.NoError(t, err)
	assert.Equal(t, 10, s.Quantity)
	assert.False(t, mr.Exists("lock:stock:org-1:s-1"))

	_, err = uc.AdjustQuantity(as(model.RoleOwner, ""), &dto.AdjustStockInput{OrganizationID: "org-1", ID: "s-1", Adjustment: -11})
	assert.ErrorIs(t, err, model.ErrInsufficientStock)
	assert.False(t, mr.Exists("lock:stock:org-1:s-1"))

	_, err = uc.AdjustQuantity(as(model.RoleOwner, ""), &dto.AdjustStockInput{OrganizationID: "org-1", ID: "s-1"})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestAdjustQuantityBusyWhileLocked(t *testing.T) {
	uc, repo, mr := setup(t)
	repo.rows["s-1"] = &model.Stock{ID: "s-1", OrganizationID: "org-1", ProductID: "p-1", WarehouseID: "wh-1", Quantity: 4}
	require.NoError(t, mr.Set("lock:stock:org-1:s-1", "someone-else"))

	_, err := uc.AdjustQuantity(as(model.RoleOwner, ""), &dto.AdjustStockInput{OrganizationID: "org-1", ID: "s-1", Adjustment: 1})
	assert.ErrorIs(t, err, model.ErrBusy)

	got, _ := mr.Get("lock:stock:org-1:s-1")
	assert.Equal(t, "someone-else", got)
	assert.Equal(t, 4, repo.rows["s-1"].Quantity)
}

func TestUpdateStockQuantityBecomesAdjustment(t *testing.T) {
	uc, repo, _ := setup(t)
	repo.rows["s-1"] = &model.Stock{ID: "s-1", OrganizationID: "org-1", ProductID: "p-1", WarehouseID: "wh-1", Quantity: 4, ReorderLevel: 2}
	qty, level := 9, 3

	s, err := uc.UpdateStock(as(model.RoleGeneralManager, ""), &dto.UpdateStockInput{OrganizationID: "org-1", ID: "s-1", Quantity: &qty, ReorderLevel: &level})
	require.NoError(t, err)
	assert.Equal(t, 9, s.Quantity)
	assert.Equal(t, 3, repo.rows["s-1"].ReorderLevel)
	require.Len(t, repo.movements, 1)
	assert.Equal(t, 5, repo.movements[0].QuantityChange)
}

func TestGetStockHidesOtherLocations(t *testing.T) {
	uc, repo, _ := setup(t)
	repo.rows["s-2"] = &model.Stock{ID: "s-2", OrganizationID: "org-1", WarehouseID: "wh-2"}

	_, err := uc.GetStock(as(model.RoleStoreStaff, "wh-1"), "org-1", "s-2")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = uc.GetStock(as(model.RoleOwner, ""), "org-2", "s-2")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestListLowStockScopesLocationRoles(t *testing.T) {
	uc, repo, _ := setup(t)

	_, _, err := uc.ListLowStock(as(model.RoleStoreManager, "wh-1"), &dto.StockFilters{OrganizationID: "org-1"})
	require.NoError(t, err)
	assert.True(t, repo.filters.LowStock)
	assert.Equal(t, dto.WarehouseScope{Restricted: true, WarehouseIDs: []string{"wh-1"}}, repo.filters.Scope)
	assert.Equal(t, 20, repo.filters.PageSize)

	_, _, err = uc.ListStocks(as(model.RoleOwner, ""), &dto.StockFilters{OrganizationID: "org-1"})
	require.NoError(t, err)
	assert.False(t, repo.filters.Scope.Restricted)
}

func TestTransferValidation(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := as(model.RoleInventoryManager, "")

	_, _, err := uc.TransferStock(ctx, &dto.TransferStockInput{OrganizationID: "org-1", ProductID: "p-1", SourceWarehouseID: "wh-1", TargetWarehouseID: "wh-1", Quantity: 1})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	_, _, err = uc.TransferStock(ctx, &dto.TransferStockInput{OrganizationID: "org-1", ProductID: "p-1", SourceWarehouseID: "wh-1", TargetWarehouseID: "wh-2"})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	_, dst, err := uc.TransferStock(ctx, &dto.TransferStockInput{OrganizationID: "org-1", ProductID: "p-1", SourceWarehouseID: "wh-1", TargetWarehouseID: "wh-2", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, dst.Quantity)
}

func TestImportStockSetsQuantitiesThroughMovements(t *testing.T) {
	uc, repo, _ := setup(t)
	repo.rows["s-1"] = &model.Stock{ID: "s-1", OrganizationID: "org-1", ProductID: "p-1", WarehouseID: "wh-1", Quantity: 4, ReorderLevel: 10}

	csv := strings.Join([]string{
		"sku,warehouse,quantity,reorder_level",
		"key-001,Milano,12,5",
		"KEY-001,roma,7,",
		"NOPE-1,Milano,1,1",
		"KEY-001,Torino,1,1",
		"KEY-001,Milano,-3,1",
		"KEY-001,Milano,abc,1",
		",Milano,1,1",
	}, "\n")

	res, err := uc.ImportStock(as(model.RoleInventoryManager, ""), &dto.ImportStockInput{OrganizationID: "org-1", CSV: csv, UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	require.Len(t, res.Errors, 5)
	assert.Equal(t, 4, res.Errors[0].Row)
	assert.Equal(t, "Torino", res.Errors[1].Warehouse)

	assert.Equal(t, 12, repo.rows["s-1"].Quantity)
	assert.Equal(t, 5, repo.rows["s-1"].ReorderLevel)
	created := repo.rows["s-p-1-wh-2"]
	require.NotNil(t, created)
	assert.Equal(t, 7, created.Quantity)
	assert.Equal(t, 10, created.ReorderLevel)

	require.Len(t, repo.movements, 2)
	assert.Equal(t, model.MovementAdjustment, repo.movements[0].MovementType)
	assert.Equal(t, 8, repo.movements[0].QuantityChange)
	assert.Equal(t, model.MovementInitial, repo.movements[1].MovementType)
	assert.Equal(t, 7, repo.movements[1].QuantityChange)
}

func TestImportStockChecksAccess(t *testing.T) {
	uc, repo, _ := setup(t)

	_, err := uc.ImportStock(as(model.RoleStoreStaff, "wh-1"), &dto.ImportStockInput{OrganizationID: "org-1", CSV: "sku,warehouse,quantity\nKEY-001,Milano,1"})
	assert.ErrorIs(t, err, model.ErrPermissionDenied)

	_, err = uc.ImportStock(as(model.RoleOwner, ""), &dto.ImportStockInput{OrganizationID: "org-1", CSV: "sku,quantity\nKEY-001,1"})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	res, err := uc.ImportStock(as(model.RoleOwner, ""), &dto.ImportStockInput{OrganizationID: "org-1", CSV: "sku,warehouse,quantity\nKEY-001,Roma,3"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Empty(t, res.Errors)
	assert.Len(t, repo.movements, 1)
}
