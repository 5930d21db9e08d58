package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/stock"
	stockdto "github.com/fekuna/omnipos-erp-service/internal/stock/dto"
	stockuc "github.com/fekuna/omnipos-erp-service/internal/stock/usecase"
	"github.com/fekuna/omnipos-erp-service/internal/warehouse"
	"github.com/fekuna/omnipos-erp-service/internal/warehouse/dto"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type warehouseUseCase struct {
	repo   warehouse.Repository
	stocks stock.Repository
	logger logger.ZapLogger
}

func NewWarehouseUseCase(repo warehouse.Repository, stocks stock.Repository, log logger.ZapLogger) warehouse.UseCase {
	return &warehouseUseCase{
		repo:   repo,
		stocks: stocks,
		logger: log,
	}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return "", model.Invalid("name", "must be at least 2 characters long")
	}
	return name, nil
}

func (uc *warehouseUseCase) CreateWarehouse(ctx context.Context, input *dto.CreateWarehouseInput) (*model.Warehouse, error) {
	if !auth.FromContext(ctx).CanManageInventory() {
		return nil, model.ErrPermissionDenied
	}
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	w := &model.Warehouse{
		BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OrganizationID: input.OrganizationID,
		Name:           name,
		Location:       strings.TrimSpace(input.Location),
		IsActive:       true,
	}
	if input.UserID != "" {
		w.CreatedBy = &input.UserID
	}

	if err := uc.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	uc.logger.Info("warehouse created", zap.String("warehouse_id", w.ID), zap.String("organization_id", w.OrganizationID))
	return w, nil
}

func (uc *warehouseUseCase) GetWarehouse(ctx context.Context, organizationID, id string) (*model.Warehouse, error) {
	w, err := uc.repo.FindByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if w == nil || !auth.FromContext(ctx).CanAccessWarehouse(w.ID) {
		return nil, model.ErrNotFound
	}
	return w, nil
}

func (uc *warehouseUseCase) ListWarehouses(ctx context.Context, filters *dto.WarehouseFilters) ([]model.Warehouse, int, error) {
	filters.Scope = stockuc.ScopeFor(auth.FromContext(ctx))
	filters.Page, filters.PageSize = model.Page(filters.Page, filters.PageSize)
	return uc.repo.FindAll(ctx, filters)
}

func (uc *warehouseUseCase) UpdateWarehouse(ctx context.Context, input *dto.UpdateWarehouseInput) (*model.Warehouse, error) {
	if !auth.FromContext(ctx).CanManageInventory() {
		return nil, model.ErrPermissionDenied
	}
	w, err := uc.GetWarehouse(ctx, input.OrganizationID, input.ID)
	if err != nil {
		return nil, err
	}
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}

	w.Name = name
	w.Location = strings.TrimSpace(input.Location)
	if input.IsActive != nil {
		w.IsActive = *input.IsActive
	}
	w.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// DeleteWarehouse deactivates the warehouse; stock and order history stay.
func (uc *warehouseUseCase) DeleteWarehouse(ctx context.Context, organizationID, id string) error {
	if !auth.FromContext(ctx).CanManageInventory() {
		return model.ErrPermissionDenied
	}
	if _, err := uc.GetWarehouse(ctx, organizationID, id); err != nil {
		return err
	}
	return uc.repo.Deactivate(ctx, organizationID, id)
}

func (uc *warehouseUseCase) StockLevels(ctx context.Context, organizationID, id string) ([]model.Stock, int, error) {
	if _, err := uc.GetWarehouse(ctx, organizationID, id); err != nil {
		return nil, 0, err
	}
	return uc.stocks.FindAll(ctx, &stockdto.StockFilters{
		OrganizationID: organizationID,
		WarehouseID:    id,
		Page:           1,
		PageSize:       0,
	})
}
