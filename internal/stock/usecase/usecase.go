package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-erp-service/config"
	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/stock"
	"github.com/fekuna/omnipos-erp-service/internal/stock/dto"
	"github.com/fekuna/omnipos-erp-service/pkg/cache"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/fekuna/omnipos-erp-service/internal/stock")

type stockUseCase struct {
	repo   stock.Repository
	cache  *cache.RedisClient
	cfg    config.StockConfig
	logger logger.ZapLogger
}

func NewStockUseCase(repo stock.Repository, cache *cache.RedisClient, cfg config.StockConfig, log logger.ZapLogger) stock.UseCase {
	return &stockUseCase{
		repo:   repo,
		cache:  cache,
		cfg:    cfg,
		logger: log,
	}
}

func (uc *stockUseCase) CreateStock(ctx context.Context, input *dto.CreateStockInput) (*model.Stock, error) {
	if !auth.FromContext(ctx).CanManageInventory() {
		return nil, model.ErrPermissionDenied
	}
	reorder := uc.cfg.DefaultReorderLevel
	if input.ReorderLevel != nil {
		reorder = *input.ReorderLevel
	}
	if input.Quantity < 0 {
		return nil, model.Invalid("quantity", "cannot be negative")
	}
	if reorder < 0 {
		return nil, model.Invalid("reorder_level", "cannot be negative")
	}
	if err := uc.checkTenant(ctx, input.OrganizationID, input.ProductID, input.WarehouseID); err != nil {
		return nil, err
	}

	now := time.Now()
	s := &model.Stock{
		ID:             uuid.New().String(),
		OrganizationID: input.OrganizationID,
		ProductID:      input.ProductID,
		WarehouseID:    input.WarehouseID,
		Quantity:       input.Quantity,
		ReorderLevel:   reorder,
		CreatedBy:      optional(input.UserID),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	movement := &model.StockMovement{
		ID:           uuid.New().String(),
		MovementType: model.MovementInitial,
		Notes:        "initial stock",
		CreatedBy:    optional(input.UserID),
	}
	if err := uc.repo.Create(ctx, s, movement); err != nil {
		return nil, err
	}
	return uc.repo.FindByID(ctx, input.OrganizationID, s.ID)
}

func (uc *stockUseCase) checkTenant(ctx context.Context, orgID, productID, warehouseID string) error {
	ok, err := uc.repo.ProductExists(ctx, orgID, productID)
	if err != nil {
		return err
	}
	if !ok {
		return model.Invalid("product_id", "product not found in organization")
	}
	ok, err = uc.repo.WarehouseExists(ctx, orgID, warehouseID)
	if err != nil {
		return err
	}
	if !ok {
		return model.Invalid("warehouse_id", "warehouse not found in organization")
	}
	if !auth.FromContext(ctx).CanAccessWarehouse(warehouseID) {
		return model.ErrPermissionDenied
	}
	return nil
}

func (uc *stockUseCase) GetStock(ctx context.Context, organizationID, id string) (*model.Stock, error) {
	s, err := uc.repo.FindByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if s == nil || !auth.FromContext(ctx).CanAccessWarehouse(s.WarehouseID) {
		return nil, model.ErrNotFound
	}
	return s, nil
}

func (uc *stockUseCase) ListStocks(ctx context.Context, filters *dto.StockFilters) ([]model.Stock, int, error) {
	filters.Scope = ScopeFor(auth.FromContext(ctx))
	filters.Page, filters.PageSize = model.Page(filters.Page, filters.PageSize)
	return uc.repo.FindAll(ctx, filters)
}

func (uc *stockUseCase) ListLowStock(ctx context.Context, filters *dto.StockFilters) ([]model.Stock, int, error) {
	filters.LowStock = true
	return uc.ListStocks(ctx, filters)
}

// ScopeFor converts the caller's warehouse access into a listing filter.
func ScopeFor(p *auth.Principal) dto.WarehouseScope {
	s := p.WarehouseScope()
	if s.All {
		return dto.WarehouseScope{}
	}
	return dto.WarehouseScope{Restricted: true, WarehouseIDs: s.IDs}
}

func (uc *stockUseCase) UpdateStock(ctx context.Context, input *dto.UpdateStockInput) (*model.Stock, error) {
	if !auth.FromContext(ctx).CanManageInventory() {
		return nil, model.ErrPermissionDenied
	}
	s, err := uc.GetStock(ctx, input.OrganizationID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.ReorderLevel != nil {
		if *input.ReorderLevel < 0 {
			return nil, model.Invalid("reorder_level", "cannot be negative")
		}
		if err := uc.repo.UpdateReorderLevel(ctx, input.OrganizationID, s.ID, *input.ReorderLevel); err != nil {
			return nil, err
		}
		s.ReorderLevel = *input.ReorderLevel
	}

	if input.Quantity != nil && *input.Quantity != s.Quantity {
		if *input.Quantity < 0 {
			return nil, model.Invalid("quantity", "cannot be negative")
		}
		return uc.adjust(ctx, &dto.AdjustStockInput{
			OrganizationID: input.OrganizationID,
			ID:             s.ID,
			Adjustment:     *input.Quantity - s.Quantity,
			Reason:         "quantity updated",
			UserID:         input.UserID,
		})
	}
	return s, nil
}

func (uc *stockUseCase) AdjustQuantity(ctx context.Context, input *dto.AdjustStockInput) (*model.Stock, error) {
	if !auth.FromContext(ctx).CanManageInventory() {
		return nil, model.ErrPermissionDenied
	}
	if input.Adjustment == 0 {
		return nil, model.Invalid("adjustment", "must not be zero")
	}
	if _, err := uc.GetStock(ctx, input.OrganizationID, input.ID); err != nil {
		return nil, err
	}
	return uc.adjust(ctx, input)
}

func (uc *stockUseCase) adjust(ctx context.Context, input *dto.AdjustStockInput) (*model.Stock, error) {
	ctx, span := tracer.Start(ctx, "stock.Adjust")
	defer span.End()
	span.SetAttributes(attribute.String("stock.id", input.ID), attribute.Int("stock.delta", input.Adjustment))

	lockKey := fmt.Sprintf("lock:stock:%s:%s", input.OrganizationID, input.ID)
	release, err := uc.acquire(ctx, lockKey)
	if err != nil {
		return nil, err
	}
	defer release()

	refType := "manual"
	movement := &model.StockMovement{
		ID:            uuid.New().String(),
		MovementType:  model.MovementAdjustment,
		ReferenceType: &refType,
		Notes:         input.Reason,
		CreatedBy:     optional(input.UserID),
	}
	s, err := uc.repo.Adjust(ctx, input.OrganizationID, input.ID, input.Adjustment, movement)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.logger.Info("stock adjusted",
		zap.String("stock_id", s.ID),
		zap.Int("delta", input.Adjustment),
		zap.Int("quantity", s.Quantity),
	)
	return s, nil
}

// acquire takes the per-row Redis lock, retrying a few times before giving
// up. Without a cache only the database row lock applies.
func (uc *stockUseCase) acquire(ctx context.Context, key string) (func(), error) {
	if uc.cache == nil {
		return func() {}, nil
	}

	value := uuid.New().String()
	acquired := false
	for i := 0; i < uc.cfg.LockAttempts; i++ {
		ok, err := uc.cache.AcquireLock(ctx, key, value, uc.cfg.LockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.String("key", key), zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(uc.cfg.LockBackoff):
		}
	}
	if !acquired {
		return nil, model.ErrBusy
	}

	return func() {
		if _, err := uc.cache.ReleaseLock(context.Background(), key, value); err != nil {
			uc.logger.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func (uc *stockUseCase) TransferStock(ctx context.Context, input *dto.TransferStockInput) (*model.Stock, *model.Stock, error) {
	p := auth.FromContext(ctx)
	if !p.CanManageInventory() {
		return nil, nil, model.ErrPermissionDenied
	}
	if input.Quantity <= 0 {
		return nil, nil, model.Invalid("quantity", "must be positive")
	}
	if input.SourceWarehouseID == input.TargetWarehouseID {
		return nil, nil, model.Invalid("target_warehouse_id", "must differ from the source warehouse")
	}
	if err := uc.checkTenant(ctx, input.OrganizationID, input.ProductID, input.SourceWarehouseID); err != nil {
		return nil, nil, err
	}
	if err := uc.checkTenant(ctx, input.OrganizationID, input.ProductID, input.TargetWarehouseID); err != nil {
		return nil, nil, err
	}

	ctx, span := tracer.Start(ctx, "stock.Transfer")
	defer span.End()

	src, dst, err := uc.repo.Transfer(ctx, input, uc.cfg.DefaultReorderLevel)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	uc.logger.Info("stock transferred",
		zap.String("product_id", input.ProductID),
		zap.String("from", input.SourceWarehouseID),
		zap.String("to", input.TargetWarehouseID),
		zap.Int("quantity", input.Quantity),
	)
	return src, dst, nil
}

func (uc *stockUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	filters.Scope = ScopeFor(auth.FromContext(ctx))
	filters.Page, filters.PageSize = model.Page(filters.Page, filters.PageSize)
	return uc.repo.ListMovements(ctx, filters)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
