package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/stock/dto"
	"github.com/fekuna/omnipos-erp-service/pkg/database/postgres"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const stockUniqueConstraint = "stocks_product_warehouse_key"

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, s *model.Stock, movement *model.StockMovement) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		query := `
            INSERT INTO stocks (
                id, organization_id, product_id, warehouse_id,
                quantity, reorder_level, created_by, created_at, updated_at
            )
            VALUES (
                :id, :organization_id, :product_id, :warehouse_id,
                :quantity, :reorder_level, :created_by, :created_at, :updated_at
            )
        `
		if _, err := tx.NamedExecContext(ctx, query, s); err != nil {
			if postgres.IsUniqueViolation(err, stockUniqueConstraint) {
				return model.ErrDuplicateStock
			}
			return fmt.Errorf("insert stock: %w", err)
		}

		movement.OrganizationID = s.OrganizationID
		movement.StockID = s.ID
		movement.ProductID = s.ProductID
		movement.WarehouseID = s.WarehouseID
		movement.QuantityChange = s.Quantity
		movement.QuantityAfter = s.Quantity
		movement.CreatedAt = s.CreatedAt
		return insertMovement(ctx, tx, movement)
	})
}

func (r *PGRepository) FindByID(ctx context.Context, organizationID, id string) (*model.Stock, error) {
	var s model.Stock
	err := r.DB.GetContext(ctx, &s, lockStocksQuery+` WHERE s.organization_id = $1 AND s.id = $2`, organizationID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func scopeCondition(scope dto.WarehouseScope, column string, conditions []string, args map[string]interface{}) []string {
	if !scope.Restricted {
		return conditions
	}
	if len(scope.WarehouseIDs) == 0 {
		return append(conditions, "FALSE")
	}
	args["scope_ids"] = pq.Array(scope.WarehouseIDs)
	return append(conditions, column+" = ANY(:scope_ids)")
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.StockFilters) ([]model.Stock, int, error) {
	var items []model.Stock

	conditions := []string{"s.organization_id = :organization_id"}
	args := map[string]interface{}{"organization_id": f.OrganizationID}

	if f.WarehouseID != "" {
		conditions = append(conditions, "s.warehouse_id = :warehouse_id")
		args["warehouse_id"] = f.WarehouseID
	}
	if f.ProductID != "" {
		conditions = append(conditions, "s.product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.LowStock {
		conditions = append(conditions, "s.quantity <= s.reorder_level")
	}
	conditions = scopeCondition(f.Scope, "s.warehouse_id", conditions, args)

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countQuery := "SELECT count(*) FROM stocks s" + whereClause
	count, err := postgres.NamedCount(ctx, r.DB, countQuery, args)
	if err != nil {
		return nil, 0, err
	}

	orderBy := "s.updated_at DESC"
	if f.LowStock {
		orderBy = "s.quantity ASC, p.name ASC"
	}
	query := lockStocksQuery + whereClause + " ORDER BY " + orderBy
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) FindByWarehouse(ctx context.Context, organizationID, warehouseID string, productIDs []string) ([]model.Stock, error) {
	if len(productIDs) == 0 {
		return []model.Stock{}, nil
	}
	query, args, err := sqlx.In(lockStocksQuery+`
        WHERE s.organization_id = ? AND s.warehouse_id = ? AND s.product_id IN (?)`,
		organizationID, warehouseID, productIDs)
	if err != nil {
		return nil, err
	}

	var items []model.Stock
	err = r.DB.SelectContext(ctx, &items, r.DB.Rebind(query), args...)
	return items, err
}

// FindByProducts returns the rows of productIDs in every active warehouse of
// the organization.
func (r *PGRepository) FindByProducts(ctx context.Context, organizationID string, productIDs []string) ([]model.Stock, error) {
	if len(productIDs) == 0 {
		return []model.Stock{}, nil
	}
	query, args, err := sqlx.In(lockStocksQuery+`
        WHERE s.organization_id = ? AND w.is_active AND s.product_id IN (?)
        ORDER BY s.quantity DESC, w.name`,
		organizationID, productIDs)
	if err != nil {
		return nil, err
	}

	var items []model.Stock
	err = r.DB.SelectContext(ctx, &items, r.DB.Rebind(query), args...)
	return items, err
}

func (r *PGRepository) UpdateReorderLevel(ctx context.Context, organizationID, id string, reorderLevel int) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE stocks SET reorder_level = $1, updated_at = NOW() WHERE organization_id = $2 AND id = $3`,
		reorderLevel, organizationID, id)
	return err
}

func (r *PGRepository) Adjust(ctx context.Context, organizationID, id string, delta int, movement *model.StockMovement) (*model.Stock, error) {
	var out *model.Stock
	err := postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		var s model.Stock
		err := tx.GetContext(ctx, &s, lockStocksQuery+`
            WHERE s.organization_id = $1 AND s.id = $2
            FOR UPDATE OF s`, organizationID, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.ErrNotFound
			}
			return err
		}

		if err := NewLedger(tx, s.ReorderLevel).Apply(ctx, &s, delta, movement); err != nil {
			return err
		}
		out = &s
		return nil
	})
	return out, err
}

func (r *PGRepository) Transfer(ctx context.Context, in *dto.TransferStockInput, reorderLevel int) (*model.Stock, *model.Stock, error) {
	var src, dst *model.Stock
	err := postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		ledger := NewLedger(tx, reorderLevel)
		createdBy := optional(in.UserID)

		if err := ledger.Ensure(ctx, in.OrganizationID, in.TargetWarehouseID, []string{in.ProductID}, createdBy); err != nil {
			return err
		}
		rows, err := ledger.LockProduct(ctx, in.OrganizationID, in.ProductID, in.SourceWarehouseID, in.TargetWarehouseID)
		if err != nil {
			return err
		}
		src, dst = rows[in.SourceWarehouseID], rows[in.TargetWarehouseID]
		if src == nil || src.Quantity < in.Quantity {
			return model.ErrInsufficientStock
		}

		refType := "transfer"
		refID := uuid.New().String()
		if err := ledger.Apply(ctx, src, -in.Quantity, &model.StockMovement{
			MovementType:  model.MovementTransferOut,
			ReferenceType: &refType,
			ReferenceID:   &refID,
			Notes:         in.Notes,
			CreatedBy:     createdBy,
		}); err != nil {
			return err
		}
		return ledger.Apply(ctx, dst, in.Quantity, &model.StockMovement{
			MovementType:  model.MovementTransferIn,
			ReferenceType: &refType,
			ReferenceID:   &refID,
			Notes:         in.Notes,
			CreatedBy:     createdBy,
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return src, dst, nil
}

// Upsert sets the row of (product, warehouse) to input.Quantity and its
// reorder level, creating the row when missing. The quantity change goes
// through the ledger; the bool reports whether the row was created.
func (r *PGRepository) Upsert(ctx context.Context, in *dto.UpsertStockInput, movement *model.StockMovement) (*model.Stock, bool, error) {
	var out *model.Stock
	created := false
	err := postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		ledger := NewLedger(tx, in.ReorderLevel)
		products := []string{in.ProductID}

		rows, err := ledger.Lock(ctx, in.OrganizationID, in.WarehouseID, products)
		if err != nil {
			return err
		}
		s := rows[in.ProductID]
		if s == nil {
			created = true
			movement.MovementType = model.MovementInitial
			if err := ledger.Ensure(ctx, in.OrganizationID, in.WarehouseID, products, optional(in.UserID)); err != nil {
				return err
			}
			if rows, err = ledger.Lock(ctx, in.OrganizationID, in.WarehouseID, products); err != nil {
				return err
			}
			if s = rows[in.ProductID]; s == nil {
				return model.ErrNotFound
			}
		}

		if s.ReorderLevel != in.ReorderLevel {
			if _, err := tx.ExecContext(ctx,
				`UPDATE stocks SET reorder_level = $1, updated_at = NOW() WHERE id = $2`,
				in.ReorderLevel, s.ID); err != nil {
				return fmt.Errorf("update reorder level: %w", err)
			}
			s.ReorderLevel = in.ReorderLevel
		}
		if delta := in.Quantity - s.Quantity; delta != 0 {
			if err := ledger.Apply(ctx, s, delta, movement); err != nil {
				return err
			}
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	var items []model.StockMovement

	conditions := []string{"organization_id = :organization_id"}
	args := map[string]interface{}{"organization_id": f.OrganizationID}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.WarehouseID != "" {
		conditions = append(conditions, "warehouse_id = :warehouse_id")
		args["warehouse_id"] = f.WarehouseID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}
	conditions = scopeCondition(f.Scope, "warehouse_id", conditions, args)

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countQuery := "SELECT count(*) FROM stock_movements" + whereClause
	count, err := postgres.NamedCount(ctx, r.DB, countQuery, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) ProductExists(ctx context.Context, organizationID, productID string) (bool, error) {
	var n int
	err := r.DB.GetContext(ctx, &n,
		`SELECT count(*) FROM products WHERE organization_id = $1 AND id = $2 AND is_active`,
		organizationID, productID)
	return n > 0, err
}

func (r *PGRepository) WarehouseExists(ctx context.Context, organizationID, warehouseID string) (bool, error) {
	var n int
	err := r.DB.GetContext(ctx, &n,
		`SELECT count(*) FROM warehouses WHERE organization_id = $1 AND id = $2 AND is_active`,
		organizationID, warehouseID)
	return n > 0, err
}

func (r *PGRepository) FindProductIDBySKU(ctx context.Context, organizationID, sku string) (string, error) {
	return r.findID(ctx,
		`SELECT id FROM products WHERE organization_id = $1 AND sku = $2 AND is_active`,
		organizationID, sku)
}

// FindWarehouseIDByName matches the name case-insensitively.
func (r *PGRepository) FindWarehouseIDByName(ctx context.Context, organizationID, name string) (string, error) {
	return r.findID(ctx,
		`SELECT id FROM warehouses WHERE organization_id = $1 AND lower(name) = lower($2) AND is_active ORDER BY created_at LIMIT 1`,
		organizationID, name)
}

func (r *PGRepository) findID(ctx context.Context, query string, args ...interface{}) (string, error) {
	var id string
	if err := r.DB.GetContext(ctx, &id, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
