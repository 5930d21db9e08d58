package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const lockStocksQuery = `
    SELECT s.*, p.name AS product_name, p.sku AS product_sku, w.name AS warehouse_name
    FROM stocks s
    JOIN products p ON p.id = s.product_id
    JOIN warehouses w ON w.id = s.warehouse_id
`

// Ledger applies stock changes inside a caller-owned transaction. Rows are
// always locked ordered by (product_id, warehouse_id) so concurrent
// transactions acquire them in the same order.
type Ledger struct {
	tx           *sqlx.Tx
	reorderLevel int
	now          func() time.Time
}

func NewLedger(tx *sqlx.Tx, defaultReorderLevel int) *Ledger {
	return &Ledger{tx: tx, reorderLevel: defaultReorderLevel, now: time.Now}
}

// Lock selects FOR UPDATE the stock rows of productIDs at warehouseID, keyed
// by product id. Products without a row are absent from the map.
func (l *Ledger) Lock(ctx context.Context, organizationID, warehouseID string, productIDs []string) (map[string]*model.Stock, error) {
	out := make(map[string]*model.Stock, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(lockStocksQuery+`
        WHERE s.organization_id = ? AND s.warehouse_id = ? AND s.product_id IN (?)
        ORDER BY s.product_id, s.warehouse_id
        FOR UPDATE OF s`, organizationID, warehouseID, productIDs)
	if err != nil {
		return nil, err
	}

	var rows []model.Stock
	if err := l.tx.SelectContext(ctx, &rows, l.tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("lock stocks: %w", err)
	}
	for i := range rows {
		out[rows[i].ProductID] = &rows[i]
	}
	return out, nil
}

// LockProduct locks the rows of one product in the given warehouses.
func (l *Ledger) LockProduct(ctx context.Context, organizationID, productID string, warehouseIDs ...string) (map[string]*model.Stock, error) {
	query, args, err := sqlx.In(lockStocksQuery+`
        WHERE s.organization_id = ? AND s.product_id = ? AND s.warehouse_id IN (?)
        ORDER BY s.product_id, s.warehouse_id
        FOR UPDATE OF s`, organizationID, productID, warehouseIDs)
	if err != nil {
		return nil, err
	}

	var rows []model.Stock
	if err := l.tx.SelectContext(ctx, &rows, l.tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("lock stocks: %w", err)
	}
	out := make(map[string]*model.Stock, len(rows))
	for i := range rows {
		out[rows[i].WarehouseID] = &rows[i]
	}
	return out, nil
}

// Ensure creates zero-quantity rows for products missing at warehouseID.
func (l *Ledger) Ensure(ctx context.Context, organizationID, warehouseID string, productIDs []string, createdBy *string) error {
	now := l.now()
	for _, productID := range productIDs {
		_, err := l.tx.ExecContext(ctx, `
            INSERT INTO stocks (id, organization_id, product_id, warehouse_id, quantity, reorder_level, created_by, created_at, updated_at)
            VALUES ($1, $2, $3, $4, 0, $5, $6, $7, $7)
            ON CONFLICT (product_id, warehouse_id) DO NOTHING`,
			uuid.New().String(), organizationID, productID, warehouseID, l.reorderLevel, createdBy, now)
		if err != nil {
			return fmt.Errorf("ensure stock: %w", err)
		}
	}
	return nil
}

// Apply changes a locked row by delta and records the movement. The row and
// movement are updated in place.
func (l *Ledger) Apply(ctx context.Context, s *model.Stock, delta int, movement *model.StockMovement) error {
	after := s.Quantity + delta
	if after < 0 {
		return model.ErrInsufficientStock
	}
	now := l.now()

	if _, err := l.tx.ExecContext(ctx,
		`UPDATE stocks SET quantity = $1, updated_at = $2 WHERE id = $3`,
		after, now, s.ID); err != nil {
		return fmt.Errorf("update stock: %w", err)
	}

	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	movement.OrganizationID = s.OrganizationID
	movement.StockID = s.ID
	movement.ProductID = s.ProductID
	movement.WarehouseID = s.WarehouseID
	movement.QuantityChange = delta
	movement.QuantityBefore = s.Quantity
	movement.QuantityAfter = after
	movement.CreatedAt = now

	if err := insertMovement(ctx, l.tx, movement); err != nil {
		return err
	}

	s.Quantity = after
	s.UpdatedAt = now
	return nil
}

func insertMovement(ctx context.Context, tx *sqlx.Tx, m *model.StockMovement) error {
	query := `
        INSERT INTO stock_movements (
            id, organization_id, stock_id, product_id, warehouse_id, movement_type,
            quantity_change, quantity_before, quantity_after,
            reference_type, reference_id, notes, created_by, created_at
        )
        VALUES (
            :id, :organization_id, :stock_id, :product_id, :warehouse_id, :movement_type,
            :quantity_change, :quantity_before, :quantity_after,
            :reference_type, :reference_id, :notes, :created_by, :created_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}
