package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/order/dto"
	stockdto "github.com/fekuna/omnipos-erp-service/internal/stock/dto"
	stockrepo "github.com/fekuna/omnipos-erp-service/internal/stock/repository"
	"github.com/fekuna/omnipos-erp-service/pkg/database/postgres"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const selectOrder = `
    SELECT o.*, c.name AS customer_name, COALESCE(w.name, '') AS warehouse_name
    FROM orders o
    JOIN customers c ON c.id = o.customer_id
    LEFT JOIN warehouses w ON w.id = o.warehouse_id
`

const selectItems = `
    SELECT i.*, p.name AS product_name, p.sku AS product_sku
    FROM order_items i
    JOIN products p ON p.id = i.product_id
    WHERE i.order_id = $1
    ORDER BY i.created_at, i.id
`

var orderings = map[string]string{
	"order_date":    "o.order_date ASC",
	"-order_date":   "o.order_date DESC",
	"total_amount":  "o.total_amount ASC",
	"-total_amount": "o.total_amount DESC",
	"status":        "o.status ASC",
	"-status":       "o.status DESC",
	"created_at":    "o.created_at ASC",
	"-created_at":   "o.created_at DESC",
}

type PGRepository struct {
	DB           *sqlx.DB
	reorderLevel int
}

func NewPGRepository(db *sqlx.DB, defaultReorderLevel int) *PGRepository {
	return &PGRepository{DB: db, reorderLevel: defaultReorderLevel}
}

func (r *PGRepository) Create(ctx context.Context, o *model.Order) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		query := `
            INSERT INTO orders (
                id, organization_id, order_number, customer_id, warehouse_id, status,
                total_amount, notes, created_by, order_date, created_at, updated_at
            )
            VALUES (
                :id, :organization_id, :order_number, :customer_id, :warehouse_id, :status,
                :total_amount, :notes, :created_by, :order_date, :created_at, :updated_at
            )
        `
		if _, err := tx.NamedExecContext(ctx, query, o); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		if err := insertItems(ctx, tx, o); err != nil {
			return err
		}
		if o.Status.IsFulfilled() {
			return r.applyEffect(ctx, tx, o, model.EffectDeduct, o.CreatedBy)
		}
		return nil
	})
}

func insertItems(ctx context.Context, tx *sqlx.Tx, o *model.Order) error {
	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.OrderID = o.ID
		if it.CreatedAt.IsZero() {
			it.CreatedAt = o.UpdatedAt
		}
		_, err := tx.NamedExecContext(ctx, `
            INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, subtotal, created_at)
            VALUES (:id, :order_id, :product_id, :quantity, :unit_price, :subtotal, :created_at)`, it)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

// applyEffect deducts or restores the stock of every order line at the
// order's warehouse. Deduction checks the locked quantities and fails with a
// *model.StockShortageError; restoration recreates missing rows.
func (r *PGRepository) applyEffect(ctx context.Context, tx *sqlx.Tx, o *model.Order, effect model.StockEffect, actorID *string) error {
	if effect == model.EffectNone {
		return nil
	}
	if o.WarehouseID == nil {
		if effect == model.EffectDeduct {
			return model.ErrWarehouseRequired
		}
		return nil
	}
	warehouseID := *o.WarehouseID

	lines := o.Lines()
	productIDs := make([]string, len(lines))
	for i, l := range lines {
		productIDs[i] = l.ProductID
	}

	ledger := stockrepo.NewLedger(tx, r.reorderLevel)
	refType := "order"
	refID := o.ID

	if effect == model.EffectRestore {
		if err := ledger.Ensure(ctx, o.OrganizationID, warehouseID, productIDs, actorID); err != nil {
			return err
		}
	}

	rows, err := ledger.Lock(ctx, o.OrganizationID, warehouseID, productIDs)
	if err != nil {
		return err
	}

	if effect == model.EffectDeduct {
		available := make(map[string]int, len(rows))
		for id, s := range rows {
			available[id] = s.Quantity
		}
		if shortages := model.CheckAvailability(lines, available); len(shortages) > 0 {
			return &model.StockShortageError{WarehouseID: warehouseID, Shortages: shortages}
		}
	}

	for _, l := range lines {
		s, ok := rows[l.ProductID]
		if !ok {
			return fmt.Errorf("stock row for product %s vanished", l.ProductID)
		}
		movement := &model.StockMovement{
			ReferenceType: &refType,
			ReferenceID:   &refID,
			CreatedBy:     actorID,
		}
		delta := l.Quantity
		if effect == model.EffectDeduct {
			delta = -l.Quantity
			movement.MovementType = model.MovementSale
			movement.Notes = "order " + o.OrderNumber
		} else {
			movement.MovementType = model.MovementReturn
			movement.Notes = "order " + o.OrderNumber + " cancelled"
		}
		if err := ledger.Apply(ctx, s, delta, movement); err != nil {
			return err
		}
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, organizationID, id string) (*model.Order, error) {
	var o model.Order
	err := r.DB.GetContext(ctx, &o, selectOrder+` WHERE o.organization_id = $1 AND o.id = $2`, organizationID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.DB.SelectContext(ctx, &o.Items, selectItems, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	var orders []model.Order

	conditions := []string{"o.organization_id = :organization_id"}
	args := map[string]interface{}{"organization_id": f.OrganizationID}

	if f.Status != "" {
		conditions = append(conditions, "o.status = :status")
		args["status"] = f.Status
	}
	if f.CustomerID != "" {
		conditions = append(conditions, "o.customer_id = :customer_id")
		args["customer_id"] = f.CustomerID
	}
	if f.WarehouseID != "" {
		conditions = append(conditions, "o.warehouse_id = :warehouse_id")
		args["warehouse_id"] = f.WarehouseID
	}
	if f.Scope.Restricted {
		if len(f.Scope.WarehouseIDs) == 0 {
			return []model.Order{}, 0, nil
		}
		conditions = append(conditions, "o.warehouse_id = ANY(:scope_ids)")
		args["scope_ids"] = pq.Array(f.Scope.WarehouseIDs)
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*) FROM orders o"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}

	orderBy, ok := orderings[f.Ordering]
	if !ok {
		orderBy = orderings["-order_date"]
	}
	query := selectOrder + whereClause + " ORDER BY " + orderBy
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &orders, args); err != nil {
		return nil, 0, err
	}
	return orders, count, nil
}

// lockStatus reads the stored status of an order under a row lock.
func lockStatus(ctx context.Context, tx *sqlx.Tx, organizationID, id string) (model.OrderStatus, error) {
	var status model.OrderStatus
	err := tx.GetContext(ctx, &status,
		`SELECT status FROM orders WHERE organization_id = $1 AND id = $2 FOR UPDATE`,
		organizationID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", model.ErrNotFound
	}
	return status, err
}

func (r *PGRepository) Update(ctx context.Context, o *model.Order) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		status, err := lockStatus(ctx, tx, o.OrganizationID, o.ID)
		if err != nil {
			return err
		}
		if status != model.OrderPending {
			return model.ErrOrderLocked
		}

		_, err = tx.NamedExecContext(ctx, `
            UPDATE orders
            SET customer_id = :customer_id,
                warehouse_id = :warehouse_id,
                notes = :notes,
                total_amount = :total_amount,
                updated_at = :updated_at
            WHERE id = :id AND organization_id = :organization_id`, o)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, o.ID); err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}
		for i := range o.Items {
			o.Items[i].ID = ""
			o.Items[i].CreatedAt = time.Time{}
		}
		return insertItems(ctx, tx, o)
	})
}

func (r *PGRepository) ChangeStatus(ctx context.Context, o *model.Order, status model.OrderStatus, effect model.StockEffect, actorID string) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		current, err := lockStatus(ctx, tx, o.OrganizationID, o.ID)
		if err != nil {
			return err
		}
		if current != o.Status {
			return model.ErrConcurrentUpdate
		}

		var items []model.OrderItem
		if err := tx.SelectContext(ctx, &items, selectItems, o.ID); err != nil {
			return err
		}
		o.Items = items

		if err := r.applyEffect(ctx, tx, o, effect, optional(actorID)); err != nil {
			return err
		}

		now := time.Now()
		if _, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
			status, now, o.ID); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		o.Status = status
		o.UpdatedAt = now
		return nil
	})
}

func (r *PGRepository) Delete(ctx context.Context, o *model.Order, actorID string) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		current, err := lockStatus(ctx, tx, o.OrganizationID, o.ID)
		if err != nil {
			return err
		}
		if current.IsFulfilled() {
			var items []model.OrderItem
			if err := tx.SelectContext(ctx, &items, selectItems, o.ID); err != nil {
				return err
			}
			o.Items = items
			if err := r.applyEffect(ctx, tx, o, model.EffectRestore, optional(actorID)); err != nil {
				return err
			}
		}
		o.Status = current

		if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, o.ID); err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		return nil
	})
}

func (r *PGRepository) Stats(ctx context.Context, organizationID string, scope stockdto.WarehouseScope) (*model.OrderStats, error) {
	stats := &model.OrderStats{ByStatus: map[string]int{}, Revenue: decimal.Zero}

	conditions := []string{"organization_id = :organization_id"}
	args := map[string]interface{}{"organization_id": organizationID}
	if scope.Restricted {
		if len(scope.WarehouseIDs) == 0 {
			return stats, nil
		}
		conditions = append(conditions, "warehouse_id = ANY(:scope_ids)")
		args["scope_ids"] = pq.Array(scope.WarehouseIDs)
	}

	query := `SELECT status, count(*) AS count, COALESCE(SUM(total_amount), 0) AS revenue
        FROM orders WHERE ` + strings.Join(conditions, " AND ") + ` GROUP BY status`

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	var rows []struct {
		Status  model.OrderStatus `db:"status"`
		Count   int               `db:"count"`
		Revenue decimal.Decimal   `db:"revenue"`
	}
	if err := nstmt.SelectContext(ctx, &rows, args); err != nil {
		return nil, err
	}

	for _, row := range rows {
		stats.ByStatus[string(row.Status)] = row.Count
		stats.Total += row.Count
		if row.Status.IsFulfilled() {
			stats.Fulfilled += row.Count
			stats.Revenue = stats.Revenue.Add(row.Revenue)
		}
	}
	return stats, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
