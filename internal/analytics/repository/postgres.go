package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/analytics/dto"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// fulfilledStatuses are the order states that count as sales.
const fulfilledStatuses = `('confirmed', 'shipped', 'delivered')`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) UpsertMetric(ctx context.Context, m *model.SalesMetric) error {
	query := `
        INSERT INTO sales_metrics (
            id, organization_id, date, metric_type, total_sales, total_orders, created_at, updated_at
        )
        VALUES (
            :id, :organization_id, :date, :metric_type, :total_sales, :total_orders, :created_at, :updated_at
        )
        ON CONFLICT ON CONSTRAINT sales_metrics_org_date_type_key DO UPDATE SET
            total_sales = EXCLUDED.total_sales,
            total_orders = EXCLUDED.total_orders,
            updated_at = EXCLUDED.updated_at
        RETURNING id, created_at
    `
	rows, err := r.DB.NamedQueryContext(ctx, query, m)
	if err != nil {
		return fmt.Errorf("upsert sales metric: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&m.ID, &m.CreatedAt)
	}
	return rows.Err()
}

func (r *PGRepository) FindMetrics(ctx context.Context, f *dto.MetricFilters) ([]model.SalesMetric, int, error) {
	var items []model.SalesMetric

	conditions := []string{"organization_id = :organization_id", "metric_type = :metric_type"}
	args := map[string]interface{}{
		"organization_id": f.OrganizationID,
		"metric_type":     model.MetricDaily,
	}
	if f.StartDate != nil {
		conditions = append(conditions, "date >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "date <= :end_date")
		args["end_date"] = *f.EndDate
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*) FROM sales_metrics"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM sales_metrics" + whereClause + " ORDER BY date DESC"
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

func (r *PGRepository) SalesTotals(ctx context.Context, organizationID string, from, to time.Time) (decimal.Decimal, int, error) {
	var out struct {
		Sales  decimal.Decimal `db:"total_sales"`
		Orders int             `db:"total_orders"`
	}
	query := `
        SELECT COALESCE(SUM(total_amount), 0) AS total_sales, count(*) AS total_orders
        FROM orders
        WHERE organization_id = $1 AND status IN ` + fulfilledStatuses + `
          AND order_date >= $2 AND order_date < $3
    `
	if err := r.DB.GetContext(ctx, &out, query, organizationID, from, to); err != nil {
		return decimal.Zero, 0, fmt.Errorf("sum sales: %w", err)
	}
	return out.Sales, out.Orders, nil
}

func (r *PGRepository) DailySales(ctx context.Context, organizationID string, from, to time.Time) ([]model.DailySales, error) {
	var items []model.DailySales
	query := `
        SELECT oi.product_id, date_trunc('day', o.order_date) AS day, SUM(oi.quantity) AS quantity
        FROM order_items oi
        JOIN orders o ON o.id = oi.order_id
        WHERE o.organization_id = $1 AND o.status IN ` + fulfilledStatuses + `
          AND o.order_date >= $2 AND o.order_date < $3
        GROUP BY oi.product_id, day
        ORDER BY oi.product_id, day
    `
	if err := r.DB.SelectContext(ctx, &items, query, organizationID, from, to); err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}
	return items, nil
}

func (r *PGRepository) SavePredictions(ctx context.Context, predictions []model.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}
	query := `
        INSERT INTO predictions (
            id, organization_id, product_id, prediction_date,
            predicted_quantity, confidence_score, model_version, created_at
        )
        VALUES (
            :id, :organization_id, :product_id, :prediction_date,
            :predicted_quantity, :confidence_score, :model_version, :created_at
        )
        ON CONFLICT ON CONSTRAINT predictions_product_date_model_key DO UPDATE SET
            predicted_quantity = EXCLUDED.predicted_quantity,
            confidence_score = EXCLUDED.confidence_score
    `
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		for i := range predictions {
			if _, err := tx.NamedExecContext(ctx, query, &predictions[i]); err != nil {
				return fmt.Errorf("save prediction for %s: %w", predictions[i].ProductID, err)
			}
		}
		return nil
	})
}

func (r *PGRepository) FindPredictions(ctx context.Context, f *dto.PredictionFilters) ([]model.Prediction, int, error) {
	var items []model.Prediction

	conditions := []string{"pr.organization_id = :organization_id"}
	args := map[string]interface{}{"organization_id": f.OrganizationID}
	if f.ProductID != "" {
		conditions = append(conditions, "pr.product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.Date != nil {
		conditions = append(conditions, "pr.prediction_date = :prediction_date")
		args["prediction_date"] = *f.Date
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*) FROM predictions pr"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}

	query := `
        SELECT pr.*, p.name AS product_name
        FROM predictions pr
        JOIN products p ON p.id = pr.product_id` + whereClause + `
        ORDER BY pr.prediction_date DESC, pr.predicted_quantity DESC`
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

func (r *PGRepository) OrganizationIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.DB.SelectContext(ctx, &ids, `SELECT id FROM organizations WHERE is_active ORDER BY created_at`)
	return ids, err
}
