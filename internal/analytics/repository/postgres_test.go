package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-erp-service/internal/analytics/dto"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "postgres")), mock
}

var day = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func TestUpsertMetricKeepsExistingID(t *testing.T) {
	repo, mock := newMock(t)
	created := day.Add(-48 * time.Hour)

	mock.ExpectQuery(`(?s)INSERT INTO sales_metrics.*ON CONFLICT ON CONSTRAINT sales_metrics_org_date_type_key DO UPDATE`).
		WithArgs("new-id", "org-1", day, model.MetricDaily, sqlmock.AnyArg(), 3, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("old-id", created))

	m := &model.SalesMetric{
		ID:             "new-id",
		OrganizationID: "org-1",
		Date:           day,
		MetricType:     model.MetricDaily,
		TotalSales:     decimal.RequireFromString("99.90"),
		TotalOrders:    3,
	}
	require.NoError(t, repo.UpsertMetric(context.Background(), m))
	assert.Equal(t, "old-id", m.ID)
	assert.True(t, m.CreatedAt.Equal(created))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSalesTotalsCountsFulfilledOrdersOnly(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`(?s)FROM orders.*status IN \('confirmed', 'shipped', 'delivered'\)`).
		WithArgs("org-1", day, day.AddDate(0, 0, 1)).
		WillReturnRows(sqlmock.NewRows([]string{"total_sales", "total_orders"}).AddRow("250.00", 4))

	sales, orders, err := repo.SalesTotals(context.Background(), "org-1", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, sales.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, 4, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindMetricsFiltersAndPages(t *testing.T) {
	repo, mock := newMock(t)
	start := day.AddDate(0, 0, -7)

	mock.ExpectQuery(`SELECT count\(\*\) FROM sales_metrics WHERE .* date >= \$3`).
		WithArgs("org-1", model.MetricDaily, start).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(8))
	mock.ExpectPrepare(`SELECT \* FROM sales_metrics .* ORDER BY date DESC LIMIT 5 OFFSET 5`).
		ExpectQuery().WithArgs("org-1", model.MetricDaily, start).
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "date", "metric_type", "total_sales", "total_orders"}).
			AddRow("m-1", "org-1", day, "daily", "10.00", 1))

	items, count, err := repo.FindMetrics(context.Background(), &dto.MetricFilters{
		OrganizationID: "org-1",
		StartDate:      &start,
		Page:           2,
		PageSize:       5,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, count)
	require.Len(t, items, 1)
	assert.Equal(t, "m-1", items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePredictionsInOneTransaction(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)INSERT INTO predictions.*predictions_product_date_model_key`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)INSERT INTO predictions`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SavePredictions(context.Background(), []model.Prediction{
		{ID: "pr-1", OrganizationID: "org-1", ProductID: "p-1", PredictionDate: day, ModelVersion: model.PredictionModelVersion},
		{ID: "pr-2", OrganizationID: "org-1", ProductID: "p-2", PredictionDate: day, ModelVersion: model.PredictionModelVersion},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
