package analytics

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/analytics/dto"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	stockdto "github.com/fekuna/omnipos-erp-service/internal/stock/dto"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// Metrics
	UpsertMetric(ctx context.Context, m *model.SalesMetric) error
	FindMetrics(ctx context.Context, filters *dto.MetricFilters) ([]model.SalesMetric, int, error)

	// Sales aggregation over fulfilled orders, [from, to)
	SalesTotals(ctx context.Context, organizationID string, from, to time.Time) (decimal.Decimal, int, error)
	DailySales(ctx context.Context, organizationID string, from, to time.Time) ([]model.DailySales, error)

	// Predictions
	SavePredictions(ctx context.Context, predictions []model.Prediction) error
	FindPredictions(ctx context.Context, filters *dto.PredictionFilters) ([]model.Prediction, int, error)

	OrganizationIDs(ctx context.Context) ([]string, error)
}

type StockReader interface {
	FindAll(ctx context.Context, filters *stockdto.StockFilters) ([]model.Stock, int, error)
}

// EventPublisher delivers alerts; messages with the same key keep their order.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}
