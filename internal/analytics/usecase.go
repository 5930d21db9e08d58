package analytics

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/analytics/dto"
	"github.com/fekuna/omnipos-erp-service/internal/model"
)

type UseCase interface {
	ListMetrics(ctx context.Context, filters *dto.MetricFilters) ([]model.SalesMetric, int, error)
	Last30Days(ctx context.Context, organizationID string) ([]model.SalesMetric, error)
	CalculateDailyMetrics(ctx context.Context, organizationID string, date time.Time) (*model.SalesMetric, error)
	ListPredictions(ctx context.Context, filters *dto.PredictionFilters) ([]model.Prediction, int, error)
	GeneratePredictions(ctx context.Context, organizationID string) ([]model.Prediction, error)
	CheckLowStock(ctx context.Context, organizationID string) (int, error)
	Organizations(ctx context.Context) ([]string, error)
}
