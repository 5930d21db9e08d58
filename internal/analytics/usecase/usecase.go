package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/analytics"
	"github.com/fekuna/omnipos-erp-service/internal/analytics/dto"
	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	stockdto "github.com/fekuna/omnipos-erp-service/internal/stock/dto"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PredictionWindow is how many days of sales feed the moving average.
const PredictionWindow = 28

type analyticsUseCase struct {
	repo   analytics.Repository
	stocks analytics.StockReader
	alerts analytics.EventPublisher
	logger logger.ZapLogger
	now    func() time.Time
}

// NewAnalyticsUseCase builds the use case; alerts may be nil, in which case
// low stock rows are only logged.
func NewAnalyticsUseCase(repo analytics.Repository, stocks analytics.StockReader, alerts analytics.EventPublisher, log logger.ZapLogger) analytics.UseCase {
	return &analyticsUseCase{
		repo:   repo,
		stocks: stocks,
		alerts: alerts,
		logger: log,
		now:    time.Now,
	}
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (uc *analyticsUseCase) ListMetrics(ctx context.Context, filters *dto.MetricFilters) ([]model.SalesMetric, int, error) {
	if !auth.FromContext(ctx).CanViewAnalytics() {
		return nil, 0, model.ErrPermissionDenied
	}
	if filters.StartDate != nil && filters.EndDate != nil && filters.EndDate.Before(*filters.StartDate) {
		return nil, 0, model.Invalid("end_date", "must not be before start_date")
	}
	filters.Page, filters.PageSize = model.Page(filters.Page, filters.PageSize)
	return uc.repo.FindMetrics(ctx, filters)
}

func (uc *analyticsUseCase) Last30Days(ctx context.Context, organizationID string) ([]model.SalesMetric, error) {
	if !auth.FromContext(ctx).CanViewAnalytics() {
		return nil, model.ErrPermissionDenied
	}
	start := day(uc.now()).AddDate(0, 0, -29)
	metrics, _, err := uc.repo.FindMetrics(ctx, &dto.MetricFilters{
		OrganizationID: organizationID,
		StartDate:      &start,
	})
	return metrics, err
}

func (uc *analyticsUseCase) CalculateDailyMetrics(ctx context.Context, organizationID string, date time.Time) (*model.SalesMetric, error) {
	if !auth.FromContext(ctx).CanViewAnalytics() {
		return nil, model.ErrPermissionDenied
	}
	if date.IsZero() {
		date = uc.now()
	}
	from := day(date)
	sales, orders, err := uc.repo.SalesTotals(ctx, organizationID, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	now := uc.now()
	m := &model.SalesMetric{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		Date:           from,
		MetricType:     model.MetricDaily,
		TotalSales:     sales,
		TotalOrders:    orders,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.UpsertMetric(ctx, m); err != nil {
		return nil, err
	}
	uc.logger.Debug("daily metric calculated",
		zap.String("organization_id", organizationID),
		zap.Time("date", from),
		zap.String("total_sales", sales.StringFixed(2)),
		zap.Int("total_orders", orders),
	)
	return m, nil
}

func (uc *analyticsUseCase) ListPredictions(ctx context.Context, filters *dto.PredictionFilters) ([]model.Prediction, int, error) {
	if !auth.FromContext(ctx).CanViewAnalytics() {
		return nil, 0, model.ErrPermissionDenied
	}
	filters.Page, filters.PageSize = model.Page(filters.Page, filters.PageSize)
	return uc.repo.FindPredictions(ctx, filters)
}

// GeneratePredictions forecasts tomorrow's quantity for every product sold in
// the last PredictionWindow days.
func (uc *analyticsUseCase) GeneratePredictions(ctx context.Context, organizationID string) ([]model.Prediction, error) {
	if !auth.FromContext(ctx).CanViewAnalytics() {
		return nil, model.ErrPermissionDenied
	}
	now := uc.now()
	today := day(now)
	from := today.AddDate(0, 0, -PredictionWindow)

	sales, err := uc.repo.DailySales(ctx, organizationID, from, today)
	if err != nil {
		return nil, err
	}

	series := make(map[string][]int)
	var order []string
	for _, s := range sales {
		daily, ok := series[s.ProductID]
		if !ok {
			daily = make([]int, PredictionWindow)
			order = append(order, s.ProductID)
		}
		if i := int(day(s.Day).Sub(from).Hours() / 24); i >= 0 && i < PredictionWindow {
			daily[i] += s.Quantity
		}
		series[s.ProductID] = daily
	}

	tomorrow := today.AddDate(0, 0, 1)
	predictions := make([]model.Prediction, 0, len(order))
	for _, productID := range order {
		qty, confidence := model.MovingAverage(series[productID], PredictionWindow)
		predictions = append(predictions, model.Prediction{
			ID:                uuid.New().String(),
			OrganizationID:    organizationID,
			ProductID:         productID,
			PredictionDate:    tomorrow,
			PredictedQuantity: qty,
			ConfidenceScore:   confidence,
			ModelVersion:      model.PredictionModelVersion,
			CreatedAt:         now,
		})
	}
	if err := uc.repo.SavePredictions(ctx, predictions); err != nil {
		return nil, err
	}
	uc.logger.Info("predictions generated",
		zap.String("organization_id", organizationID),
		zap.Int("products", len(predictions)),
	)

	saved, _, err := uc.repo.FindPredictions(ctx, &dto.PredictionFilters{
		OrganizationID: organizationID,
		Date:           &tomorrow,
	})
	return saved, err
}

// CheckLowStock publishes one alert per stock row at or below its reorder
// level and returns how many rows were found.
func (uc *analyticsUseCase) CheckLowStock(ctx context.Context, organizationID string) (int, error) {
	if !auth.FromContext(ctx).CanViewAnalytics() {
		return 0, model.ErrPermissionDenied
	}
	rows, _, err := uc.stocks.FindAll(ctx, &stockdto.StockFilters{
		OrganizationID: organizationID,
		LowStock:       true,
	})
	if err != nil {
		return 0, err
	}

	for i := range rows {
		s := &rows[i]
		if uc.alerts == nil {
			uc.logger.Warn("low stock",
				zap.String("organization_id", organizationID),
				zap.String("product_sku", s.ProductSKU),
				zap.String("warehouse", s.WarehouseName),
				zap.Int("quantity", s.Quantity),
			)
			continue
		}
		event := model.LowStockEvent{
			EventID:        uuid.New().String(),
			EventType:      model.EventLowStock,
			OrganizationID: organizationID,
			StockID:        s.ID,
			ProductID:      s.ProductID,
			ProductSKU:     s.ProductSKU,
			ProductName:    s.ProductName,
			WarehouseID:    s.WarehouseID,
			WarehouseName:  s.WarehouseName,
			Quantity:       s.Quantity,
			ReorderLevel:   s.ReorderLevel,
			Timestamp:      uc.now(),
		}
		body, err := json.Marshal(event)
		if err != nil {
			return i, err
		}
		if err := uc.alerts.Publish(ctx, organizationID, body); err != nil {
			return i, err
		}
	}
	return len(rows), nil
}

func (uc *analyticsUseCase) Organizations(ctx context.Context) ([]string, error) {
	return uc.repo.OrganizationIDs(ctx)
}
