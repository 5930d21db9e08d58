package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/analytics/dto"
	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	stockdto "github.com/fekuna/omnipos-erp-service/internal/stock/dto"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

type memRepo struct {
	metrics     map[string]*model.SalesMetric
	sales       decimal.Decimal
	orders      int
	totalsFrom  time.Time
	totalsTo    time.Time
	daily       []model.DailySales
	predictions []model.Prediction
}

func (m *memRepo) UpsertMetric(_ context.Context, metric *model.SalesMetric) error {
	key := metric.OrganizationID + metric.Date.Format("2006-01-02")
	if existing, ok := m.metrics[key]; ok {
		metric.ID = existing.ID
	}
	c := *metric
	m.metrics[key] = &c
	return nil
}

func (m *memRepo) FindMetrics(_ context.Context, f *dto.MetricFilters) ([]model.SalesMetric, int, error) {
	var out []model.SalesMetric
	for _, metric := range m.metrics {
		if f.StartDate != nil && metric.Date.Before(*f.StartDate) {
			continue
		}
		out = append(out, *metric)
	}
	return out, len(out), nil
}

func (m *memRepo) SalesTotals(_ context.Context, _ string, from, to time.Time) (decimal.Decimal, int, error) {
	m.totalsFrom, m.totalsTo = from, to
	return m.sales, m.orders, nil
}

func (m *memRepo) DailySales(_ context.Context, _ string, from, to time.Time) ([]model.DailySales, error) {
	var out []model.DailySales
	for _, d := range m.daily {
		if !d.Day.Before(from) && d.Day.Before(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memRepo) SavePredictions(_ context.Context, predictions []model.Prediction) error {
	m.predictions = append(m.predictions, predictions...)
	return nil
}

func (m *memRepo) FindPredictions(_ context.Context, f *dto.PredictionFilters) ([]model.Prediction, int, error) {
	var out []model.Prediction
	for _, p := range m.predictions {
		if f.Date != nil && !p.PredictionDate.Equal(*f.Date) {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *memRepo) OrganizationIDs(context.Context) ([]string, error) {
	return []string{"org-1"}, nil
}

type stocks []model.Stock

func (s stocks) FindAll(_ context.Context, f *stockdto.StockFilters) ([]model.Stock, int, error) {
	var out []model.Stock
	for _, row := range s {
		if row.OrganizationID == f.OrganizationID && (!f.LowStock || row.Quantity <= row.ReorderLevel) {
			out = append(out, row)
		}
	}
	return out, len(out), nil
}

type published struct {
	keys   []string
	events []model.LowStockEvent
}

func (p *published) Publish(_ context.Context, key string, value []byte) error {
	var e model.LowStockEvent
	if err := json.Unmarshal(value, &e); err != nil {
		return err
	}
	p.keys = append(p.keys, key)
	p.events = append(p.events, e)
	return nil
}

func setup(st stocks) (*analyticsUseCase, *memRepo, *published) {
	repo := &memRepo{metrics: map[string]*model.SalesMetric{}}
	pub := &published{}
	uc := NewAnalyticsUseCase(repo, st, pub, logger.NewNop()).(*analyticsUseCase)
	uc.now = func() time.Time { return now }
	return uc, repo, pub
}

func ownerCtx() context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{UserID: "u1", OrganizationID: "org-1", Role: model.RoleOwner})
}

func TestCalculateDailyMetricsUpsertsOneRowPerDay(t *testing.T) {
	uc, repo, _ := setup(nil)
	repo.sales, repo.orders = decimal.RequireFromString("150.50"), 3

	m, err := uc.CalculateDailyMetrics(ownerCtx(), "org-1", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), m.Date)
	assert.Equal(t, model.MetricDaily, m.MetricType)
	assert.True(t, m.TotalSales.Equal(decimal.RequireFromString("150.50")))
	assert.Equal(t, 3, m.TotalOrders)
	assert.Equal(t, m.Date.AddDate(0, 0, 1), repo.totalsTo)

	repo.sales, repo.orders = decimal.RequireFromString("80"), 1
	second, err := uc.CalculateDailyMetrics(ownerCtx(), "org-1", now.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, m.ID, second.ID)
	assert.Len(t, repo.metrics, 1)
}

func TestAnalyticsRequiresManagerRole(t *testing.T) {
	uc, _, _ := setup(nil)
	staff := auth.WithPrincipal(context.Background(), &auth.Principal{UserID: "u2", OrganizationID: "org-1", Role: model.RoleStoreManager, AssignedWarehouseID: "wh-1"})

	_, _, err := uc.ListMetrics(staff, &dto.MetricFilters{OrganizationID: "org-1"})
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
	_, err = uc.GeneratePredictions(staff, "org-1")
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
	_, err = uc.Last30Days(context.Background(), "org-1")
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
}

func TestListMetricsRejectsInvertedRange(t *testing.T) {
	uc, _, _ := setup(nil)
	start, end := now, now.AddDate(0, 0, -1)
	_, _, err := uc.ListMetrics(ownerCtx(), &dto.MetricFilters{OrganizationID: "org-1", StartDate: &start, EndDate: &end})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestLast30Days(t *testing.T) {
	uc, repo, _ := setup(nil)
	for _, d := range []int{0, 10, 29, 30, 45} {
		date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -d)
		repo.metrics[date.String()] = &model.SalesMetric{Date: date}
	}

	metrics, err := uc.Last30Days(ownerCtx(), "org-1")
	require.NoError(t, err)
	assert.Len(t, metrics, 3)
}

func TestGeneratePredictionsMovingAverage(t *testing.T) {
	uc, repo, _ := setup(nil)
	today := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 14; i++ {
		repo.daily = append(repo.daily, model.DailySales{ProductID: "p-1", Day: today.AddDate(0, 0, -i), Quantity: 4})
	}
	repo.daily = append(repo.daily,
		model.DailySales{ProductID: "p-2", Day: today.AddDate(0, 0, -1), Quantity: 56},
		model.DailySales{ProductID: "p-2", Day: today.AddDate(0, 0, -40), Quantity: 1000},
		model.DailySales{ProductID: "p-2", Day: today, Quantity: 1000},
	)

	predictions, err := uc.GeneratePredictions(ownerCtx(), "org-1")
	require.NoError(t, err)
	require.Len(t, predictions, 2)

	byProduct := map[string]model.Prediction{}
	for _, p := range predictions {
		byProduct[p.ProductID] = p
		assert.Equal(t, today.AddDate(0, 0, 1), p.PredictionDate)
		assert.Equal(t, model.PredictionModelVersion, p.ModelVersion)
	}
	assert.Equal(t, "2", byProduct["p-1"].PredictedQuantity.String())
	assert.Equal(t, "0.5", byProduct["p-1"].ConfidenceScore.String())
	assert.Equal(t, "2", byProduct["p-2"].PredictedQuantity.String())
	assert.Equal(t, "0.04", byProduct["p-2"].ConfidenceScore.String())
}

func TestCheckLowStockPublishesPerRow(t *testing.T) {
	uc, _, pub := setup(stocks{
		{ID: "s1", OrganizationID: "org-1", ProductID: "p-1", ProductSKU: "SKU-1", WarehouseID: "wh-1", WarehouseName: "Main", Quantity: 2, ReorderLevel: 10},
		{ID: "s2", OrganizationID: "org-1", ProductID: "p-2", WarehouseID: "wh-1", Quantity: 0, ReorderLevel: 5},
		{ID: "s3", OrganizationID: "org-1", ProductID: "p-3", WarehouseID: "wh-1", Quantity: 50, ReorderLevel: 5},
		{ID: "s4", OrganizationID: "org-2", ProductID: "p-4", WarehouseID: "wh-9", Quantity: 0, ReorderLevel: 5},
	})

	n, err := uc.CheckLowStock(auth.System(context.Background(), "org-1"), "org-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, pub.events, 2)
	assert.Equal(t, []string{"org-1", "org-1"}, pub.keys)
	assert.Equal(t, model.EventLowStock, pub.events[0].EventType)
	assert.Equal(t, "SKU-1", pub.events[0].ProductSKU)
	assert.Equal(t, "Main", pub.events[0].WarehouseName)
	assert.Equal(t, 10, pub.events[0].ReorderLevel)
}
