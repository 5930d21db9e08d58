package handler

import (
	"context"
	"time"

	erpv1 "github.com/fekuna/omnipos-erp-service/api/erp/v1"
	"github.com/fekuna/omnipos-erp-service/internal/analytics"
	"github.com/fekuna/omnipos-erp-service/internal/analytics/dto"
	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/grpcerr"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"google.golang.org/protobuf/types/known/emptypb"
)

var _ erpv1.AnalyticsServiceServer = (*AnalyticsHandler)(nil)

type AnalyticsHandler struct {
	uc     analytics.UseCase
	logger logger.ZapLogger
}

func NewAnalyticsHandler(uc analytics.UseCase, log logger.ZapLogger) *AnalyticsHandler {
	return &AnalyticsHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *AnalyticsHandler) ListMetrics(ctx context.Context, req *erpv1.ListMetricsRequest) (*erpv1.ListMetricsResponse, error) {
	metrics, count, err := h.uc.ListMetrics(ctx, &dto.MetricFilters{
		OrganizationID: auth.GetOrganizationID(ctx),
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Page:           req.Page,
		PageSize:       req.PageSize,
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return mapMetrics(metrics, count), nil
}

func (h *AnalyticsHandler) Last30Days(ctx context.Context, _ *emptypb.Empty) (*erpv1.ListMetricsResponse, error) {
	metrics, err := h.uc.Last30Days(ctx, auth.GetOrganizationID(ctx))
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return mapMetrics(metrics, len(metrics)), nil
}

func (h *AnalyticsHandler) CalculateDailyMetrics(ctx context.Context, req *erpv1.CalculateMetricsRequest) (*erpv1.SalesMetric, error) {
	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}
	m, err := h.uc.CalculateDailyMetrics(ctx, auth.GetOrganizationID(ctx), date)
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	out := mapMetric(m)
	return &out, nil
}

func (h *AnalyticsHandler) ListPredictions(ctx context.Context, req *erpv1.ListPredictionsRequest) (*erpv1.ListPredictionsResponse, error) {
	items, count, err := h.uc.ListPredictions(ctx, &dto.PredictionFilters{
		OrganizationID: auth.GetOrganizationID(ctx),
		ProductID:      req.ProductID,
		Page:           req.Page,
		PageSize:       req.PageSize,
	})
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return mapPredictions(items, count), nil
}

func (h *AnalyticsHandler) GeneratePredictions(ctx context.Context, _ *emptypb.Empty) (*erpv1.ListPredictionsResponse, error) {
	items, err := h.uc.GeneratePredictions(ctx, auth.GetOrganizationID(ctx))
	if err != nil {
		return nil, grpcerr.From(ctx, h.logger, err)
	}
	return mapPredictions(items, len(items)), nil
}

func mapMetric(m *model.SalesMetric) erpv1.SalesMetric {
	return erpv1.SalesMetric{
		Date:        m.Date,
		MetricType:  m.MetricType,
		TotalSales:  m.TotalSales,
		TotalOrders: m.TotalOrders,
	}
}

func mapMetrics(metrics []model.SalesMetric, total int) *erpv1.ListMetricsResponse {
	out := make([]erpv1.SalesMetric, 0, len(metrics))
	for i := range metrics {
		out = append(out, mapMetric(&metrics[i]))
	}
	return &erpv1.ListMetricsResponse{Metrics: out, Total: total}
}

func mapPredictions(items []model.Prediction, total int) *erpv1.ListPredictionsResponse {
	out := make([]erpv1.Prediction, 0, len(items))
	for _, p := range items {
		out = append(out, erpv1.Prediction{
			ProductID:         p.ProductID,
			ProductName:       p.ProductName,
			PredictionDate:    p.PredictionDate,
			PredictedQuantity: p.PredictedQuantity,
			ConfidenceScore:   p.ConfidenceScore,
			ModelVersion:      p.ModelVersion,
		})
	}
	return &erpv1.ListPredictionsResponse{Predictions: out, Total: total}
}
