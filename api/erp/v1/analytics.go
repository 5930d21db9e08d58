package v1

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const AnalyticsServiceName = "omnipos.erp.v1.AnalyticsService"

type ListMetricsRequest struct {
	PageRequest
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

type CalculateMetricsRequest struct {
	// Date defaults to today.
	Date *time.Time `json:"date,omitempty"`
}

type ListPredictionsRequest struct {
	PageRequest
	ProductID string `json:"product_id"`
}

type SalesMetric struct {
	Date        time.Time       `json:"date"`
	MetricType  string          `json:"metric_type"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	TotalOrders int             `json:"total_orders"`
}

type ListMetricsResponse struct {
	Metrics []SalesMetric `json:"metrics"`
	Total   int           `json:"total"`
}

type Prediction struct {
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name"`
	PredictionDate    time.Time       `json:"prediction_date"`
	PredictedQuantity decimal.Decimal `json:"predicted_quantity"`
	ConfidenceScore   decimal.Decimal `json:"confidence_score"`
	ModelVersion      string          `json:"model_version"`
}

type ListPredictionsResponse struct {
	Predictions []Prediction `json:"predictions"`
	Total       int          `json:"total"`
}

type AnalyticsServiceServer interface {
	ListMetrics(context.Context, *ListMetricsRequest) (*ListMetricsResponse, error)
	Last30Days(context.Context, *emptypb.Empty) (*ListMetricsResponse, error)
	CalculateDailyMetrics(context.Context, *CalculateMetricsRequest) (*SalesMetric, error)
	ListPredictions(context.Context, *ListPredictionsRequest) (*ListPredictionsResponse, error)
	GeneratePredictions(context.Context, *emptypb.Empty) (*ListPredictionsResponse, error)
}

var AnalyticsServiceDesc = grpc.ServiceDesc{
	ServiceName: AnalyticsServiceName,
	HandlerType: (*AnalyticsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(AnalyticsServiceName, "ListMetrics", AnalyticsServiceServer.ListMetrics),
		unary(AnalyticsServiceName, "Last30Days", AnalyticsServiceServer.Last30Days),
		unary(AnalyticsServiceName, "CalculateDailyMetrics", AnalyticsServiceServer.CalculateDailyMetrics),
		unary(AnalyticsServiceName, "ListPredictions", AnalyticsServiceServer.ListPredictions),
		unary(AnalyticsServiceName, "GeneratePredictions", AnalyticsServiceServer.GeneratePredictions),
	},
	Metadata: "erp/v1/analytics",
}

func RegisterAnalyticsServiceServer(s grpc.ServiceRegistrar, srv AnalyticsServiceServer) {
	s.RegisterService(&AnalyticsServiceDesc, srv)
}
