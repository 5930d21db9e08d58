package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MetricDaily            = "daily"
	PredictionModelVersion = "moving-average-v1"
)

type SalesMetric struct {
	ID             string          `db:"id" json:"id"`
	OrganizationID string          `db:"organization_id" json:"organization_id"`
	Date           time.Time       `db:"date" json:"date"`
	MetricType     string          `db:"metric_type" json:"metric_type"`
	TotalSales     decimal.Decimal `db:"total_sales" json:"total_sales"`
	TotalOrders    int             `db:"total_orders" json:"total_orders"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

type Prediction struct {
	ID                string          `db:"id" json:"id"`
	OrganizationID    string          `db:"organization_id" json:"organization_id"`
	ProductID         string          `db:"product_id" json:"product_id"`
	PredictionDate    time.Time       `db:"prediction_date" json:"prediction_date"`
	PredictedQuantity decimal.Decimal `db:"predicted_quantity" json:"predicted_quantity"`
	ConfidenceScore   decimal.Decimal `db:"confidence_score" json:"confidence_score"`
	ModelVersion      string          `db:"model_version" json:"model_version"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`

	ProductName string `db:"product_name" json:"product_name"`
}

// DailySales is one product's sold quantity on one day.
type DailySales struct {
	ProductID string    `db:"product_id"`
	Day       time.Time `db:"day"`
	Quantity  int       `db:"quantity"`
}

// MovingAverage forecasts the next value as the mean of the last window
// observations, padding missing days with zero. Confidence grows with the
// share of days that had sales.
func MovingAverage(daily []int, window int) (decimal.Decimal, decimal.Decimal) {
	if window <= 0 {
		return decimal.Zero, decimal.Zero
	}
	if len(daily) > window {
		daily = daily[len(daily)-window:]
	}
	sum, active := 0, 0
	for _, q := range daily {
		sum += q
		if q > 0 {
			active++
		}
	}
	w := decimal.NewFromInt(int64(window))
	avg := decimal.NewFromInt(int64(sum)).Div(w).Round(2)
	conf := decimal.NewFromInt(int64(active)).Div(w).Round(2)
	return avg, conf
}
