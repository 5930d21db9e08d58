package dto

import "time"

type MetricFilters struct {
	OrganizationID string
	StartDate      *time.Time
	EndDate        *time.Time
	Page           int
	PageSize       int
}

type PredictionFilters struct {
	OrganizationID string
	ProductID      string
	Date           *time.Time
	Page           int
	PageSize       int
}
