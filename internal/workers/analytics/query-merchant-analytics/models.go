// internal/workers/analytics/query-merchant-analytics/models.go
package querymerchantanalytics

import "merchant-analytics/internal/models"

type Input struct {
	QueryType  string            `json:"queryType"`
	MerchantID string            `json:"merchantId"`
	TimeRange  *models.TimeRange `json:"timeRange,omitempty"`
	Limit      *int              `json:"limit,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}
