// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeMerchantDashboard  QueryType = "merchant_dashboard"
	QueryTypeCategoryInsights   QueryType = "category_insights"
	QueryTypeTimeSeries         QueryType = "time_series"
	QueryTypeResponseTimeByHour QueryType = "response_time_by_hour"
	QueryTypeTopIntents         QueryType = "top_intents"
)
