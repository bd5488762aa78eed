// internal/models/analytics.go
package models

import "time"

// TimeRange is an optional inclusive window. Absent bounds are resolved
// against the current time on every call.
type TimeRange struct {
	Days *int       `json:"days,omitempty"`
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// Direction mirrors the message_logs.direction enum.
type Direction string

const (
	DirectionIncoming Direction = "INCOMING"
	DirectionOutgoing Direction = "OUTGOING"
)

// DashboardSummary is always fully populated; zero values stand in for missing data.
type DashboardSummary struct {
	TotalConversations     int               `json:"totalConversations"`
	ConversionRate         float64           `json:"conversionRate"`
	AverageResponseTime    float64           `json:"averageResponseTime"`
	MostInquiredCategories []CategoryInsight `json:"mostInquiredCategories"`
}

// CategoryInsight keeps a nil Category for conversations without one.
type CategoryInsight struct {
	Category  *string `json:"category"`
	Inquiries int     `json:"inquiries"`
}

type TimeSeriesPoint struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Total     int    `json:"total"`
	Converted int    `json:"converted"`
}

type HourlyResponseTime struct {
	Hour  int     `json:"hour"`
	AvgMs float64 `json:"avgMs"`
}

type IntentCount struct {
	Intent string `json:"intent"`
	Count  int    `json:"count"`
}
