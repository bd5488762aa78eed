// internal/workers/analytics/query-merchant-analytics/queries/registry.go
package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"merchant-analytics/internal/analytics"
	"merchant-analytics/internal/models"
)

var ErrUnknownQueryType = errors.New("unknown query type")

// Params carries the decoded job variables shared by every query type.
type Params struct {
	MerchantID string
	TimeRange  models.TimeRange
	Limit      int
}

// QueryFunc returns: data, rowCount, error
type QueryFunc func(ctx context.Context, agg *analytics.Aggregator, p Params) (interface{}, int, error)

var Registry = map[models.QueryType]QueryFunc{
	models.QueryTypeMerchantDashboard:  MerchantDashboard,
	models.QueryTypeCategoryInsights:   CategoryInsights,
	models.QueryTypeTimeSeries:         TimeSeries,
	models.QueryTypeResponseTimeByHour: ResponseTimeByHour,
	models.QueryTypeTopIntents:         TopIntents,
}

// Execute runs a registered query and reports its wall time in milliseconds.
func Execute(ctx context.Context, agg *analytics.Aggregator, queryType models.QueryType, p Params) (interface{}, int, int64, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}

	start := time.Now()
	data, rowCount, err := fn(ctx, agg, p)
	return data, rowCount, time.Since(start).Milliseconds(), err
}

func MerchantDashboard(ctx context.Context, agg *analytics.Aggregator, p Params) (interface{}, int, error) {
	summary, err := agg.GenerateMerchantDashboard(ctx, p.MerchantID, p.TimeRange)
	if err != nil {
		return nil, 0, err
	}
	return summary, 1, nil
}

func CategoryInsights(ctx context.Context, agg *analytics.Aggregator, p Params) (interface{}, int, error) {
	insights, err := agg.GetCategoryInsights(ctx, p.MerchantID, p.TimeRange)
	if err != nil {
		return nil, 0, err
	}
	return insights, len(insights), nil
}

func TimeSeries(ctx context.Context, agg *analytics.Aggregator, p Params) (interface{}, int, error) {
	points, err := agg.GetTimeSeries(ctx, p.MerchantID, p.TimeRange)
	if err != nil {
		return nil, 0, err
	}
	return points, len(points), nil
}

func ResponseTimeByHour(ctx context.Context, agg *analytics.Aggregator, p Params) (interface{}, int, error) {
	hours, err := agg.GetResponseTimeByHour(ctx, p.MerchantID, p.TimeRange)
	if err != nil {
		return nil, 0, err
	}
	return hours, len(hours), nil
}

func TopIntents(ctx context.Context, agg *analytics.Aggregator, p Params) (interface{}, int, error) {
	intents, err := agg.GetTopIntents(ctx, p.MerchantID, p.TimeRange, p.Limit)
	if err != nil {
		return nil, 0, err
	}
	return intents, len(intents), nil
}
