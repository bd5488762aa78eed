// internal/analytics/aggregator.go
package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"merchant-analytics/internal/common/logger"
	"merchant-analytics/internal/common/metrics"
	"merchant-analytics/internal/models"
)

const (
	// MaxCategories caps the category breakdown.
	MaxCategories = 10
	// DefaultIntentLimit is used when the caller does not pass a limit.
	DefaultIntentLimit = 10
	// UnknownIntent replaces a null intent label during reduction.
	UnknownIntent = "UNKNOWN"
)

// Store is the query-execution capability of the conversation store.
// *database.PostgresClient satisfies it.
type Store interface {
	Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Aggregator composes aggregate queries for a merchant and reduces the rows
// into dashboard shapes. It holds no mutable state and is safe for concurrent use.
type Aggregator struct {
	store  Store
	logger logger.Logger
	now    func() time.Time
}

type Option func(*Aggregator)

// WithClock overrides the source of "now" used to resolve implicit windows.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

func NewAggregator(store Store, log logger.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:  store,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type conversationTotals struct {
	total       int
	converted   int
	avgMessages float64
}

// GenerateMerchantDashboard runs the totals, category and outgoing-performance
// queries concurrently. The first failure cancels the rest and fails the call.
func (a *Aggregator) GenerateMerchantDashboard(ctx context.Context, merchantID string, tr models.TimeRange) (*models.DashboardSummary, error) {
	from, to := ResolveTimeRange(tr, a.now())

	var (
		totals      conversationTotals
		categories  []models.CategoryInsight
		avgResponse float64
	)

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		totals, err = a.conversationTotals(ctx, merchantID, from, to)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		categories, err = a.categoryInquiries(ctx, merchantID, from, to)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		avgResponse, err = a.outgoingPerformance(ctx, merchantID, from, to)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	// avgMessages is not part of the summary; it is only logged.
	a.logger.Debug("dashboard assembled", map[string]interface{}{
		"merchantId":         merchantID,
		"from":               from,
		"to":                 to,
		"totalConversations": totals.total,
		"avgMessages":        totals.avgMessages,
	})

	return &models.DashboardSummary{
		TotalConversations:     totals.total,
		ConversionRate:         conversionRate(totals.converted, totals.total),
		AverageResponseTime:    avgResponse,
		MostInquiredCategories: categories,
	}, nil
}

// GetCategoryInsights returns the dashboard's category breakdown on its own.
func (a *Aggregator) GetCategoryInsights(ctx context.Context, merchantID string, tr models.TimeRange) ([]models.CategoryInsight, error) {
	from, to := ResolveTimeRange(tr, a.now())
	return a.categoryInquiries(ctx, merchantID, from, to)
}

// GetTimeSeries returns one point per day with at least one conversation.
// Days without conversations are absent, not zero-filled.
func (a *Aggregator) GetTimeSeries(ctx context.Context, merchantID string, tr models.TimeRange) ([]models.TimeSeriesPoint, error) {
	from, to := ResolveTimeRange(tr, a.now())

	return a.dailyConversations(ctx, merchantID, from, to)
}

func (a *Aggregator) dailyConversations(ctx context.Context, merchantID string, from, to time.Time) (points []models.TimeSeriesPoint, err error) {
	start := time.Now()
	defer func() { a.observe(queryDailyConversations, start, err) }()

	rows, err := a.store.Query(ctx, dailyConversationsSQL, merchantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", queryDailyConversations, err)
	}
	defer rows.Close()

	points = make([]models.TimeSeriesPoint, 0)
	for rows.Next() {
		var p models.TimeSeriesPoint
		if err := rows.Scan(&p.Date, &p.Total, &p.Converted); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", queryDailyConversations, err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", queryDailyConversations, err)
	}
	return points, nil
}

// GetResponseTimeByHour averages outgoing processing time per hour of day.
// Hours without outgoing messages are absent.
func (a *Aggregator) GetResponseTimeByHour(ctx context.Context, merchantID string, tr models.TimeRange) ([]models.HourlyResponseTime, error) {
	from, to := ResolveTimeRange(tr, a.now())

	return a.hourlyResponseTime(ctx, merchantID, from, to)
}

func (a *Aggregator) hourlyResponseTime(ctx context.Context, merchantID string, from, to time.Time) (hours []models.HourlyResponseTime, err error) {
	start := time.Now()
	defer func() { a.observe(queryHourlyResponseTime, start, err) }()

	rows, err := a.store.Query(ctx, hourlyResponseTimeSQL, merchantID, from, to, models.DirectionOutgoing)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", queryHourlyResponseTime, err)
	}
	defer rows.Close()

	hours = make([]models.HourlyResponseTime, 0)
	for rows.Next() {
		var (
			hour  int
			avgMs sql.NullFloat64
		)
		if err := rows.Scan(&hour, &avgMs); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", queryHourlyResponseTime, err)
		}
		hours = append(hours, models.HourlyResponseTime{Hour: hour, AvgMs: avgMs.Float64})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", queryHourlyResponseTime, err)
	}
	return hours, nil
}

// GetTopIntents counts incoming messages per classified intent, most frequent
// first. limit goes to the store as-is.
func (a *Aggregator) GetTopIntents(ctx context.Context, merchantID string, tr models.TimeRange, limit int) ([]models.IntentCount, error) {
	from, to := ResolveTimeRange(tr, a.now())

	return a.incomingIntentCounts(ctx, merchantID, from, to, limit)
}

func (a *Aggregator) incomingIntentCounts(ctx context.Context, merchantID string, from, to time.Time, limit int) (intents []models.IntentCount, err error) {
	start := time.Now()
	defer func() { a.observe(queryIncomingIntentCounts, start, err) }()

	rows, err := a.store.Query(ctx, incomingIntentCountsSQL, merchantID, from, to, models.DirectionIncoming, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", queryIncomingIntentCounts, err)
	}
	defer rows.Close()

	intents = make([]models.IntentCount, 0)
	for rows.Next() {
		var (
			intent sql.NullString
			count  int
		)
		if err := rows.Scan(&intent, &count); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", queryIncomingIntentCounts, err)
		}
		label := UnknownIntent
		if intent.Valid {
			label = intent.String
		}
		intents = append(intents, models.IntentCount{Intent: label, Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", queryIncomingIntentCounts, err)
	}
	return intents, nil
}

func (a *Aggregator) conversationTotals(ctx context.Context, merchantID string, from, to time.Time) (conversationTotals, error) {
	start := time.Now()

	var totals conversationTotals
	err := a.store.QueryRow(ctx, conversationTotalsSQL, merchantID, from, to).
		Scan(&totals.total, &totals.converted, &totals.avgMessages)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
	}
	a.observe(queryConversationTotals, start, err)
	if err != nil {
		return conversationTotals{}, fmt.Errorf("%s: %w", queryConversationTotals, err)
	}
	return totals, nil
}

func (a *Aggregator) categoryInquiries(ctx context.Context, merchantID string, from, to time.Time) (insights []models.CategoryInsight, err error) {
	start := time.Now()
	defer func() { a.observe(queryCategoryInquiries, start, err) }()

	rows, err := a.store.Query(ctx, categoryInquiriesSQL, merchantID, from, to, MaxCategories)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", queryCategoryInquiries, err)
	}
	defer rows.Close()

	insights = make([]models.CategoryInsight, 0, MaxCategories)
	for rows.Next() {
		var (
			doc       models.SessionData
			inquiries int
		)
		if err := rows.Scan(&doc, &inquiries); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", queryCategoryInquiries, err)
		}
		insights = append(insights, models.CategoryInsight{
			Category:  doc.Category(),
			Inquiries: inquiries,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", queryCategoryInquiries, err)
	}
	return insights, nil
}

func (a *Aggregator) outgoingPerformance(ctx context.Context, merchantID string, from, to time.Time) (float64, error) {
	start := time.Now()

	var avg sql.NullFloat64
	err := a.store.QueryRow(ctx, outgoingPerformanceSQL, merchantID, from, to, models.DirectionOutgoing).Scan(&avg)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
	}
	a.observe(queryOutgoingPerformance, start, err)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", queryOutgoingPerformance, err)
	}
	return avg.Float64, nil
}

func (a *Aggregator) observe(query string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.AnalyticsQueryDuration.WithLabelValues(query, status).Observe(time.Since(start).Seconds())
}

func conversionRate(converted, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(converted) / float64(total) * 100
}
