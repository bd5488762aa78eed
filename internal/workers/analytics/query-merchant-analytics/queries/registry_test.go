package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merchant-analytics/internal/models"
)

func TestRegistry_CoversEveryQueryType(t *testing.T) {
	for _, qt := range []models.QueryType{
		models.QueryTypeMerchantDashboard,
		models.QueryTypeCategoryInsights,
		models.QueryTypeTimeSeries,
		models.QueryTypeResponseTimeByHour,
		models.QueryTypeTopIntents,
	} {
		assert.Contains(t, Registry, qt)
	}
}

func TestExecute_UnknownQueryType(t *testing.T) {
	data, rowCount, execTime, err := Execute(context.Background(), nil, models.QueryType("revenue_forecast"), Params{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownQueryType)
	assert.Contains(t, err.Error(), "revenue_forecast")
	assert.Nil(t, data)
	assert.Zero(t, rowCount)
	assert.Zero(t, execTime)
}
