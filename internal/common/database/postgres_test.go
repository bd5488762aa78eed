package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merchant-analytics/internal/common/config"
)

func TestNewPostgres_DoesNotDial(t *testing.T) {
	client, err := NewPostgres(config.PostgresConfig{
		Host:           "127.0.0.1",
		Port:           1,
		Database:       "analytics",
		User:           "analytics",
		SSLMode:        "disable",
		MaxConnections: 5,
		MaxIdle:        2,
	})
	require.NoError(t, err)
	require.NotNil(t, client.DB)
	assert.Equal(t, 5, client.DB.Stats().MaxOpenConnections)
	assert.NoError(t, client.Close())
}

func TestPostgresClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	client := &PostgresClient{DB: db}
	defer client.Close()

	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	assert.NoError(t, client.Ping(context.Background()))
	assert.EqualError(t, client.Ping(context.Background()), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_QueryAndQueryRow(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	client := &PostgresClient{DB: db}
	defer client.Close()

	mock.ExpectQuery("SELECT 1").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1).AddRow(2))
	mock.ExpectQuery("SELECT count(*) FROM conversations WHERE merchant_id = $1").
		WithArgs("m-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	rows, err := client.Query(context.Background(), "SELECT 1")
	require.NoError(t, err)
	var got []int
	for rows.Next() {
		var n int
		require.NoError(t, rows.Scan(&n))
		got = append(got, n)
	}
	require.NoError(t, rows.Err())
	rows.Close()
	assert.Equal(t, []int{1, 2}, got)

	var count int
	err = client.QueryRow(context.Background(), "SELECT count(*) FROM conversations WHERE merchant_id = $1", "m-1").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 7, count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_CloseNil(t *testing.T) {
	assert.NoError(t, (&PostgresClient{}).Close())
}
