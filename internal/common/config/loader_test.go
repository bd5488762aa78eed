package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("ANALYTICS_DB_PASSWORD", "s3cret")

	path := writeConfig(t, `
app:
  name: merchant-analytics
  environment: test
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: chatbot
    user: analytics
    password: ${ANALYTICS_DB_PASSWORD}
workers:
  query-merchant-analytics:
    enabled: true
    timeout: 15000
logging:
  level: debug
  format: console
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "merchant-analytics", cfg.App.Name)
	assert.Equal(t, "localhost:26500", cfg.Camunda.BrokerAddress)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)

	// defaults
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, 25, cfg.Database.Postgres.MaxConnections)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, ":8080", cfg.Server.Address)

	wcfg := GetWorkerConfig(cfg, "query-merchant-analytics")
	assert.True(t, wcfg.Enabled)
	assert.Equal(t, 15000, wcfg.Timeout)
	assert.Equal(t, 5, wcfg.MaxJobsActive)
	assert.Equal(t, 3, wcfg.MaxRetries)
	assert.Equal(t, 15*time.Second, GetDuration(wcfg.Timeout))
}

func TestLoadFromFile_Validation(t *testing.T) {
	t.Setenv("ZEEBE_ADDRESS", "")
	t.Setenv("DB_USER", "")

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "missing broker",
			body: `
database:
  postgres:
    host: localhost
    database: chatbot
    user: analytics
`,
			wantErr: "camunda.broker_address is required",
		},
		{
			name: "missing postgres host",
			body: `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    database: chatbot
    user: analytics
`,
			wantErr: "database.postgres.host is required",
		},
		{
			name: "missing postgres user",
			body: `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: chatbot
`,
			wantErr: "database.postgres.user is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_EnvFallbacks(t *testing.T) {
	t.Setenv("ZEEBE_ADDRESS", "zeebe:26500")
	t.Setenv("DB_USER", "from-env")

	cfg, err := LoadFromFile(writeConfig(t, `
database:
  postgres:
    host: localhost
    database: chatbot
`))
	require.NoError(t, err)

	assert.Equal(t, "zeebe:26500", cfg.Camunda.BrokerAddress)
	assert.Equal(t, "from-env", cfg.Database.Postgres.User)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWorkerDefaults(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"disabled": {Enabled: false},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "disabled"))
	assert.True(t, IsWorkerEnabled(cfg, "unknown"))
	assert.Equal(t, 30000, GetWorkerConfig(cfg, "unknown").Timeout)
}
