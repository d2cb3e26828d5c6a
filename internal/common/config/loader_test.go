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

const minimalConfig = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: courses
    user: courses
  elasticsearch:
    url: http://localhost:9200
  redis:
    address: localhost:6379
workers:
  get-course-suggestions:
    enabled: true
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "course-workers", cfg.App.Name)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.Database.Elasticsearch.GetAddresses())

	assert.Equal(t, 20, cfg.Recommendation.PoolSize)
	assert.Equal(t, 8, cfg.Recommendation.SuggestionLimit)
	assert.Equal(t, 70, cfg.Recommendation.ScoreThreshold)
	assert.Equal(t, 4.0, cfg.Recommendation.BackfillMinRating)
	assert.Equal(t, 12, cfg.Catalog.PageSize)
	assert.Equal(t, "courses", cfg.Catalog.Index)

	worker := cfg.Workers["get-course-suggestions"]
	assert.True(t, worker.Enabled)
	assert.Equal(t, 5, worker.MaxJobsActive)
	assert.Equal(t, 30000, worker.Timeout)
	assert.Equal(t, 3, worker.MaxRetries)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_COURSES_DB_HOST", "db.internal")
	body := `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: ${TEST_COURSES_DB_HOST}
    database: courses
    user: courses
  elasticsearch:
    addresses: [http://es:9200]
  redis:
    address: redis:6379
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing broker",
			body:    "database:\n  postgres:\n    host: x\n",
			wantErr: "camunda.broker_address",
		},
		{
			name: "sns without topic",
			body: minimalConfig + `
events:
  sns:
    enabled: true
`,
			wantErr: "events.sns.topic_arn",
		},
		{
			name: "page size above max",
			body: minimalConfig + `
catalog:
  page_size: 200
  max_page_size: 100
`,
			wantErr: "catalog.page_size",
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

func TestGetWorkerConfig_Fallback(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"get-course-page": {Enabled: false, MaxJobsActive: 2},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "get-course-page"))
	assert.True(t, IsWorkerEnabled(cfg, "unknown"))
	assert.Equal(t, 5, GetWorkerConfig(cfg, "unknown").MaxJobsActive)
	assert.Equal(t, 2, GetWorkerConfig(cfg, "get-course-page").MaxJobsActive)
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
