package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matching-workers/internal/matching"
)

const baseYAML = `
app:
  name: matching-workers-test
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: ${TEST_DB_HOST}
    database: matching
    user: matcher
workers:
  generate-recommendations:
    enabled: true
    max_jobs_active: 10
  send-recommendation-digest:
    enabled: false
matching:
  candidate_cache_ttl: 0
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "matching-workers-test", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.App.HTTPAddress)
	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.True(t, cfg.Database.Postgres.AutoMigrate)
	assert.True(t, cfg.Camunda.UsePlaintext)
	assert.Equal(t, 10000, cfg.Camunda.ConnectionTimeout)

	assert.Equal(t, "v1.0", cfg.Matching.AlgorithmVersion)
	assert.Equal(t, int64(1000), cfg.Matching.MinFollowers)
	assert.Equal(t, 0.3, cfg.Matching.MinScore)
	assert.Equal(t, 20, cfg.Matching.MaxResults)
	assert.Equal(t, CandidateSourcePostgres, cfg.Matching.CandidateSource)

	assert.Equal(t, "matching-workers-test", cfg.Observability.ServiceName)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_WorkerSettings(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	generate := GetWorkerConfig(cfg, "generate-recommendations")
	assert.True(t, generate.Enabled)
	assert.Equal(t, 10, generate.MaxJobsActive)
	assert.Equal(t, 30000, generate.Timeout)
	assert.Equal(t, 3, generate.MaxRetries)

	assert.False(t, IsWorkerEnabled(cfg, "send-recommendation-digest"))
	assert.True(t, IsWorkerEnabled(cfg, "unknown-worker"))
	assert.Equal(t, 5, GetWorkerConfig(cfg, "unknown-worker").MaxJobsActive)
}

func TestLoadFromFile_Validation(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")

	tests := []struct {
		name    string
		extra   string
		wantErr string
	}{
		{
			name:    "unknown candidate source",
			extra:   "  candidate_cache_ttl: 0\n  candidate_source: mongo\n",
			wantErr: "matching.candidate_source",
		},
		{
			name:    "elasticsearch without addresses",
			extra:   "  candidate_cache_ttl: 0\n  candidate_source: elasticsearch\n",
			wantErr: "database.elasticsearch.addresses",
		},
		{
			name:    "cache without redis",
			extra:   "  candidate_cache_ttl: 60000\n",
			wantErr: "database.redis.address",
		},
		{
			name:    "weights do not sum to one",
			extra:   "  candidate_cache_ttl: 0\n  weights:\n    category_match: 0.5\n    audience_match: 0.5\n    budget_fit: 0.5\n    location_match: 0\n    engagement_quality: 0\n    past_performance: 0\n    regional_fit: 0\n",
			wantErr: "weights must sum to 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := baseYAML[:len(baseYAML)-len("  candidate_cache_ttl: 0\n")] + tt.extra
			_, err := LoadFromFile(writeConfig(t, content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingBroker(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, "database:\n  postgres:\n    host: h\n    database: d\n    user: u\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "camunda.broker_address")
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestMatchingConfig_EngineConfig(t *testing.T) {
	m := MatchingConfig{
		AlgorithmVersion: "v2.0",
		MinFollowers:     5000,
		MinScore:         0.4,
		MaxResults:       10,
		Concurrency:      2,
		SlowRunThreshold: 1500,
		Regional: RegionalFitConfig{
			PlaceNames:    []string{"thailand", "bangkok"},
			ScriptPattern: `[\x{0E00}-\x{0E7F}]`,
		},
		Weights: map[string]float64{
			"category_match":     0.3,
			"audienceMatch":      0.2,
			"BUDGET_FIT":         0.1,
			"location_match":     0.1,
			"engagement_quality": 0.1,
			"past_performance":   0.1,
			"regional_fit":       0.1,
		},
	}

	cfg, err := m.EngineConfig()
	require.NoError(t, err)

	assert.Equal(t, "v2.0", cfg.AlgorithmVersion)
	assert.Equal(t, int64(5000), cfg.DefaultMinFollowers)
	assert.Equal(t, 0.4, cfg.MinScore)
	assert.Equal(t, 10, cfg.MaxResults)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, 1500*time.Millisecond, cfg.SlowRunThreshold)
	assert.Equal(t, []string{"thailand", "bangkok"}, cfg.Regional.PlaceNames)
	assert.Equal(t, 0.3, cfg.Weights.CategoryMatch)
	assert.Equal(t, 0.1, cfg.Weights.BudgetFit)
}

func TestMatchingConfig_EngineConfig_Defaults(t *testing.T) {
	cfg, err := MatchingConfig{MinScore: 0.3}.EngineConfig()
	require.NoError(t, err)

	assert.Equal(t, matching.DefaultWeights(), cfg.Weights)
	assert.Equal(t, int64(matching.DefaultMinFollowers), cfg.DefaultMinFollowers)
	assert.Equal(t, matching.DefaultPlaceNames, cfg.Regional.PlaceNames)
}

func TestWeightsFromMap_Errors(t *testing.T) {
	full := func() map[string]float64 {
		return map[string]float64{
			"category_match": 0.25, "audience_match": 0.20, "budget_fit": 0.15,
			"location_match": 0.10, "engagement_quality": 0.15,
			"past_performance": 0.10, "regional_fit": 0.05,
		}
	}

	t.Run("missing factor", func(t *testing.T) {
		raw := full()
		delete(raw, "regional_fit")
		_, err := weightsFromMap(raw)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "regionalFit")
	})

	t.Run("unknown factor", func(t *testing.T) {
		raw := full()
		raw["follower_count"] = 0
		_, err := weightsFromMap(raw)
		assert.Error(t, err)
	})

	t.Run("complete set", func(t *testing.T) {
		w, err := weightsFromMap(full())
		require.NoError(t, err)
		assert.Equal(t, matching.DefaultWeights(), w)
	})
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "h", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "require"}
	assert.Equal(t, "host=h port=5433 user=u password=p dbname=d sslmode=require", p.GetDSN())
}
