package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 100, cfg.StoreBatchSize)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 30*time.Minute, cfg.EpisodeStaleAfter)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "pgx")
	t.Setenv("DATABASE_URL", "postgres://localhost/highlights")
	t.Setenv("STORE_BATCH_SIZE", "25")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("ENVIRONMENT", "production")

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPgx, cfg.StoreDriver)
	assert.Equal(t, 25, cfg.StoreBatchSize)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"postgres without url", Config{StoreDriver: DriverPostgres, StoreBatchSize: 100}, "DATABASE_URL is not set"},
		{"supabase without key", Config{StoreDriver: DriverSupabase, SupabaseURL: "http://x", StoreBatchSize: 100, SupabaseRPS: 1}, "SUPABASE_URL and SUPABASE_KEY are required for the supabase driver"},
		{"unknown driver", Config{StoreDriver: "mongo", StoreBatchSize: 100}, `unknown STORE_DRIVER "mongo"`},
		{"zero batch", Config{StoreDriver: DriverMemory}, "STORE_BATCH_SIZE must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.cfg.Validate(), tt.wantErr)
		})
	}

	assert.NoError(t, Config{StoreDriver: DriverMemory, StoreBatchSize: 1}.Validate())
}
