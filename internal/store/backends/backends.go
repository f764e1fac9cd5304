// Package backends opens the store.Gateway selected by configuration.
package backends

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"podcast-highlighter/internal/config"
	"podcast-highlighter/internal/store"
	"podcast-highlighter/internal/store/memory"
	"podcast-highlighter/internal/store/postgres"
	"podcast-highlighter/internal/store/supabase"
)

const connectTimeout = time.Minute

// Open returns the configured gateway and a function releasing its resources.
func Open(ctx context.Context, cfg config.Config) (store.Gateway, func() error, error) {
	noop := func() error { return nil }
	log := zerolog.Ctx(ctx)

	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn().Msg("using in-memory store, data is not persisted")
		return memory.New(), noop, nil

	case config.DriverSupabase:
		gw, err := supabase.Open(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseRPS)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("url", cfg.SupabaseURL).Float64("rps", cfg.SupabaseRPS).Msg("using supabase store")
		return gw, noop, nil

	case config.DriverPostgres, config.DriverPgx:
		db, err := postgres.Connect(ctx, cfg.StoreDriver, cfg.DatabaseURL, connectTimeout)
		if err != nil {
			return nil, nil, err
		}
		if cfg.StoreMigrate {
			version, dirty, err := postgres.RunMigrations(db)
			if err != nil {
				db.Close()
				return nil, nil, err
			}
			log.Info().Uint("version", version).Bool("dirty", dirty).Msg("database migrations applied")
		}
		return postgres.New(db), db.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
