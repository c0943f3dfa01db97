package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/app"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/config"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/storage/memory"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/storage/postgres"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/storage/sqlite"
	"github.com/pravinkannan18/RFID-Reader-Application/migrations"
)

const startupTimeout = 5 * time.Second

// stores is the config store picked by store.driver. Opening it brings the
// schema up to date.
type stores struct {
	zones app.ZoneRepository
	names app.TagNameRepository
	close func()
}

func openStores(ctx context.Context, cfg config.StoreConfig, logger *log.Logger) (stores, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		s := memory.New()
		logger.Printf("WARN: store.driver=memory, zones and tag names are lost on exit")
		return stores{zones: s, names: s, close: func() { _ = s.Close() }}, nil

	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return stores{}, err
		}
		logger.Printf("store sqlite path=%s", cfg.SQLitePath)
		return stores{zones: s, names: s, close: func() { _ = s.Close() }}, nil

	case config.DriverPostgres:
		startupCtx, cancel := context.WithTimeout(ctx, startupTimeout)
		defer cancel()

		pool, err := pgxpool.New(startupCtx, cfg.PostgresURL)
		if err != nil {
			return stores{}, fmt.Errorf("connect to db: %w", err)
		}
		if err := pool.Ping(startupCtx); err != nil {
			pool.Close()
			return stores{}, fmt.Errorf("db ping: %w", err)
		}
		applied, err := migrations.Apply(startupCtx, pool)
		if err != nil {
			pool.Close()
			return stores{}, fmt.Errorf("apply migrations: %w", err)
		}
		for _, name := range applied {
			logger.Printf("applied migration %s", name)
		}
		return stores{
			zones: postgres.NewZoneRepository(pool),
			names: postgres.NewTagNameRepository(pool),
			close: pool.Close,
		}, nil
	}
	return stores{}, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
