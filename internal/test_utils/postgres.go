package test_utils

import (
	"context"
	"sync"
	"testing"

	"github.com/aiutox/erp-calendar/internal/config"
	"github.com/aiutox/erp-calendar/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	dbName     = "aiutox"
	dbUser     = "test_aiutox"
	dbPassword = "test_aiutox"
	dbSchema   = "calendar"
)

var (
	containerOnce sync.Once
	containerCfg  config.Database
	containerErr  error
)

// startPostgres starts one container per test binary and migrates it. The
// container is reaped by testcontainers when the process exits.
func startPostgres() (config.Database, error) {
	containerOnce.Do(func() {
		ctx := context.Background()
		container, err := postgres.Run(ctx, "postgres:18.1-alpine",
			postgres.WithDatabase(dbName),
			postgres.WithUsername(dbUser),
			postgres.WithPassword(dbPassword),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			containerErr = err
			return
		}
		host, err := container.Host(ctx)
		if err != nil {
			containerErr = err
			return
		}
		port, err := container.MappedPort(ctx, "5432/tcp")
		if err != nil {
			containerErr = err
			return
		}
		log.Infof("Postgres container started at %s:%d", host, port.Int())

		containerCfg = config.Database{
			Host:   host,
			Port:   port.Int(),
			User:   dbUser,
			Pass:   dbPassword,
			Name:   dbName,
			Schema: dbSchema,
		}

		pool, err := database.Open(ctx, containerCfg)
		if err != nil {
			containerErr = err
			return
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool, dbSchema); err != nil {
			containerErr = err
			return
		}
		containerErr = database.Migrate(containerCfg)
	})
	return containerCfg, containerErr
}

// SetupPostgres returns a pool on a migrated Postgres database with an empty
// calendar_event table. The test is skipped in -short mode or without Docker.
func SetupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Postgres test in short mode")
	}

	cfg, err := startPostgres()
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}

	ctx := context.Background()
	pool, err := database.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, "TRUNCATE calendar_event"); err != nil {
		t.Fatalf("failed to truncate calendar_event: %v", err)
	}
	return pool
}
