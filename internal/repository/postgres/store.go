// Package postgres persists pipeline snapshots to PostgreSQL through the pgx
// database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"go.uber.org/zap"

	"github.com/mamadbah2/hatchery/internal/repository/sqlstate"
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/hatchery?sslmode=disable"
)

// Open connects, pings and ensures the state table.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*sqlstate.Persister, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open(defaultDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p, err := sqlstate.New(ctx, db, sqlstate.Postgres, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}
