// Package sqlite persists pipeline snapshots to a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/mamadbah2/hatchery/internal/repository/sqlstate"
)

const defaultPath = "hatchery.db"

// Open creates the file (and parent directories) when missing.
func Open(ctx context.Context, path string, logger *zap.Logger) (*sqlstate.Persister, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps writes serialized on the file.
	db.SetMaxOpenConns(1)

	p, err := sqlstate.New(ctx, db, sqlstate.SQLite, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}
