// Package sqlstate snapshots the record store into a single bucket table of a
// database/sql engine. Engine packages (sqlite, postgres) open the connection
// and choose the dialect.
package sqlstate

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/hatchery/internal/repository/memory"
)

// Dialect carries the engine specific statements.
type Dialect struct {
	Name        string
	CreateTable string
	Upsert      string
}

var (
	SQLite = Dialect{
		Name: "sqlite",
		CreateTable: `CREATE TABLE IF NOT EXISTS pipeline_state (
			bucket TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		)`,
		Upsert: `INSERT INTO pipeline_state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
	}
	Postgres = Dialect{
		Name: "postgres",
		CreateTable: `CREATE TABLE IF NOT EXISTS pipeline_state (
			bucket TEXT PRIMARY KEY,
			payload JSONB NOT NULL
		)`,
		Upsert: `INSERT INTO pipeline_state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`,
	}
)

// Persister implements memory.Persister over database/sql.
type Persister struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
	mu      sync.Mutex
}

var _ memory.Persister = (*Persister)(nil)

// New ensures the state table exists.
func New(ctx context.Context, db *sql.DB, dialect Dialect, logger *zap.Logger) (*Persister, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := db.ExecContext(ctx, dialect.CreateTable); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Persister{db: db, dialect: dialect, logger: logger}, nil
}

// Load reads every bucket and decodes the snapshot.
func (p *Persister) Load(ctx context.Context) (memory.Snapshot, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT bucket, payload FROM pipeline_state`)
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	payloads := make(map[string][]byte)
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return memory.Snapshot{}, fmt.Errorf("scan state: %w", err)
		}
		if len(payload) == 0 {
			continue
		}
		payloads[bucket] = payload
	}
	if err := rows.Err(); err != nil {
		return memory.Snapshot{}, fmt.Errorf("iterate state: %w", err)
	}
	return memory.DecodeSnapshot(payloads)
}

// Save upserts every bucket in one database transaction.
func (p *Persister) Save(ctx context.Context, snapshot memory.Snapshot) (retErr error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	payloads, err := snapshot.Encode()
	if err != nil {
		return err
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range memory.Buckets {
		if _, err := tx.ExecContext(ctx, p.dialect.Upsert, bucket, payloads[bucket]); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	p.logger.Debug("snapshot persisted", zap.String("dialect", p.dialect.Name))
	return nil
}

// DB exposes the underlying connection for tests.
func (p *Persister) DB() *sql.DB { return p.db }

// Close releases the connection pool.
func (p *Persister) Close() error {
	return p.db.Close()
}
