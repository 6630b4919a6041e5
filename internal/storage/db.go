package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool sizing for a single-athlete deployment. Sessions, the MCP server
// and the importer share one pool; a handful of connections is plenty.
const (
	defaultMaxConns  = 8
	poolConnIdleTime = 5 * time.Minute
	pingTimeout      = 5 * time.Second
)

// DB is the Postgres repository for programs, adjustment audit rows and
// session history.
type DB struct {
	Pool *pgxpool.Pool
}

// New opens a connection pool and verifies the database is reachable.
// maxConns <= 0 selects the default pool size.
func New(ctx context.Context, dsn string, maxConns int32) (*DB, error) {
	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing dsn: %w", err)
	}
	if maxConns <= 0 {
		maxConns = defaultMaxConns
	}
	pc.MaxConns = maxConns
	pc.MaxConnIdleTime = poolConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}

// RunMigrations brings the schema up to date from the SQL files under dir.
// Safe to call on every start; an already-current schema is not an error.
func RunMigrations(dsn, dir string) error {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return fmt.Errorf("opening migrations in %s: %w", dir, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}
