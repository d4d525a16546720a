package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open returns a *sql.DB for the given driver and verifies connectivity with
// a ping. SQLite is the embedded default; Postgres goes through a pgx pool.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	var (
		conn *sql.DB
		err  error
	)
	switch driver {
	case DriverSQLite:
		conn, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, err
		}
		// SQLite serializes writers; one connection avoids SQLITE_BUSY between
		// a running transaction and the pool.
		conn.SetMaxOpenConns(1)
	case DriverPostgres:
		pool, err := connectPool(ctx, dsn)
		if err != nil {
			return nil, err
		}
		conn = stdlib.OpenDBFromPool(pool)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func connectPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	return pgxpool.NewWithConfig(ctx, cfg)
}

// Timestamp converts t to the Unix-millisecond form stored in the schema.
func Timestamp(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

// FromTimestamp converts a stored Unix-millisecond value back to UTC time.
func FromTimestamp(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
