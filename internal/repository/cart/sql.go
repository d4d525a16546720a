package cart

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bookshop/internal/db"
	"bookshop/internal/domain"
)

type sqlStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQL stores snapshots in the kv_store table.
func NewSQL(conn *sql.DB) Store {
	return &sqlStore{db: conn, now: time.Now}
}

func (s *sqlStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Persistence("get cart snapshot", err)
	}
	return value, nil
}

func (s *sqlStore) Put(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO kv_store (key, value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`
	if _, err := s.db.ExecContext(ctx, q, key, value, db.Timestamp(s.now())); err != nil {
		return domain.Persistence("put cart snapshot", err)
	}
	return nil
}

func (s *sqlStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return domain.Persistence("delete cart snapshot", err)
	}
	return nil
}
