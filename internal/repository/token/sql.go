package token

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bookshop/internal/db"
	"bookshop/internal/domain"
)

type sqlRepo struct {
	db *sql.DB
}

func NewSQL(conn *sql.DB) Repository {
	return &sqlRepo{db: conn}
}

func (r *sqlRepo) Create(ctx context.Context, token Token) error {
	const q = `
INSERT INTO tokens (token, user_id, expires_at, created_at)
VALUES ($1, $2, $3, $4)
`
	_, err := r.db.ExecContext(ctx, q, token.Token, token.UserID, db.Timestamp(token.ExpiresAt), db.Timestamp(token.CreatedAt))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return domain.Persistence("create token", err)
	}
	return nil
}

func (r *sqlRepo) Get(ctx context.Context, token string) (*Token, error) {
	const q = `
SELECT token, user_id, expires_at, created_at
FROM tokens
WHERE token = $1
`
	var (
		out                  Token
		expiresAt, createdAt int64
	)
	if err := r.db.QueryRowContext(ctx, q, token).Scan(&out.Token, &out.UserID, &expiresAt, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Persistence("get token", err)
	}
	out.ExpiresAt = db.FromTimestamp(expiresAt)
	out.CreatedAt = db.FromTimestamp(createdAt)
	return &out, nil
}

func (r *sqlRepo) Delete(ctx context.Context, token string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE token = $1`, token)
	if err != nil {
		return domain.Persistence("delete token", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Persistence("delete token", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *sqlRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE expires_at <= $1`, db.Timestamp(now))
	if err != nil {
		return 0, domain.Persistence("delete expired tokens", err)
	}
	return res.RowsAffected()
}
