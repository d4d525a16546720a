package user

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"bookshop/internal/db"
	"bookshop/internal/domain"
)

type sqlRepo struct {
	db     *sql.DB
	logger *log.Logger
	now    func() time.Time
}

// NewSQL returns a Repository backed by the users table.
func NewSQL(conn *sql.DB, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &sqlRepo{db: conn, logger: logger, now: time.Now}
}

const userColumns = `id, full_name, email, password_hash, role, created_at`

func (r *sqlRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	if u.Role == "" {
		u.Role = domain.RoleCustomer
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = r.now().UTC().Truncate(time.Millisecond)

	err := r.db.QueryRowContext(ctx, `
INSERT INTO users (full_name, email, password_hash, role, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`, u.FullName, u.Email, u.PasswordHash, string(u.Role), db.Timestamp(u.CreatedAt)).Scan(&u.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("user repo: create email=%s error=%v", u.Email, err)
		return nil, domain.Persistence("create user", err)
	}
	return &u, nil
}

func (r *sqlRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
	return r.scanUser(row, "get user by email")
}

func (r *sqlRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id), "get user")
}

func (r *sqlRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, domain.Persistence("list users", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := r.scanUser(rows, "scan user")
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("list users", err)
	}
	return users, nil
}

func (r *sqlRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, domain.Persistence("count users", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *sqlRepo) scanUser(row rowScanner, op string) (*domain.User, error) {
	var (
		u         domain.User
		role      string
		createdAt int64
	)
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &role, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Persistence(op, err)
	}
	u.Role = domain.Role(role)
	u.CreatedAt = db.FromTimestamp(createdAt)
	return &u, nil
}
