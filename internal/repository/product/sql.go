package product

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"bookshop/internal/db"
	"bookshop/internal/domain"
	"bookshop/internal/money"
)

const productColumns = `id, title, author, price_cents, category, COALESCE(isbn, ''), description, stock, image, rating, pages, language, publisher, publication_date, created_at, updated_at`

type sqlRepo struct {
	db     *sql.DB
	logger *log.Logger
	now    func() time.Time
}

func NewSQL(conn *sql.DB, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &sqlRepo{db: conn, logger: logger, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p          domain.Product
		priceCents int64
		createdAt  int64
		updatedAt  int64
	)
	err := row.Scan(&p.ID, &p.Title, &p.Author, &priceCents, &p.Category, &p.ISBN, &p.Description,
		&p.Stock, &p.Image, &p.Rating, &p.Pages, &p.Language, &p.Publisher, &p.PublicationDate,
		&createdAt, &updatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	p.Price = money.FromCents(priceCents)
	p.CreatedAt = db.FromTimestamp(createdAt)
	p.UpdatedAt = db.FromTimestamp(updatedAt)
	return p, nil
}

func (r *sqlRepo) List(ctx context.Context, filter ListFilter) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE 1 = 1`
	var args []any
	if c := strings.TrimSpace(filter.Category); c != "" {
		args = append(args, c)
		q += ` AND category = $` + itoa(len(args))
	}
	if s := strings.TrimSpace(filter.Query); s != "" {
		args = append(args, "%"+strings.ToLower(s)+"%")
		n := itoa(len(args))
		q += ` AND (LOWER(title) LIKE $` + n + ` OR LOWER(author) LIKE $` + n + `)`
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, domain.Persistence("list products", err)
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, domain.Persistence("scan product", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, domain.Persistence("list products", err)
	}
	r.logger.Printf("product repo: list category=%q query=%q count=%d", filter.Category, filter.Query, len(result))
	return result, nil
}

func (r *sqlRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Printf("product repo: get id=%d not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%d error=%v", id, err)
		return nil, domain.Persistence("get product", err)
	}
	return &p, nil
}

func (r *sqlRepo) GetByISBN(ctx context.Context, isbn string) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE isbn = $1`, isbn))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Persistence("get product by isbn", err)
	}
	return &p, nil
}

func (r *sqlRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (title, author, price_cents, category, isbn, description, stock, image, rating, pages, language, publisher, publication_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
RETURNING id
`
	now := r.now().UTC().Truncate(time.Millisecond)
	err := r.db.QueryRowContext(ctx, q,
		p.Title, p.Author, money.ToCents(p.Price), p.Category, nullable(p.ISBN), p.Description,
		p.Stock, p.Image, p.Rating, p.Pages, p.Language, p.Publisher, p.PublicationDate,
		db.Timestamp(now),
	).Scan(&p.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("product repo: create title=%q error=%v", p.Title, err)
		return nil, domain.Persistence("create product", err)
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	r.logger.Printf("product repo: created id=%d title=%q", p.ID, p.Title)
	return &p, nil
}

func (r *sqlRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
UPDATE products SET
    title = $1, author = $2, price_cents = $3, category = $4, isbn = $5,
    description = $6, stock = $7, image = $8, rating = $9, pages = $10,
    language = $11, publisher = $12, publication_date = $13, updated_at = $14
WHERE id = $15
RETURNING created_at
`
	now := r.now().UTC().Truncate(time.Millisecond)
	var createdAt int64
	err := r.db.QueryRowContext(ctx, q,
		p.Title, p.Author, money.ToCents(p.Price), p.Category, nullable(p.ISBN),
		p.Description, p.Stock, p.Image, p.Rating, p.Pages,
		p.Language, p.Publisher, p.PublicationDate, db.Timestamp(now),
		p.ID,
	).Scan(&createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("product repo: update id=%d error=%v", p.ID, err)
		return nil, domain.Persistence("update product", err)
	}
	p.CreatedAt = db.FromTimestamp(createdAt)
	p.UpdatedAt = now
	r.logger.Printf("product repo: updated id=%d", p.ID)
	return &p, nil
}

func (r *sqlRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("product repo: delete id=%d error=%v", id, err)
		return domain.Persistence("delete product", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Persistence("delete product", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("product repo: deleted id=%d", id)
	return nil
}

func (r *sqlRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, domain.Persistence("count products", err)
	}
	return n, nil
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
