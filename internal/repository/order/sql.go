package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"

	"bookshop/internal/db"
	"bookshop/internal/domain"
	"bookshop/internal/money"
)

type sqlRepo struct {
	db     *sql.DB
	logger *log.Logger
}

// SQL implements Repository and Aggregates over the orders and order_items
// tables.
type SQL interface {
	Repository
	Aggregates
}

func NewSQL(conn *sql.DB, logger *log.Logger) SQL {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &sqlRepo{db: conn, logger: logger}
}

// Create writes the order row and all of its items in one transaction and
// returns the assigned order id. Any failure leaves no trace of the order.
func (r *sqlRepo) Create(ctx context.Context, o domain.Order) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, domain.Persistence("begin order tx", err)
	}
	defer tx.Rollback()

	status := o.Status
	if status == "" {
		status = domain.OrderStatusPending
	}

	var orderID int64
	err = tx.QueryRowContext(ctx, `
INSERT INTO orders (user_id, customer_name, customer_email, customer_address, subtotal_cents, tax_cents, total_cents, order_date, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id
`,
		o.UserID, o.CustomerName, o.CustomerEmail, o.CustomerAddress,
		money.ToCents(o.Subtotal), money.ToCents(o.Tax), money.ToCents(o.TotalAmount),
		db.Timestamp(o.OrderDate), string(status),
	).Scan(&orderID)
	if err != nil {
		r.logger.Printf("order repo: insert order user_id=%d error=%v", o.UserID, err)
		return 0, domain.Persistence("insert order", err)
	}

	for i, item := range o.Items {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO order_items (order_id, product_id, product_title, quantity, price_cents)
VALUES ($1, $2, $3, $4, $5)
`, orderID, item.ProductID, item.ProductTitle, item.Quantity, money.ToCents(item.Price)); err != nil {
			r.logger.Printf("order repo: insert item order_id=%d line=%d product_id=%d error=%v", orderID, i, item.ProductID, err)
			return 0, domain.Persistence(fmt.Sprintf("insert order item %d", i), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, domain.Persistence("commit order", err)
	}
	r.logger.Printf("order repo: committed order_id=%d items=%d total_cents=%d", orderID, len(o.Items), money.ToCents(o.TotalAmount))
	return orderID, nil
}

// Delete removes the order's items and then the order itself.
func (r *sqlRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Persistence("begin delete tx", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return domain.Persistence("delete order items", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return domain.Persistence("delete order", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Persistence("delete order", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return domain.Persistence("commit delete", err)
	}
	r.logger.Printf("order repo: deleted order_id=%d", id)
	return nil
}

func (r *sqlRepo) DeleteAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Persistence("begin clear tx", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items`); err != nil {
		return domain.Persistence("clear order items", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders`); err != nil {
		return domain.Persistence("clear orders", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Persistence("commit clear", err)
	}
	r.logger.Printf("order repo: ledger cleared")
	return nil
}

const orderColumns = `id, user_id, customer_name, customer_email, customer_address, subtotal_cents, tax_cents, total_cents, order_date, status`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		o                    domain.Order
		subtotal, tax, total int64
		orderDate            int64
		status               string
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.CustomerName, &o.CustomerEmail, &o.CustomerAddress,
		&subtotal, &tax, &total, &orderDate, &status); err != nil {
		return domain.Order{}, err
	}
	o.Subtotal = money.FromCents(subtotal)
	o.Tax = money.FromCents(tax)
	o.TotalAmount = money.FromCents(total)
	o.OrderDate = db.FromTimestamp(orderDate)
	o.Status = domain.OrderStatus(status)
	return o, nil
}

func (r *sqlRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Persistence("get order", err)
	}
	items, err := r.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *sqlRepo) List(ctx context.Context, filter ListFilter) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if filter.UserID != 0 {
		q += ` WHERE user_id = $1`
		args = append(args, filter.UserID)
	}
	q += ` ORDER BY order_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, domain.Persistence("list orders", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, domain.Persistence("scan order", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("list orders", err)
	}
	return orders, nil
}

func (r *sqlRepo) ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, order_id, product_id, product_title, quantity, price_cents
FROM order_items
WHERE order_id = $1
ORDER BY id ASC
`, orderID)
	if err != nil {
		return nil, domain.Persistence("list order items", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var (
			it    domain.OrderItem
			price int64
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductTitle, &it.Quantity, &price); err != nil {
			return nil, domain.Persistence("scan order item", err)
		}
		it.Price = money.FromCents(price)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("list order items", err)
	}
	return items, nil
}
