package order

import (
	"context"
	"strconv"

	"bookshop/internal/db"
	"bookshop/internal/domain"
	"bookshop/internal/money"
)

func periodClause(p Period) (string, []any) {
	var (
		where string
		args  []any
	)
	if p.Start != nil {
		args = append(args, db.Timestamp(*p.Start))
		where += ` AND order_date >= $` + strconv.Itoa(len(args))
	}
	if p.End != nil {
		args = append(args, db.Timestamp(*p.End))
		where += ` AND order_date < $` + strconv.Itoa(len(args))
	}
	return where, args
}

func (r *sqlRepo) SumTotals(ctx context.Context, period Period) (int64, int, error) {
	where, args := periodClause(period)
	var (
		cents int64
		count int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_cents), 0), COUNT(*) FROM orders WHERE 1 = 1`+where, args...,
	).Scan(&cents, &count)
	if err != nil {
		r.logger.Printf("order repo: sum totals error=%v", err)
		return 0, 0, domain.Persistence("sum order totals", err)
	}
	return cents, count, nil
}

func (r *sqlRepo) Entries(ctx context.Context, period Period) ([]Entry, error) {
	where, args := periodClause(period)
	rows, err := r.db.QueryContext(ctx,
		`SELECT order_date, total_cents FROM orders WHERE 1 = 1`+where+` ORDER BY order_date ASC`, args...)
	if err != nil {
		return nil, domain.Persistence("list order entries", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var date, total int64
		if err := rows.Scan(&date, &total); err != nil {
			return nil, domain.Persistence("scan order entry", err)
		}
		entries = append(entries, Entry{OrderDate: db.FromTimestamp(date), TotalCents: total})
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("list order entries", err)
	}
	return entries, nil
}

// TopProducts ranks products by units sold, then revenue, then id. The title
// is taken from the item snapshots so deleted products still rank.
func (r *sqlRepo) TopProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT product_id, MAX(product_title), SUM(quantity) AS units, SUM(quantity * price_cents) AS revenue
FROM order_items
GROUP BY product_id
ORDER BY units DESC, revenue DESC, product_id ASC
LIMIT $1
`, limit)
	if err != nil {
		return nil, domain.Persistence("top products", err)
	}
	defer rows.Close()

	result := []domain.ProductSales{}
	for rows.Next() {
		var (
			ps      domain.ProductSales
			revenue int64
		)
		if err := rows.Scan(&ps.ProductID, &ps.ProductTitle, &ps.UnitsSold, &revenue); err != nil {
			return nil, domain.Persistence("scan top product", err)
		}
		ps.Revenue = money.FromCents(revenue)
		result = append(result, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("top products", err)
	}
	return result, nil
}
