package order

import (
	"context"
	"time"

	"bookshop/internal/domain"
)

// ListFilter narrows List. A zero UserID lists every order.
type ListFilter struct {
	UserID int64
}

// Repository is the durable order ledger. Create and Delete are atomic
// across the orders and order_items tables.
type Repository interface {
	Create(ctx context.Context, o domain.Order) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, error)
	ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
}

// Period is a half-open time window [Start, End). A nil bound is open.
type Period struct {
	Start *time.Time
	End   *time.Time
}

// Entry is the minimal projection of an order used for bucketing.
type Entry struct {
	OrderDate  time.Time
	TotalCents int64
}

// Aggregates exposes read-side queries over the ledger. Every call reads the
// tables afresh.
type Aggregates interface {
	SumTotals(ctx context.Context, period Period) (cents int64, count int, err error)
	Entries(ctx context.Context, period Period) ([]Entry, error)
	TopProducts(ctx context.Context, limit int) ([]domain.ProductSales, error)
}
