package product

import (
	"context"

	"bookshop/internal/domain"
)

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	Category string
	Query    string
}

// Repository persists catalog products.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetByISBN(ctx context.Context, isbn string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}
