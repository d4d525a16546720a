package seed

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/shopspring/decimal"

	"bookshop/internal/domain"
)

type catalog interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type bookSeed struct {
	Title     string
	Author    string
	Price     string
	Category  string
	ISBN      string
	Stock     int
	Rating    float64
	Pages     int
	Publisher string
	Published string
}

var books = []bookSeed{
	{"Pride and Prejudice", "Jane Austen", "9.99", "Classics", "978-0141439518", 25, 4.7, 480, "Penguin Classics", "1813-01-28"},
	{"Nineteen Eighty-Four", "George Orwell", "12.50", "Fiction", "978-0452284234", 30, 4.6, 328, "Plume", "1949-06-08"},
	{"The Hobbit", "J.R.R. Tolkien", "14.99", "Fantasy", "978-0547928227", 18, 4.8, 300, "Mariner Books", "1937-09-21"},
	{"Dune", "Frank Herbert", "18.00", "Science Fiction", "978-0441172719", 12, 4.5, 688, "Ace", "1965-08-01"},
	{"The Great Gatsby", "F. Scott Fitzgerald", "10.99", "Classics", "978-0743273565", 40, 4.2, 180, "Scribner", "1925-04-10"},
	{"Sapiens", "Yuval Noah Harari", "22.99", "History", "978-0062316097", 15, 4.4, 464, "Harper", "2015-02-10"},
	{"The Pragmatic Programmer", "David Thomas, Andrew Hunt", "44.95", "Technology", "978-0135957059", 8, 4.7, 352, "Addison-Wesley", "2019-09-13"},
	{"Thinking, Fast and Slow", "Daniel Kahneman", "17.00", "Psychology", "978-0374533557", 20, 4.3, 512, "Farrar, Straus and Giroux", "2011-10-25"},
}

// SeedIfEmpty inserts the sample catalog when no products exist yet. It
// reports whether anything was inserted.
func SeedIfEmpty(ctx context.Context, products catalog, logger *log.Logger) (bool, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	n, err := products.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		logger.Printf("seed: catalog has %d products, skipping", n)
		return false, nil
	}

	for _, b := range books {
		price, err := decimal.NewFromString(b.Price)
		if err != nil {
			return false, fmt.Errorf("seed %q price: %w", b.Title, err)
		}
		if _, err := products.Create(ctx, domain.Product{
			Title:           b.Title,
			Author:          b.Author,
			Price:           price,
			Category:        b.Category,
			ISBN:            b.ISBN,
			Stock:           b.Stock,
			Rating:          b.Rating,
			Pages:           b.Pages,
			Language:        "English",
			Publisher:       b.Publisher,
			PublicationDate: b.Published,
		}); err != nil {
			return false, fmt.Errorf("seed %q: %w", b.Title, err)
		}
	}
	logger.Printf("seed: inserted %d products", len(books))
	return true, nil
}
