package product

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"bookshop/internal/domain"
	productrepo "bookshop/internal/repository/product"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// Input is the editable part of a product.
type Input struct {
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	Price           decimal.Decimal `json:"price"`
	Category        string          `json:"category"`
	ISBN            string          `json:"isbn"`
	Description     string          `json:"description"`
	Stock           int             `json:"stock"`
	Image           string          `json:"image"`
	Rating          float64         `json:"rating"`
	Pages           int             `json:"pages"`
	Language        string          `json:"language"`
	Publisher       string          `json:"publisher"`
	PublicationDate string          `json:"publicationDate"`
}

func (s *Service) List(ctx context.Context, filter productrepo.ListFilter) ([]domain.Product, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Product, error) {
	p, err := in.toProduct()
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (*domain.Product, error) {
	p, err := in.toProduct()
	if err != nil {
		return nil, err
	}
	p.ID = id
	return s.repo.Update(ctx, p)
}

// Delete removes a product. Committed order items keep their own title and
// price snapshots.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (in Input) toProduct() (domain.Product, error) {
	p := domain.Product{
		Title:           strings.TrimSpace(in.Title),
		Author:          strings.TrimSpace(in.Author),
		Price:           in.Price,
		Category:        strings.TrimSpace(in.Category),
		ISBN:            strings.TrimSpace(in.ISBN),
		Description:     strings.TrimSpace(in.Description),
		Stock:           in.Stock,
		Image:           strings.TrimSpace(in.Image),
		Rating:          in.Rating,
		Pages:           in.Pages,
		Language:        strings.TrimSpace(in.Language),
		Publisher:       strings.TrimSpace(in.Publisher),
		PublicationDate: strings.TrimSpace(in.PublicationDate),
	}
	return p, Validate(p)
}

// Validate checks the catalog rules for a product.
func Validate(p domain.Product) error {
	switch {
	case p.Title == "":
		return domain.ValidationError{Field: "title", Message: "required"}
	case p.Author == "":
		return domain.ValidationError{Field: "author", Message: "required"}
	case !p.Price.IsPositive():
		return domain.ValidationError{Field: "price", Message: "must be greater than 0"}
	case !p.Price.Equal(p.Price.Round(2)):
		return domain.ValidationError{Field: "price", Message: "at most 2 decimal places"}
	case p.Category == "":
		return domain.ValidationError{Field: "category", Message: "required"}
	case p.Stock < 0:
		return domain.ValidationError{Field: "stock", Message: "must not be negative"}
	case p.Rating < 0 || p.Rating > 5:
		return domain.ValidationError{Field: "rating", Message: "must be between 0 and 5"}
	case p.Pages < 0:
		return domain.ValidationError{Field: "pages", Message: "must not be negative"}
	}
	return nil
}
