package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a book in the catalog.
type Product struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	Price           decimal.Decimal `json:"price"`
	Category        string          `json:"category"`
	ISBN            string          `json:"isbn,omitempty"`
	Description     string          `json:"description,omitempty"`
	Stock           int             `json:"stock"`
	Image           string          `json:"image,omitempty"`
	Rating          float64         `json:"rating"`
	Pages           int             `json:"pages,omitempty"`
	Language        string          `json:"language,omitempty"`
	Publisher       string          `json:"publisher,omitempty"`
	PublicationDate string          `json:"publicationDate,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
