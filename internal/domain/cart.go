package domain

import "github.com/shopspring/decimal"

// CartLine is one product pending purchase. Price is the product price at
// the time the line was first added.
type CartLine struct {
	ProductID int64           `json:"productId"`
	Title     string          `json:"title"`
	Author    string          `json:"author,omitempty"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// LineTotal returns price × quantity without rounding.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
