package order

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bookshop/internal/domain"
	"bookshop/internal/money"
	orderrepo "bookshop/internal/repository/order"
)

type ledgerRepo interface {
	Create(ctx context.Context, o domain.Order) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, filter orderrepo.ListFilter) ([]domain.Order, error)
	ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
}

// Service is the order ledger: it turns a cart snapshot into a committed
// order and removes orders together with their items.
type Service struct {
	repo   ledgerRepo
	rate   decimal.Decimal
	now    func() time.Time
	logger *log.Logger
}

func New(repo orderrepo.Repository, rate decimal.Decimal, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, rate: rate, now: time.Now, logger: logger}
}

// CommitOrder validates the snapshot, computes totals from the lines alone
// and writes the order with all its items atomically.
func (s *Service) CommitOrder(ctx context.Context, shipping domain.ShippingInfo, lines []domain.CartLine, userID int64) (int64, error) {
	if len(lines) == 0 {
		return 0, domain.ErrEmptyCart
	}
	shipping, err := normalizeShipping(shipping)
	if err != nil {
		return 0, err
	}

	subtotal := decimal.Zero
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return 0, fmt.Errorf("product %d: %w", l.ProductID, domain.ErrInvalidQuantity)
		}
		if l.Price.IsNegative() {
			return 0, domain.ValidationError{Field: "price", Message: fmt.Sprintf("product %d has a negative price", l.ProductID)}
		}
		subtotal = subtotal.Add(l.LineTotal())
		items = append(items, domain.OrderItem{
			ProductID:    l.ProductID,
			ProductTitle: l.Title,
			Quantity:     l.Quantity,
			Price:        l.Price,
		})
	}

	totals := ComputeTotals(subtotal, s.rate)
	order := domain.Order{
		UserID:          userID,
		CustomerName:    shipping.Name,
		CustomerEmail:   shipping.Email,
		CustomerAddress: shipping.Address,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		TotalAmount:     totals.Total,
		OrderDate:       s.now().UTC(),
		Status:          domain.OrderStatusPending,
		Items:           items,
	}

	id, err := s.repo.Create(ctx, order)
	if err != nil {
		s.logger.Printf("order service: commit user_id=%d lines=%d error=%v", userID, len(lines), err)
		return 0, err
	}
	s.logger.Printf("order service: committed order_id=%d user_id=%d total=%s", id, userID, money.Display(totals.Total))
	return id, nil
}

// Totals are the cent-rounded amounts stored on an order.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals rounds once, to cents and half away from zero. The total is
// subtotal×(1+rate) and the tax is whatever remains after the subtotal, so
// Subtotal+Tax always equals Total.
func ComputeTotals(subtotal, rate decimal.Decimal) Totals {
	total := money.Round(subtotal.Mul(decimal.NewFromInt(1).Add(rate)))
	sub := money.Round(subtotal)
	return Totals{Subtotal: sub, Tax: total.Sub(sub), Total: total}
}

func normalizeShipping(in domain.ShippingInfo) (domain.ShippingInfo, error) {
	out := domain.ShippingInfo{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Address: strings.TrimSpace(in.Address),
	}
	switch {
	case out.Name == "":
		return out, domain.ValidationError{Field: "name", Message: "required"}
	case out.Email == "":
		return out, domain.ValidationError{Field: "email", Message: "required"}
	case !strings.Contains(out.Email, "@"):
		return out, domain.ValidationError{Field: "email", Message: "must contain @"}
	case out.Address == "":
		return out, domain.ValidationError{Field: "address", Message: "required"}
	}
	return out, nil
}

// DeleteOrder removes the order and every item it owns.
func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Printf("order service: deleted order_id=%d", id)
	return nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// ListOrders returns orders newest first. A zero userID lists all orders.
func (s *Service) ListOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.repo.List(ctx, orderrepo.ListFilter{UserID: userID})
}

func (s *Service) ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	return s.repo.ListItems(ctx, orderID)
}

// ClearLedger deletes every order and item.
func (s *Service) ClearLedger(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}
