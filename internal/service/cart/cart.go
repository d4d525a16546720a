package cart

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"bookshop/internal/domain"
)

// DefaultTaxRate applies when no rate is configured.
var DefaultTaxRate = decimal.RequireFromString("0.10")

type snapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Cart is a session's pending selection of products. It holds at most one
// line per product id and every line has a quantity of at least one. After
// each mutation the ordered line list is written to the snapshot store.
type Cart struct {
	mu     sync.Mutex
	lines  []domain.CartLine
	key    string
	store  snapshotStore
	rate   decimal.Decimal
	logger *log.Logger
}

// New returns an empty cart. A nil store keeps the cart in memory only.
func New(key string, store snapshotStore, rate decimal.Decimal, logger *log.Logger) *Cart {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Cart{key: key, store: store, rate: rate, logger: logger}
}

// Load replaces the in-memory lines with the persisted snapshot. A missing
// or unreadable snapshot leaves the cart empty.
func (c *Cart) Load(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	if c.store == nil {
		return
	}

	raw, err := c.store.Get(ctx, c.key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.logger.Printf("cart: load key=%s error=%v", c.key, err)
		}
		return
	}
	lines, err := decodeLines(raw)
	if err != nil {
		c.logger.Printf("cart: discard corrupt snapshot key=%s error=%v", c.key, err)
		return
	}
	c.lines = lines
}

func decodeLines(raw []byte) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, err
	}
	seen := make(map[int64]struct{}, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}
		if _, dup := seen[l.ProductID]; dup {
			return nil, errors.New("duplicate product line")
		}
		seen[l.ProductID] = struct{}{}
	}
	return lines, nil
}

// AddLine increments the product's line by qty, or appends a new line that
// snapshots the product's current price.
func (c *Cart) AddLine(ctx context.Context, p domain.Product, qty int) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(p.ID); i >= 0 {
		c.lines[i].Quantity += qty
	} else {
		c.lines = append(c.lines, domain.CartLine{
			ProductID: p.ID,
			Title:     p.Title,
			Author:    p.Author,
			Image:     p.Image,
			Quantity:  qty,
			Price:     p.Price,
		})
	}
	c.save(ctx)
	return nil
}

// SetQuantity overwrites the line's quantity. Zero or less removes the line.
func (c *Cart) SetQuantity(ctx context.Context, productID int64, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	if qty <= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	} else {
		c.lines[i].Quantity = qty
	}
	c.save(ctx)
}

// RemoveLine is a no-op when the product is not in the cart.
func (c *Cart) RemoveLine(ctx context.Context, productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.save(ctx)
}

func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.save(ctx)
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Subtotal is the exact, unrounded sum of price times quantity.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return subtotal(c.lines)
}

func subtotal(lines []domain.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LineTotal())
	}
	return sum
}

func (c *Cart) Tax(rate decimal.Decimal) decimal.Decimal {
	return c.Subtotal().Mul(rate)
}

// Total is the subtotal plus tax at the cart's configured rate.
func (c *Cart) Total() decimal.Decimal {
	s := c.Subtotal()
	return s.Add(s.Mul(c.rate))
}

func (c *Cart) Rate() decimal.Decimal {
	return c.rate
}

// LineCount counts distinct products.
func (c *Cart) LineCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// UnitCount sums quantities across lines.
func (c *Cart) UnitCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) indexOf(productID int64) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// save must be called with c.mu held.
func (c *Cart) save(ctx context.Context) {
	if c.store == nil {
		return
	}
	if len(c.lines) == 0 {
		if err := c.store.Delete(ctx, c.key); err != nil {
			c.logger.Printf("cart: clear snapshot key=%s error=%v", c.key, err)
		}
		return
	}
	raw, err := json.Marshal(c.lines)
	if err != nil {
		c.logger.Printf("cart: encode snapshot key=%s error=%v", c.key, err)
		return
	}
	if err := c.store.Put(ctx, c.key, raw); err != nil {
		c.logger.Printf("cart: save snapshot key=%s error=%v", c.key, err)
	}
}
