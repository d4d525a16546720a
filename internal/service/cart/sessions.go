package cart

import (
	"context"
	"io"
	"log"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	cartrepo "bookshop/internal/repository/cart"
)

// Sessions hands out one Cart per user, restoring it from the snapshot
// store on first use.
type Sessions struct {
	mu     sync.Mutex
	carts  map[int64]*Cart
	store  snapshotStore
	rate   decimal.Decimal
	logger *log.Logger
}

func NewSessions(store cartrepo.Store, rate decimal.Decimal, logger *log.Logger) *Sessions {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Sessions{carts: make(map[int64]*Cart), store: store, rate: rate, logger: logger}
}

// Key is the snapshot key for a user's cart.
func Key(userID int64) string {
	return cartrepo.KeyPrefix + ":" + strconv.FormatInt(userID, 10)
}

func (s *Sessions) For(ctx context.Context, userID int64) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.carts[userID]; ok {
		return c
	}
	c := New(Key(userID), s.store, s.rate, s.logger)
	c.Load(ctx)
	s.carts[userID] = c
	return c
}

func (s *Sessions) Rate() decimal.Decimal {
	return s.rate
}
