package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"bookshop/internal/domain"
	productrepo "bookshop/internal/repository/product"
	authsvc "bookshop/internal/service/auth"
	cartsvc "bookshop/internal/service/cart"
	productsvc "bookshop/internal/service/product"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubAuthService struct {
	users    map[string]*domain.User
	loginErr error
	signErr  error
}

func (s *stubAuthService) Authenticate(_ context.Context, token string) (*domain.User, error) {
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, authsvc.ErrInvalidToken
}

func (s *stubAuthService) Register(_ context.Context, in authsvc.RegisterInput, role domain.Role) (*domain.User, error) {
	if s.signErr != nil {
		return nil, s.signErr
	}
	return &domain.User{ID: 99, FullName: in.FullName, Email: in.Email, Role: role}, nil
}

func (s *stubAuthService) Login(_ context.Context, email, _ string) (*authsvc.Session, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &authsvc.Session{Token: "token", User: &domain.User{ID: 1, Email: email}}, nil
}

func (s *stubAuthService) Logout(context.Context, string) error { return nil }

func (s *stubAuthService) TokenTTLSeconds() int { return 3600 }

type stubProductService struct {
	products map[int64]domain.Product
}

func (s *stubProductService) List(context.Context, productrepo.ListFilter) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubProductService) Get(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *stubProductService) Create(_ context.Context, in productsvc.Input) (*domain.Product, error) {
	return &domain.Product{ID: 10, Title: in.Title, Price: in.Price}, nil
}

func (s *stubProductService) Update(_ context.Context, id int64, in productsvc.Input) (*domain.Product, error) {
	return &domain.Product{ID: id, Title: in.Title, Price: in.Price}, nil
}

func (s *stubProductService) Delete(context.Context, int64) error { return nil }

type stubOrderService struct {
	commitErr error
	committed [][]domain.CartLine
}

func (s *stubOrderService) CommitOrder(_ context.Context, _ domain.ShippingInfo, lines []domain.CartLine, userID int64) (int64, error) {
	if s.commitErr != nil {
		return 0, s.commitErr
	}
	if len(lines) == 0 {
		return 0, domain.ErrEmptyCart
	}
	s.committed = append(s.committed, lines)
	return int64(len(s.committed)), nil
}

func (s *stubOrderService) DeleteOrder(context.Context, int64) error { return domain.ErrNotFound }

func (s *stubOrderService) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	return &domain.Order{ID: id, UserID: 1, TotalAmount: decimal.RequireFromString("27.5")}, nil
}

func (s *stubOrderService) ListOrders(context.Context, int64) ([]domain.Order, error) {
	return []domain.Order{}, nil
}

type stubRevenueService struct {
	err error
}

func (s *stubRevenueService) Summary(context.Context) (*domain.RevenueSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.RevenueSummary{TotalRevenue: decimal.RequireFromString("12.5")}, nil
}

func (s *stubRevenueService) RevenueByDay(_ context.Context, n int) ([]domain.DailyRevenue, error) {
	return make([]domain.DailyRevenue, n), nil
}

func (s *stubRevenueService) RevenueByMonth(context.Context, int) ([]domain.MonthlyRevenue, error) {
	return make([]domain.MonthlyRevenue, 12), nil
}

func (s *stubRevenueService) RevenueInRange(context.Context, time.Time, time.Time) (decimal.Decimal, error) {
	return decimal.RequireFromString("3"), nil
}

func (s *stubRevenueService) TopSellingProducts(context.Context, int) ([]domain.ProductSales, error) {
	return []domain.ProductSales{}, nil
}

func (s *stubRevenueService) Location() *time.Location { return time.UTC }

var (
	customerUser = &domain.User{ID: 1, Email: "reader@example.com", Role: domain.RoleCustomer}
	adminUser    = &domain.User{ID: 2, Email: "admin@bookshop.com", Role: domain.RoleAdmin}
)

func stubDeps() Deps {
	return Deps{
		AuthSvc: &stubAuthService{users: map[string]*domain.User{"customer": customerUser, "admin": adminUser}},
		ProductSvc: &stubProductService{products: map[int64]domain.Product{
			1: {ID: 1, Title: "Book A", Price: decimal.RequireFromString("10")},
			2: {ID: 2, Title: "Book B", Price: decimal.RequireFromString("5")},
		}},
		Carts:      cartsvc.NewSessions(nil, cartsvc.DefaultTaxRate, nil),
		OrderSvc:   &stubOrderService{},
		RevenueSvc: &stubRevenueService{},
	}
}

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func do(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

var errBoom = errors.New("boom")
