package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"bookshop/internal/domain"
	authsvc "bookshop/internal/service/auth"
)

func TestBuildRouter_MissingDeps(t *testing.T) {
	if _, err := buildRouter(logDiscard(), nil, Deps{}); err == nil {
		t.Fatalf("expected error for missing deps")
	}
}

func TestHealthAndReady(t *testing.T) {
	router := newTestRouter(t, stubDeps())

	if rec := do(router, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(router, http.MethodGet, "/readyz", "", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without db, got %d", rec.Code)
	}
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func TestReadyHandler_Ping(t *testing.T) {
	deps := stubDeps()
	router, err := buildRouter(logDiscard(), stubPinger{}, deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	if rec := do(router, http.MethodGet, "/readyz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	router, _ = buildRouter(logDiscard(), stubPinger{err: errors.New("down")}, deps)
	if rec := do(router, http.MethodGet, "/readyz", "", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	router := newTestRouter(t, stubDeps())

	rec := do(router, http.MethodGet, "/healthz", "", "")
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}

	rec = do(router, http.MethodGet, "/products/999", "", "")
	var body ErrorResponse
	decode(t, rec, &body)
	if body.RequestID == "" || body.Error != "not_found" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestAuthMiddleware(t *testing.T) {
	router := newTestRouter(t, stubDeps())

	if rec := do(router, http.MethodGet, "/me", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := do(router, http.MethodGet, "/me", "bogus", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", rec.Code)
	}
	rec := do(router, http.MethodGet, "/me", "customer", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"email":"reader@example.com"`) {
		t.Fatalf("unexpected /me response %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}

func TestAdminMiddleware(t *testing.T) {
	router := newTestRouter(t, stubDeps())

	if rec := do(router, http.MethodGet, "/admin/revenue/summary", "customer", ""); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer, got %d", rec.Code)
	}
	rec := do(router, http.MethodGet, "/admin/revenue/summary", "admin", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"totalRevenue":"12.50"`) {
		t.Fatalf("unexpected summary %d %s", rec.Code, rec.Body.String())
	}
}

func TestSignupAndLogin(t *testing.T) {
	deps := stubDeps()
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodPost, "/auth/signup", "", `{"fullName":"R","email":"r@example.com","password":"secret1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}

	deps.AuthSvc.(*stubAuthService).signErr = domain.ErrAlreadyExists
	if rec := do(router, http.MethodPost, "/auth/signup", "", `{"fullName":"R","email":"r@example.com","password":"secret1"}`); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	rec = do(router, http.MethodPost, "/auth/login", "", `{"email":"r@example.com","password":"secret1"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"tokenType":"Bearer"`) {
		t.Fatalf("unexpected login %d %s", rec.Code, rec.Body.String())
	}

	deps.AuthSvc.(*stubAuthService).loginErr = authsvc.ErrInvalidCredentials
	if rec := do(router, http.MethodPost, "/auth/login", "", `{"email":"r@example.com","password":"bad"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec := do(router, http.MethodPost, "/auth/login", "", `{"email":""}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCartHandlers(t *testing.T) {
	router := newTestRouter(t, stubDeps())

	rec := do(router, http.MethodPost, "/cart/lines", "customer", `{"productId":1,"quantity":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add line: %d %s", rec.Code, rec.Body.String())
	}
	do(router, http.MethodPost, "/cart/lines", "customer", `{"productId":2}`)

	var cart cartResponse
	decode(t, do(router, http.MethodGet, "/cart", "customer", ""), &cart)
	if cart.Total != "27.50" || cart.Subtotal != "25.00" || cart.Tax != "2.50" || cart.LineCount != 2 || cart.UnitCount != 3 {
		t.Fatalf("unexpected cart %+v", cart)
	}

	if rec := do(router, http.MethodPost, "/cart/lines", "customer", `{"productId":1,"quantity":0}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero quantity, got %d", rec.Code)
	}
	if rec := do(router, http.MethodPost, "/cart/lines", "customer", `{"productId":42}`); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", rec.Code)
	}

	decode(t, do(router, http.MethodPut, "/cart/lines/1", "customer", `{"quantity":0}`), &cart)
	if cart.LineCount != 1 || cart.Lines[0].ProductID != 2 {
		t.Fatalf("expected line 1 removed, got %+v", cart)
	}
	decode(t, do(router, http.MethodDelete, "/cart/lines/1", "customer", ""), &cart)
	if cart.LineCount != 1 {
		t.Fatalf("removing an absent line changed the cart: %+v", cart)
	}

	// Carts are per user.
	decode(t, do(router, http.MethodGet, "/cart", "admin", ""), &cart)
	if cart.LineCount != 0 {
		t.Fatalf("admin cart should be empty, got %+v", cart)
	}

	decode(t, do(router, http.MethodDelete, "/cart", "customer", ""), &cart)
	if cart.LineCount != 0 || cart.Total != "0.00" {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
}

func TestCheckout_ClearsCartOnlyOnSuccess(t *testing.T) {
	deps := stubDeps()
	orders := deps.OrderSvc.(*stubOrderService)
	router := newTestRouter(t, deps)
	form := `{"name":"Ada","email":"ada@example.com","address":"1 Main St","city":"Springfield","postalCode":"12345","country":"US"}`

	if rec := do(router, http.MethodPost, "/checkout", "customer", form); rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "empty_cart") {
		t.Fatalf("expected empty cart 400, got %d %s", rec.Code, rec.Body.String())
	}

	do(router, http.MethodPost, "/cart/lines", "customer", `{"productId":1,"quantity":2}`)

	if rec := do(router, http.MethodPost, "/checkout", "customer", `{"name":"Ada","email":"ada@example.com"}`); rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), `"field":"address"`) {
		t.Fatalf("expected address validation error, got %d %s", rec.Code, rec.Body.String())
	}

	orders.commitErr = &domain.PersistenceError{Op: "insert order", Err: errBoom}
	if rec := do(router, http.MethodPost, "/checkout", "customer", form); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var cart cartResponse
	decode(t, do(router, http.MethodGet, "/cart", "customer", ""), &cart)
	if cart.LineCount != 1 {
		t.Fatalf("failed checkout must keep the cart, got %+v", cart)
	}

	orders.commitErr = nil
	rec := do(router, http.MethodPost, "/checkout", "customer", form)
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), `"totalAmount":"27.50"`) {
		t.Fatalf("unexpected checkout %d %s", rec.Code, rec.Body.String())
	}
	decode(t, do(router, http.MethodGet, "/cart", "customer", ""), &cart)
	if cart.LineCount != 0 {
		t.Fatalf("successful checkout must clear the cart, got %+v", cart)
	}
	if len(orders.committed) != 1 || orders.committed[0][0].Quantity != 2 {
		t.Fatalf("unexpected committed lines %+v", orders.committed)
	}
}

func TestRevenueQueryValidation(t *testing.T) {
	router := newTestRouter(t, stubDeps())

	cases := []struct {
		path string
		code int
	}{
		{"/admin/revenue/daily", http.StatusOK},
		{"/admin/revenue/daily?days=30", http.StatusOK},
		{"/admin/revenue/daily?days=0", http.StatusBadRequest},
		{"/admin/revenue/daily?days=abc", http.StatusBadRequest},
		{"/admin/revenue/monthly?year=2024", http.StatusOK},
		{"/admin/revenue/range?start=2024-01-01&end=2024-02-01", http.StatusOK},
		{"/admin/revenue/range?start=2024-01-01T00:00:00Z&end=2024-02-01T00:00:00Z", http.StatusOK},
		{"/admin/revenue/range?start=yesterday&end=2024-02-01", http.StatusBadRequest},
		{"/admin/revenue/range?end=2024-02-01", http.StatusBadRequest},
		{"/admin/revenue/top?limit=3", http.StatusOK},
		{"/admin/revenue/top?limit=-1", http.StatusBadRequest},
	}
	for _, tc := range cases {
		if rec := do(router, http.MethodGet, tc.path, "admin", ""); rec.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d body=%s", tc.path, tc.code, rec.Code, rec.Body.String())
		}
	}
}

func TestRevenueSummary_Error(t *testing.T) {
	deps := stubDeps()
	deps.RevenueSvc = &stubRevenueService{err: &domain.PersistenceError{Op: "sum", Err: errBoom}}
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodGet, "/admin/revenue/summary", "admin", "")
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "totalRevenue") {
		t.Fatalf("expected bare 500, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestAdminDeleteOrder_NotFound(t *testing.T) {
	router := newTestRouter(t, stubDeps())
	if rec := do(router, http.MethodDelete, "/admin/orders/5", "admin", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := do(router, http.MethodDelete, "/admin/orders/x", "admin", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
