package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bookshop/internal/domain"
)

type orderService interface {
	CommitOrder(ctx context.Context, shipping domain.ShippingInfo, lines []domain.CartLine, userID int64) (int64, error)
	DeleteOrder(ctx context.Context, id int64) error
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, userID int64) ([]domain.Order, error)
}

type checkoutRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// shipping joins the address parts the checkout form collects.
func (r checkoutRequest) shipping() domain.ShippingInfo {
	parts := make([]string, 0, 4)
	for _, p := range []string{r.Address, r.City, r.PostalCode, r.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return domain.ShippingInfo{Name: r.Name, Email: r.Email, Address: strings.Join(parts, ", ")}
}

func (r checkoutRequest) missingField() string {
	fields := []struct{ name, value string }{
		{"name", r.Name}, {"email", r.Email}, {"address", r.Address},
		{"city", r.City}, {"postalCode", r.PostalCode}, {"country", r.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return f.name
		}
	}
	return ""
}

// checkout commits the session cart and empties it once the order exists.
func (h *handlers) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid_input", "invalid request body: "+err.Error())
		return
	}
	if field := req.missingField(); field != "" {
		writeError(c, domain.ValidationError{Field: field, Message: "required"})
		return
	}

	ctx := c.Request.Context()
	user := currentUser(c)
	cart := h.sessionCart(c)

	id, err := h.deps.OrderSvc.CommitOrder(ctx, req.shipping(), cart.Lines(), user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	cart.Clear(ctx)

	order, err := h.deps.OrderSvc.GetOrder(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

func (h *handlers) listOrders(c *gin.Context) {
	user := currentUser(c)
	var userID int64
	if !user.IsAdmin() || c.Query("mine") == "true" {
		userID = user.ID
	}
	orders, err := h.deps.OrderSvc.ListOrders(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "results": out})
}

func (h *handlers) getOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.deps.OrderSvc.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	// Other users' orders are reported as missing.
	if user := currentUser(c); !user.IsAdmin() && order.UserID != user.ID {
		writeError(c, domain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

func (h *handlers) deleteOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.deps.OrderSvc.DeleteOrder(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
