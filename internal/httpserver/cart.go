package httpserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	cartsvc "bookshop/internal/service/cart"
)

type cartSessions interface {
	For(ctx context.Context, userID int64) *cartsvc.Cart
}

type addLineRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  *int  `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *handlers) sessionCart(c *gin.Context) *cartsvc.Cart {
	return h.deps.Carts.For(c.Request.Context(), currentUser(c).ID)
}

func (h *handlers) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, toCartResponse(h.sessionCart(c)))
}

func (h *handlers) addCartLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid_input", "invalid request body: "+err.Error())
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	ctx := c.Request.Context()
	product, err := h.deps.ProductSvc.Get(ctx, req.ProductID)
	if err != nil {
		h.fail(c, err)
		return
	}
	cart := h.sessionCart(c)
	if err := cart.AddLine(ctx, *product, qty); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *handlers) setCartLine(c *gin.Context) {
	id, ok := idParam(c, "productId")
	if !ok {
		return
	}
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid_input", "invalid request body: "+err.Error())
		return
	}
	cart := h.sessionCart(c)
	cart.SetQuantity(c.Request.Context(), id, *req.Quantity)
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *handlers) removeCartLine(c *gin.Context) {
	id, ok := idParam(c, "productId")
	if !ok {
		return
	}
	cart := h.sessionCart(c)
	cart.RemoveLine(c.Request.Context(), id)
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *handlers) clearCart(c *gin.Context) {
	cart := h.sessionCart(c)
	cart.Clear(c.Request.Context())
	c.JSON(http.StatusOK, toCartResponse(cart))
}
