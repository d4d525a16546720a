package httpserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookshop/internal/domain"
	authsvc "bookshop/internal/service/auth"
)

type authService interface {
	authenticator
	Register(ctx context.Context, in authsvc.RegisterInput, role domain.Role) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*authsvc.Session, error)
	Logout(ctx context.Context, token string) error
	TokenTTLSeconds() int
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType"`
	ExpiresIn int          `json:"expiresIn"`
	User      *domain.User `json:"user"`
}

func (h *handlers) signup(c *gin.Context) {
	var req authsvc.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid_input", "invalid request body: "+err.Error())
		return
	}
	u, err := h.deps.AuthSvc.Register(c.Request.Context(), req, domain.RoleCustomer)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid_input", "invalid request body: "+err.Error())
		return
	}
	sess, err := h.deps.AuthSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{
		Token:     sess.Token,
		TokenType: "Bearer",
		ExpiresIn: h.deps.AuthSvc.TokenTTLSeconds(),
		User:      sess.User,
	})
}

func (h *handlers) logout(c *gin.Context) {
	if err := h.deps.AuthSvc.Logout(c.Request.Context(), c.GetString(tokenCtxKey)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}
