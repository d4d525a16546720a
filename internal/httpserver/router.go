package httpserver

import (
	"errors"
	"io"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps carries the services the handlers call.
type Deps struct {
	AuthSvc     authService
	ProductSvc  productService
	Carts       cartSessions
	OrderSvc    orderService
	RevenueSvc  revenueService
	CORSOrigins []string
}

func (d Deps) validate() error {
	switch {
	case d.AuthSvc == nil:
		return errors.New("auth service required")
	case d.ProductSvc == nil:
		return errors.New("product service required")
	case d.Carts == nil:
		return errors.New("cart sessions required")
	case d.OrderSvc == nil:
		return errors.New("order service required")
	case d.RevenueSvc == nil:
		return errors.New("revenue service required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db pinger, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestIDMiddleware(), gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}

	authGroup := router.Group("/auth")
	authGroup.POST("/signup", h.signup)
	authGroup.POST("/login", h.login)
	authGroup.POST("/logout", authMiddleware(deps.AuthSvc), h.logout)

	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)

	authed := router.Group("/", authMiddleware(deps.AuthSvc))
	authed.GET("/me", h.me)
	authed.GET("/cart", h.getCart)
	authed.DELETE("/cart", h.clearCart)
	authed.POST("/cart/lines", h.addCartLine)
	authed.PUT("/cart/lines/:productId", h.setCartLine)
	authed.DELETE("/cart/lines/:productId", h.removeCartLine)
	authed.POST("/checkout", h.checkout)
	authed.GET("/orders", h.listOrders)
	authed.GET("/orders/:id", h.getOrder)

	admin := router.Group("/admin", authMiddleware(deps.AuthSvc), adminMiddleware())
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.DELETE("/orders/:id", h.deleteOrder)
	admin.GET("/revenue/summary", h.revenueSummary)
	admin.GET("/revenue/daily", h.revenueDaily)
	admin.GET("/revenue/monthly", h.revenueMonthly)
	admin.GET("/revenue/range", h.revenueRange)
	admin.GET("/revenue/top", h.revenueTop)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}
