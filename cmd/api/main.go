package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"bookshop/internal/config"
	"bookshop/internal/db"
	"bookshop/internal/httpserver"
	"bookshop/internal/migrate"
	cartrepo "bookshop/internal/repository/cart"
	orderrepo "bookshop/internal/repository/order"
	productrepo "bookshop/internal/repository/product"
	tokenrepo "bookshop/internal/repository/token"
	userrepo "bookshop/internal/repository/user"
	"bookshop/internal/seed"
	authsvc "bookshop/internal/service/auth"
	cartsvc "bookshop/internal/service/cart"
	ordersvc "bookshop/internal/service/order"
	productsvc "bookshop/internal/service/product"
	revenuesvc "bookshop/internal/service/revenue"
)

const tokenSweepInterval = time.Hour

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Apply(ctx, cfg.DBDriver, cfg.DBConnString); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}
	conn, err := db.Open(ctx, cfg.DBDriver, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer conn.Close()

	productRepo := productrepo.NewSQL(conn, logger)
	orderRepo := orderrepo.NewSQL(conn, logger)
	tokens := tokenrepo.NewSQL(conn)

	cartStore, closeStore := snapshotStore(cfg, conn, logger)
	defer closeStore()

	authService := authsvc.New(userrepo.NewSQL(conn, logger), tokens, cfg.TokenTTL, logger)
	productService := productsvc.New(productRepo)
	orderService := ordersvc.New(orderRepo, cfg.TaxRate, logger)
	revenueService := revenuesvc.New(orderRepo, cfg.Location(), logger)
	carts := cartsvc.NewSessions(cartStore, cfg.TaxRate, logger)

	if created, err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Fatalf("ensure admin: %v", err)
	} else if created {
		logger.Printf("created admin account %s", cfg.AdminEmail)
	}
	if cfg.SeedOnStart {
		if _, err := seed.SeedIfEmpty(ctx, productRepo, logger); err != nil {
			logger.Fatalf("seed catalog: %v", err)
		}
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, conn, httpserver.Deps{
		AuthSvc:     authService,
		ProductSvc:  productService,
		Carts:       carts,
		OrderSvc:    orderService,
		RevenueSvc:  revenueService,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	go sweepTokens(ctx, tokens, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("received shutdown signal")
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

// snapshotStore picks the cart snapshot backend. The returned func releases
// it.
func snapshotStore(cfg config.Config, conn *sql.DB, logger *log.Logger) (cartrepo.Store, func()) {
	if cfg.CartStore != config.CartStoreRedis {
		return cartrepo.NewSQL(conn), func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	logger.Printf("cart snapshots in redis at %s", cfg.RedisAddr)
	return cartrepo.NewRedis(client), func() {
		if err := client.Close(); err != nil {
			logger.Printf("close redis: %v", err)
		}
	}
}

func sweepTokens(ctx context.Context, tokens tokenrepo.Repository, logger *log.Logger) {
	ticker := time.NewTicker(tokenSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := tokens.DeleteExpired(ctx, now)
			if err != nil {
				logger.Printf("token sweep: %v", err)
				continue
			}
			if n > 0 {
				logger.Printf("token sweep: removed %d expired tokens", n)
			}
		}
	}
}
