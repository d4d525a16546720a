package main

import (
	"context"
	"log"
	"os"

	"bookshop/internal/config"
	"bookshop/internal/db"
	"bookshop/internal/migrate"
	productrepo "bookshop/internal/repository/product"
	tokenrepo "bookshop/internal/repository/token"
	userrepo "bookshop/internal/repository/user"
	"bookshop/internal/seed"
	authsvc "bookshop/internal/service/auth"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	if err := migrate.Apply(ctx, cfg.DBDriver, cfg.DBConnString); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}
	conn, err := db.Open(ctx, cfg.DBDriver, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer conn.Close()

	auth := authsvc.New(userrepo.NewSQL(conn, logger), tokenrepo.NewSQL(conn), cfg.TokenTTL, logger)
	if _, err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Fatalf("ensure admin: %v", err)
	}

	seeded, err := seed.SeedIfEmpty(ctx, productrepo.NewSQL(conn, logger), logger)
	if err != nil {
		logger.Fatalf("seed apply: %v", err)
	}
	if seeded {
		logger.Println("seed applied")
	} else {
		logger.Println("catalog not empty, nothing to do")
	}
}
