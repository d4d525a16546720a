package main

import (
	"context"
	"log"
	"os"

	"bookshop/internal/config"
	"bookshop/internal/migrate"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	if err := migrate.Apply(context.Background(), cfg.DBDriver, cfg.DBConnString); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	logger.Printf("migrations applied driver=%s", cfg.DBDriver)
}
