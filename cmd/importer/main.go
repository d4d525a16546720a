package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"bookshop/internal/config"
	"bookshop/internal/db"
	"bookshop/internal/importer"
	"bookshop/internal/migrate"
	productrepo "bookshop/internal/repository/product"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a book catalog CSV file")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	ctx := context.Background()

	if err := migrate.Apply(ctx, cfg.DBDriver, cfg.DBConnString); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}
	conn, err := db.Open(ctx, cfg.DBDriver, cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer conn.Close()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, productrepo.NewSQL(conn, nil))

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed after %d rows: %v", res.Total(), err)
	}

	fmt.Printf("Imported %d books (%d new, %d updated) in %s\n", res.Total(), res.Created, res.Updated, time.Since(start).Truncate(time.Millisecond))
}
