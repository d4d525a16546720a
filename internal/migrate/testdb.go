package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"bookshop/internal/db"
)

// OpenTestDB creates a migrated SQLite database under t.TempDir and closes
// it when the test ends.
func OpenTestDB(t testing.TB) *sql.DB {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bookshop_test.db")
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)

	if err := Apply(ctx, db.DriverSQLite, dsn); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	conn, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}
