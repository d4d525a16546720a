package migrate

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshop/internal/db"
)

func TestApply_CreatesSchemaAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)", filepath.Join(t.TempDir(), "m.db"))

	require.NoError(t, Apply(ctx, db.DriverSQLite, dsn))
	require.NoError(t, Apply(ctx, db.DriverSQLite, dsn))

	conn, err := db.Open(ctx, db.DriverSQLite, dsn)
	require.NoError(t, err)
	defer conn.Close()

	for _, table := range []string{"users", "products", "orders", "order_items", "tokens", "kv_store"} {
		var name string
		err := conn.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestApply_UnknownDriver(t *testing.T) {
	err := Apply(context.Background(), "mysql", "ignored")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no migrations")
}
