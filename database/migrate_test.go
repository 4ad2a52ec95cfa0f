package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles_ArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFS, "migration")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file in migrations: %s", name)
		}
	}

	assert.Equal(t, ups, downs)
}

func TestMigrationFiles_CreateCoreTables(t *testing.T) {
	var all strings.Builder
	err := fs.WalkDir(migrationFS, "migration", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".up.sql") {
			return err
		}
		b, err := fs.ReadFile(migrationFS, path)
		if err != nil {
			return err
		}
		all.Write(b)
		return nil
	})
	require.NoError(t, err)

	sql := all.String()
	for _, table := range []string{
		"users", "products", "product_colors", "carts", "cart_items", "orders", "order_items",
		"costume_inspirations", "costume_inspiration_products", "page_views", "analytics_events", "error_logs",
	} {
		assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS "+table+" ", table)
	}
}
