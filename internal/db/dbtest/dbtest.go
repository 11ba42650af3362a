// Package dbtest provides migrated in-memory databases for tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gocinema/gocinema/internal/db"
)

// New returns a migrated database private to the test.
// The shared cache keeps every pooled connection on the same in-memory database.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())

	gdb, err := db.OpenDialector(sqlite.Open(name))
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)

	// one connection serializes the tests' queries, shared cache locks would fail them otherwise
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	require.NoError(t, db.Migrate(gdb))

	return gdb
}
