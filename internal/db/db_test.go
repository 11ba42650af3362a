package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocinema/gocinema/internal/config"
	"github.com/gocinema/gocinema/internal/db"
	"github.com/gocinema/gocinema/internal/db/models"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		engine string
		name   string
		err    error
	}{
		{engine: config.EngineMySQL, name: "mysql"},
		{engine: config.EnginePostgres, name: "postgres"},
		{engine: config.EngineSQLite, name: "sqlite"},
		{engine: "", name: "sqlite"},
		{engine: "oracle", err: db.ErrUnknownEngine},
	}

	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			d, err := db.Dialector(&config.DB{GormEngine: tt.engine, Host: "localhost", Port: 1, Path: ":memory:"})
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
		})
	}
}

func TestOpenAndMigrate(t *testing.T) {
	// a single connection keeps the in-memory database alive across queries
	gdb, err := db.Open(&config.DB{GormEngine: config.EngineSQLite, Path: ":memory:", MaxOpenConns: 1})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)

	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))

	for _, m := range models.All() {
		assert.True(t, gdb.Migrator().HasTable(m))
	}

	assert.True(t, gdb.Migrator().HasTable("user_roles"))
}
