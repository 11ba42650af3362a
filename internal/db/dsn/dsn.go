// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/gocinema/gocinema/internal/config"
)

// MySQL builds the go-sql-driver Data Source Name from the configuration.
func MySQL(dbCfg *config.DB) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?%s",
		dbCfg.User,
		dbCfg.Password,
		net.JoinHostPort(dbCfg.Host, strconv.Itoa(dbCfg.Port)),
		dbCfg.Name,
		dbCfg.Extras,
	)
}

// Postgres builds a postgres connection URI from the configuration.
// Extras are appended as query string, e.g. "sslmode=disable".
func Postgres(dbCfg *config.DB) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(dbCfg.User, dbCfg.Password),
		Host:     net.JoinHostPort(dbCfg.Host, strconv.Itoa(dbCfg.Port)),
		Path:     "/" + dbCfg.Name,
		RawQuery: dbCfg.Extras,
	}

	return u.String()
}

// Create builds the Data Source Name for the configured engine.
// sqlite uses the configured file path as it is.
func Create(dbCfg *config.DB) string {
	switch dbCfg.GormEngine {
	case config.EngineMySQL:
		return MySQL(dbCfg)
	case config.EnginePostgres:
		return Postgres(dbCfg)
	default:
		return dbCfg.Path
	}
}
