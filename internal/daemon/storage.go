package daemon

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"

	"github.com/gocinema/gocinema/internal/config"
	"github.com/gocinema/gocinema/internal/db/dsn"
	"github.com/gocinema/gocinema/internal/storage/redis"
)

// newSessionStorage creates the configured session storage.
// The memory storage is returned as nil, fiber then keeps sessions in process.
func newSessionStorage(ctx context.Context, cfg *config.Config) (fiber.Storage, error) {
	switch cfg.Webserver.Session.Storage {
	case config.SessionStorageMemory, "":
		return nil, nil //nolint:nilnil
	case config.EngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.MySQL(&cfg.DB),
			Table:         cfg.Webserver.Session.Table,
		}), nil
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Postgres(&cfg.DB),
			Table:         cfg.Webserver.Session.Table,
		}), nil
	case config.SessionStorageRedis:
		storage, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect session redis: %w", err)
		}

		return storage, nil
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownSessionStorage, cfg.Webserver.Session.Storage)
	}
}
