package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/gocinema/gocinema/internal/auth"
	"github.com/gocinema/gocinema/internal/auth/password"
	"github.com/gocinema/gocinema/internal/config"
	"github.com/gocinema/gocinema/internal/db"
	filmdb "github.com/gocinema/gocinema/internal/db/controller/film"
	"github.com/gocinema/gocinema/internal/db/controller/role"
	userdb "github.com/gocinema/gocinema/internal/db/controller/user"
	filmsvc "github.com/gocinema/gocinema/internal/service/film"
	usersvc "github.com/gocinema/gocinema/internal/service/user"
)

// ErrConfigNil is returned when the daemon is created without a config.
var ErrConfigNil = errors.New("config is nil")

// Services are the domain services shared by the web server and the cli.
type Services struct {
	DB    *gorm.DB
	Roles *role.Controller
	Auth  *auth.Service
	Users *usersvc.Service
	Films *filmsvc.Service
}

// NewServices opens and migrates the database, seeds the default roles and
// builds the services on top of it.
func NewServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	gdb, err := db.Open(&cfg.DB)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	services, err := newServices(ctx, cfg, gdb)
	if err != nil {
		closeDB(gdb)

		return nil, err
	}

	return services, nil
}

func newServices(ctx context.Context, cfg *config.Config, gdb *gorm.DB) (*Services, error) {
	if err := db.Migrate(gdb); err != nil {
		return nil, err //nolint:wrapcheck
	}

	users, err := userdb.New(gdb)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	roles, err := role.New(gdb)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	films, err := filmdb.New(gdb)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if err = SeedRoles(ctx, roles); err != nil {
		return nil, err
	}

	hasher := password.New(nil)

	opts := []auth.Option{auth.WithOTPIssuer(cfg.Auth.OTP.Issuer)}

	if cfg.Auth.LDAP.Enabled {
		provider, errLDAP := auth.NewLDAPProvider(cfg.Auth.LDAP, users, auth.NewRegistry(roles))
		if errLDAP != nil {
			return nil, fmt.Errorf("failed to create ldap provider: %w", errLDAP)
		}

		// an unreachable directory is not fatal, local accounts keep working
		if errLDAP = provider.TestConnection(); errLDAP != nil {
			log.Warn().Err(errLDAP).Msg("ldap connection test failed")
		}

		opts = append(opts, auth.WithLDAP(provider))
	}

	if cfg.Auth.OIDC.Enabled {
		provider, errOIDC := auth.NewOIDCProvider(ctx, cfg.Auth.OIDC, users, auth.NewRegistry(roles))
		if errOIDC != nil {
			// the provider may be down, password logins keep working
			log.Warn().Err(errOIDC).Msg("failed to initialize OIDC provider, OIDC authentication is disabled")
		} else {
			log.Info().Str("provider", cfg.Auth.OIDC.ProviderURL).Msg("OIDC authentication provider initialized")

			opts = append(opts, auth.WithOIDC(provider))
		}
	}

	authService := auth.NewService(users, roles, hasher, opts...)

	s := &Services{
		DB:    gdb,
		Roles: roles,
		Auth:  authService,
		Users: usersvc.New(users, authService, hasher, cfg.Auth.Local.MinPasswordLength),
		Films: filmsvc.New(films),
	}

	if err = s.SeedAdmin(ctx, cfg.Auth.Local); err != nil {
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Services) Close() {
	closeDB(s.DB)
}

func closeDB(gdb *gorm.DB) {
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Error().Err(err).Msg("failed to get database handle")

		return
	}

	if err = sqlDB.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}
}
