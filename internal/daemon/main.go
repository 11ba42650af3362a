// Package daemon builds the application from its config and runs it.
package daemon

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/gocinema/gocinema/internal/auth"
	"github.com/gocinema/gocinema/internal/config"
	"github.com/gocinema/gocinema/internal/web"
	"github.com/gocinema/gocinema/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	services   *Services
	storage    fiber.Storage
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until it was shut down by a signal.
func (d *Daemon) Start() error {
	errC := make(chan error, 1)

	go func() {
		errC <- d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
	}()

	go d.webService.WaitShutdown()

	err := <-errC

	d.Close()

	return err
}

// Close releases the session storage and the database.
func (d *Daemon) Close() {
	if d.storage != nil {
		if err := d.storage.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close session storage")
		}
	}

	d.services.Close()
}

// Web returns the web service.
func (d *Daemon) Web() *web.Service {
	return d.webService
}

// New creates a new Daemon instance with the provided configuration.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	services, err := NewServices(ctx, cfg)
	if err != nil {
		return nil, err
	}

	d := &Daemon{cfg: cfg, services: services}

	if d.storage, err = newSessionStorage(ctx, cfg); err != nil {
		d.Close()

		return nil, err
	}

	var tokens *auth.TokenIssuer

	if cfg.Auth.Token.Enabled {
		tokens, err = auth.NewTokenIssuer(cfg.Auth.Token.Secret, cfg.Auth.Token.Issuer, cfg.Auth.Token.TTL)
		if err != nil {
			d.Close()

			return nil, fmt.Errorf("failed to create token issuer: %w", err)
		}
	}

	d.webService, err = web.New(cfg, web.Dependencies{
		Auth:     services.Auth,
		Users:    services.Users,
		Films:    services.Films,
		Sessions: session.New(cfg.Webserver.Session, d.storage, !cfg.DevMode),
		Tokens:   tokens,
	})
	if err != nil {
		d.Close()

		return nil, err //nolint:wrapcheck
	}

	log.Info().
		Str("db", cfg.DB.GormEngine).
		Str("sessions", cfg.Webserver.Session.Storage).
		Bool("ldap", cfg.Auth.LDAP.Enabled).
		Bool("tokens", tokens != nil).
		Msg("daemon initialized")

	return d, nil
}
