// Package web serves the JSON API over fiber.
package web

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/gocinema/gocinema/internal/auth"
	"github.com/gocinema/gocinema/internal/config"
	accesslog "github.com/gocinema/gocinema/internal/logger/adapter/fiber"
	filmsvc "github.com/gocinema/gocinema/internal/service/film"
	usersvc "github.com/gocinema/gocinema/internal/service/user"
	"github.com/gocinema/gocinema/internal/web/handler"
	filmhandler "github.com/gocinema/gocinema/internal/web/handler/film"
	"github.com/gocinema/gocinema/internal/web/handler/login"
	"github.com/gocinema/gocinema/internal/web/handler/logout"
	oidchandler "github.com/gocinema/gocinema/internal/web/handler/oidc"
	rolehandler "github.com/gocinema/gocinema/internal/web/handler/role"
	userhandler "github.com/gocinema/gocinema/internal/web/handler/user"
	"github.com/gocinema/gocinema/internal/web/session"
)

const (
	// CheckAlivePath answers load balancer health checks.
	CheckAlivePath = "/checkalive"

	// MetricsPath exposes the prometheus metrics.
	MetricsPath = "/metrics"
)

var (
	// ErrConfigNil is returned when the web service is created without a config.
	ErrConfigNil = errors.New("config cannot be nil")

	// ErrDependencyNil is returned when a required service is missing.
	ErrDependencyNil = errors.New("web dependency cannot be nil")
)

// Dependencies are the services the handlers are built on.
// Tokens may be nil to disable bearer tokens.
type Dependencies struct {
	Auth     *auth.Service
	Users    *usersvc.Service
	Films    *filmsvc.Service
	Sessions *session.Store
	Tokens   *auth.TokenIssuer
}

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address and blocks until it is shut down.
func (s *Service) Start(addr string) error {
	if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("fiber listen error: %w", err)
	}

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the web service down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown stops the http server. Unless fast shutdown is set, checkalive
// reports failure for the configured time first so load balancers drain the instance.
func (s *Service) Shutdown() {
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// SetFastShutDown skips the drain period on shutdown.
func (s *Service) SetFastShutDown(fast bool) {
	s.fastShutDown = fast
}

// CheckAlive returns 200 while the service accepts traffic and 503 while it shuts down.
func (s *Service) CheckAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("OK")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, deps Dependencies) (*Service, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	if deps.Auth == nil || deps.Users == nil || deps.Films == nil || deps.Sessions == nil {
		return nil, ErrDependencyNil
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			ReadTimeout:    time.Duration(cfg.Webserver.ReadTimeout) * time.Second,
			ErrorHandler:   ErrorHandler,
		},
	)

	app.Use(accesslog.New(accesslog.Config{
		Username:      auth.CallerName,
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	// inside the access log, so recovered panics are logged with their status
	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	service := &Service{
		cfg: cfg,
		App: app,
	}

	// the service accepts traffic until a shutdown starts
	service.alive.Store(true)

	app.Get(CheckAlivePath, service.CheckAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	middleware := auth.NewMiddleware(deps.Auth, deps.Sessions, deps.Tokens)

	handlers := []handler.Service{
		login.New(deps.Auth, deps.Sessions, deps.Tokens),
		logout.New(deps.Sessions),
		oidchandler.New(deps.Auth.OIDC(), deps.Sessions, !cfg.DevMode),
		userhandler.New(deps.Users, middleware, cfg.Auth.Local.Enabled),
		filmhandler.New(deps.Films, middleware),
		rolehandler.New(deps.Auth.Roles(), middleware),
	}

	for _, h := range handlers {
		if err := h.Init(app); err != nil {
			return nil, fmt.Errorf("failed to init handler: %w", err)
		}
	}

	return service, nil
}
