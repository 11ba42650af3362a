// Package oidc provides the OpenID Connect login flow. A successful callback
// starts the same session as a password login.
package oidc

import (
	"crypto/subtle"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/gocinema/gocinema/internal/apperr"
	"github.com/gocinema/gocinema/internal/auth"
	"github.com/gocinema/gocinema/internal/web/handler"
	"github.com/gocinema/gocinema/internal/web/session"
)

const (
	// LoginPath is the path to initiate OIDC login.
	LoginPath = handler.RootPath + "login/oidc"

	// CallbackPath is the path for OIDC callback.
	CallbackPath = LoginPath + "/callback"

	stateCookie = "oidc_state"
	stateTTL    = 5 * time.Minute
)

// Service is the OIDC handler service.
type Service struct {
	provider     *auth.OIDCProvider
	sessions     *session.Store
	secureCookie bool
}

// New creates the OIDC handler. A nil provider registers no routes.
func New(provider *auth.OIDCProvider, sessions *session.Store, secureCookie bool) *Service {
	return &Service{provider: provider, sessions: sessions, secureCookie: secureCookie}
}

// Init registers the routes.
func (s *Service) Init(app *fiber.App) error {
	if app == nil || s.sessions == nil {
		return handler.ErrDependencyNil
	}

	if s.provider == nil {
		log.Info().Msg("OIDC authentication is disabled by configuration")

		return nil
	}

	app.Get(LoginPath, s.Login)
	app.Get(CallbackPath, s.Callback)

	return nil
}

// Login redirects to the provider. The state travels in a short lived cookie.
func (s *Service) Login(c *fiber.Ctx) error {
	state := auth.GenerateStateToken()

	c.Cookie(&fiber.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     CallbackPath,
		Expires:  time.Now().Add(stateTTL),
		Secure:   s.secureCookie,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Redirect(s.provider.AuthCodeURL(state))
}

// Callback redeems the code and starts a session.
func (s *Service) Callback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	expected := c.Cookies(stateCookie)

	c.ClearCookie(stateCookie)

	if code == "" || state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(expected)) != 1 {
		return apperr.New(apperr.ErrValidation, "Login state is missing or does not match.", "")
	}

	user, err := s.provider.Exchange(c.UserContext(), code)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if err = s.sessions.Login(c, auth.PrincipalOf(user)); err != nil {
		return err //nolint:wrapcheck
	}

	log.Info().Str("user", user.Username).Msg("user logged in via OIDC")

	return c.JSON(fiber.Map{"username": user.Username})
}
