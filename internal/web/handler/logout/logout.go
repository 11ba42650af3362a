// Package logout ends the session of the caller.
package logout

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/gocinema/gocinema/internal/web/handler"
	"github.com/gocinema/gocinema/internal/web/session"
)

// Path is the path of the logout route.
const Path = handler.RootPath + "logout"

// Service is the logout handler service.
type Service struct {
	sessions *session.Store
}

// New creates the logout handler.
func New(sessions *session.Store) *Service {
	return &Service{sessions: sessions}
}

// Init registers the routes.
func (s *Service) Init(app *fiber.App) error {
	if app == nil || s.sessions == nil {
		return handler.ErrDependencyNil
	}

	app.Post(Path, s.Logout)

	return nil
}

// Logout destroys the session and clears the cookie. Logging out without a
// session is not an error.
func (s *Service) Logout(c *fiber.Ctx) error {
	if err := s.sessions.Logout(c); err != nil {
		log.Error().Err(err).Msg("failed to delete session")

		return err //nolint:wrapcheck
	}

	return c.SendStatus(fiber.StatusNoContent)
}
