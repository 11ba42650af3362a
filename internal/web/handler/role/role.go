// Package role lists the roles an identity can hold.
package role

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gocinema/gocinema/internal/auth"
	"github.com/gocinema/gocinema/internal/web/handler"
)

// Path is the base path of role routes.
const Path = handler.RootPath + "role"

// Service is the role handler service.
type Service struct {
	roles      *auth.Registry
	middleware *auth.Middleware
}

// New creates the role handler.
func New(roles *auth.Registry, middleware *auth.Middleware) *Service {
	return &Service{roles: roles, middleware: middleware}
}

// Init registers the routes.
func (s *Service) Init(app *fiber.App) error {
	if app == nil || s.roles == nil || s.middleware == nil {
		return handler.ErrDependencyNil
	}

	app.Get(Path,
		s.middleware.Authenticate(),
		s.middleware.Authorize(auth.ActionRead, auth.ResourceIdentity, nil),
		s.List,
	)

	return nil
}

// List returns all roles.
func (s *Service) List(c *fiber.Ctx) error {
	roles, err := s.roles.List(c.UserContext())
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(roles)
}
