// Package film provides the HTTP handlers for the film catalog.
package film

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gocinema/gocinema/internal/auth"
	"github.com/gocinema/gocinema/internal/db/models"
	filmsvc "github.com/gocinema/gocinema/internal/service/film"
	"github.com/gocinema/gocinema/internal/web/handler"
)

const (
	// Path is the base path of film routes.
	Path = handler.RootPath + "film"

	pathID = "/:" + filmsvc.ParamID
)

// Response is the JSON representation of a film.
type Response struct {
	ID        uint64           `json:"id"`
	Name      string           `json:"name"`
	Duration  string           `json:"duration"`
	State     models.FilmState `json:"state"`
	CreatedAt string           `json:"created_at"`
}

// NewResponse converts a film into its JSON representation.
func NewResponse(f *models.Film) Response {
	return Response{
		ID:        f.ID,
		Name:      f.Name,
		Duration:  f.Duration,
		State:     f.State,
		CreatedAt: f.CreatedAt.Format(filmsvc.DateLayout),
	}
}

// Service is the film handler service.
type Service struct {
	films      *filmsvc.Service
	middleware *auth.Middleware
}

// New creates the film handler.
func New(films *filmsvc.Service, middleware *auth.Middleware) *Service {
	return &Service{films: films, middleware: middleware}
}

// Init registers the routes.
func (s *Service) Init(app *fiber.App) error {
	if app == nil || s.films == nil || s.middleware == nil {
		return handler.ErrDependencyNil
	}

	mw := s.middleware

	app.Route(Path, func(router fiber.Router) {
		router.Use(mw.Authenticate())

		router.Get(handler.RootPath, mw.Authorize(auth.ActionRead, auth.ResourceFilm, nil), s.List)
		router.Get(pathID, mw.Authorize(auth.ActionRead, auth.ResourceFilm, nil), s.Get)
		router.Post(handler.RootPath, mw.Authorize(auth.ActionCreate, auth.ResourceFilm, nil), s.Create)
		router.Put(pathID, mw.Authorize(auth.ActionUpdate, auth.ResourceFilm, nil), s.Update)
		router.Delete(pathID, mw.Authorize(auth.ActionDelete, auth.ResourceFilm, nil), s.Delete)
	}, "film")

	return nil
}

// Create adds a film.
func (s *Service) Create(c *fiber.Ctx) error {
	var in filmsvc.Input
	if err := handler.Bind(c, &in); err != nil {
		return err //nolint:wrapcheck
	}

	f, err := s.films.Create(c.UserContext(), in)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.Status(fiber.StatusCreated).JSON(NewResponse(f))
}

// List returns a page of films.
func (s *Service) List(c *fiber.Ctx) error {
	limit, offset := handler.Paging(c)

	films, total, err := s.films.List(c.UserContext(), limit, offset)
	if err != nil {
		return err //nolint:wrapcheck
	}

	page := handler.Page[Response]{Items: make([]Response, 0, len(films)), Total: total, Limit: limit, Offset: offset}
	for i := range films {
		page.Items = append(page.Items, NewResponse(&films[i]))
	}

	return c.JSON(page)
}

// Get returns the film with the id of the path.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, filmsvc.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	f, err := s.films.Get(c.UserContext(), id)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(NewResponse(f))
}

// Update replaces the fields of the film.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, filmsvc.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	var in filmsvc.Input
	if err = handler.Bind(c, &in); err != nil {
		return err //nolint:wrapcheck
	}

	f, err := s.films.Update(c.UserContext(), id, in)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(NewResponse(f))
}

// Delete removes the film and returns it.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, filmsvc.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	f, err := s.films.Delete(c.UserContext(), id)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(NewResponse(f))
}
