// Package user provides the HTTP handlers for identities.
package user

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gocinema/gocinema/internal/auth"
	"github.com/gocinema/gocinema/internal/db/models"
	usersvc "github.com/gocinema/gocinema/internal/service/user"
	"github.com/gocinema/gocinema/internal/web/handler"
)

const (
	// Path is the base path of identity routes.
	Path = handler.RootPath + "user"

	pathID       = "/:" + usersvc.ParamID
	pathUsername = "/name/:" + usersvc.ParamUsername
	pathEmail    = "/email/:" + usersvc.ParamEmail
	pathRole     = pathID + "/role/:" + usersvc.ParamRole
)

// Response is the JSON representation of an identity.
type Response struct {
	ID       uint64   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// NewResponse converts an identity into its JSON representation.
func NewResponse(u *models.User) Response {
	return Response{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Password: u.Password,
		Roles:    u.RoleNames(),
	}
}

// Service is the identity handler service.
type Service struct {
	users        *usersvc.Service
	middleware   *auth.Middleware
	registration bool
}

// New creates the identity handler. registration enables the public registration routes.
func New(users *usersvc.Service, middleware *auth.Middleware, registration bool) *Service {
	return &Service{users: users, middleware: middleware, registration: registration}
}

// Init registers the routes.
func (s *Service) Init(app *fiber.App) error {
	if app == nil || s.users == nil || s.middleware == nil {
		return handler.ErrDependencyNil
	}

	mw := s.middleware

	app.Route(Path, func(router fiber.Router) {
		if s.registration {
			router.Post(handler.RootPath, s.Register)
			router.Post("/create", s.Register)
		}

		router.Use(mw.Authenticate())

		router.Get(handler.RootPath, mw.Authorize(auth.ActionRead, auth.ResourceIdentity, nil), s.List)
		router.Get(pathUsername, mw.Authorize(auth.ActionRead, auth.ResourceIdentity, nil), s.GetByUsername)
		router.Get(pathEmail, mw.Authorize(auth.ActionRead, auth.ResourceIdentity, nil), s.GetByEmail)
		router.Get(pathID, mw.Authorize(auth.ActionRead, auth.ResourceIdentity, nil), s.Get)

		router.Put(pathID, mw.Authorize(auth.ActionUpdate, auth.ResourceIdentity, s.target), s.Update)
		router.Put(pathID+"/password", mw.Authorize(auth.ActionUpdate, auth.ResourceIdentity, s.target), s.ChangePassword)
		router.Post(pathID+"/otp", mw.Authorize(auth.ActionUpdate, auth.ResourceIdentity, s.target), s.EnrollOTP)
		router.Delete(pathID+"/otp", mw.Authorize(auth.ActionUpdate, auth.ResourceIdentity, s.target), s.DisableOTP)

		router.Delete(pathID, mw.Authorize(auth.ActionDelete, auth.ResourceIdentity, s.target), s.Delete)

		router.Put(pathRole, mw.Authorize(auth.ActionGrant, auth.ResourceIdentity, s.target), s.GrantRole)
		router.Delete(pathRole, mw.Authorize(auth.ActionGrant, auth.ResourceIdentity, s.target), s.RevokeRole)
	}, "user")

	return nil
}

// target loads the identity named by the id path parameter.
func (s *Service) target(c *fiber.Ctx) (*models.User, error) {
	id, err := handler.ParamID(c, usersvc.ParamID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return s.users.Get(c.UserContext(), id) //nolint:wrapcheck
}

// Register creates a local identity holding the "user" role.
func (s *Service) Register(c *fiber.Ctx) error {
	var in usersvc.RegisterInput
	if err := handler.Bind(c, &in); err != nil {
		return err //nolint:wrapcheck
	}

	u, err := s.users.Register(c.UserContext(), in)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.Status(fiber.StatusCreated).JSON(NewResponse(u))
}

// List returns a page of identities.
func (s *Service) List(c *fiber.Ctx) error {
	limit, offset := handler.Paging(c)

	users, total, err := s.users.List(c.UserContext(), limit, offset)
	if err != nil {
		return err //nolint:wrapcheck
	}

	page := handler.Page[Response]{Items: make([]Response, 0, len(users)), Total: total, Limit: limit, Offset: offset}
	for i := range users {
		page.Items = append(page.Items, NewResponse(&users[i]))
	}

	return c.JSON(page)
}

// Get returns the identity with the id of the path.
func (s *Service) Get(c *fiber.Ctx) error {
	u, err := s.target(c)
	if err != nil {
		return err
	}

	return c.JSON(NewResponse(u))
}

// GetByUsername returns the identity with the username of the path.
func (s *Service) GetByUsername(c *fiber.Ctx) error {
	u, err := s.users.GetByUsername(c.UserContext(), c.Params(usersvc.ParamUsername))
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(NewResponse(u))
}

// GetByEmail returns the identity with the email address of the path.
func (s *Service) GetByEmail(c *fiber.Ctx) error {
	u, err := s.users.GetByEmail(c.UserContext(), c.Params(usersvc.ParamEmail))
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(NewResponse(u))
}

// Update changes username and email.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, usersvc.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	var in usersvc.UpdateInput
	if err = handler.Bind(c, &in); err != nil {
		return err //nolint:wrapcheck
	}

	u, err := s.users.Update(c.UserContext(), id, in)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(NewResponse(u))
}

// ChangePassword sets a new password.
func (s *Service) ChangePassword(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, usersvc.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	var in usersvc.PasswordInput
	if err = handler.Bind(c, &in); err != nil {
		return err //nolint:wrapcheck
	}

	if err = s.users.ChangePassword(c.UserContext(), auth.Caller(c), id, in); err != nil {
		return err //nolint:wrapcheck
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// EnrollOTP enables the second factor and returns the secret once.
func (s *Service) EnrollOTP(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, usersvc.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	enrollment, err := s.users.EnrollOTP(c.UserContext(), id)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"secret": enrollment.Secret,
		"url":    enrollment.URL,
	})
}

// DisableOTP removes the second factor.
func (s *Service) DisableOTP(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, usersvc.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if err = s.users.DisableOTP(c.UserContext(), id); err != nil {
		return err //nolint:wrapcheck
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Delete removes the identity and returns it.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, usersvc.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	u, err := s.users.Delete(c.UserContext(), id)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(NewResponse(u))
}

// GrantRole adds the role of the path to the identity.
func (s *Service) GrantRole(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, usersvc.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	u, err := s.users.GrantRole(c.UserContext(), id, c.Params(usersvc.ParamRole))
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(NewResponse(u))
}

// RevokeRole removes the role of the path from the identity.
func (s *Service) RevokeRole(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, usersvc.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	u, err := s.users.RevokeRole(c.UserContext(), id, c.Params(usersvc.ParamRole))
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(NewResponse(u))
}
