package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gocinema/gocinema/internal/apperr"
	"github.com/gocinema/gocinema/internal/db/models"
)

const (
	// HeaderOTP carries the TOTP code next to basic credentials.
	HeaderOTP = "X-OTP"

	localsCaller = "auth.caller"
)

// SessionReader resolves the principal stored in the request's session.
// An empty principal means there is no logged in session.
type SessionReader interface {
	Principal(c *fiber.Ctx) (Principal, error)
}

// TargetLoader loads the identity a request acts on.
// A not found error is not fatal, the decision is then made without a target.
type TargetLoader func(c *fiber.Ctx) (*models.User, error)

// Middleware builds the fiber handlers of the chain authenticate -> authorize -> handler.
type Middleware struct {
	service  *Service
	sessions SessionReader
	tokens   *TokenIssuer
}

// NewMiddleware creates the middleware. sessions and tokens may be nil to
// disable the respective credential channel.
func NewMiddleware(service *Service, sessions SessionReader, tokens *TokenIssuer) *Middleware {
	return &Middleware{service: service, sessions: sessions, tokens: tokens}
}

// Caller returns the authenticated identity of the request, nil before Authenticate ran.
func Caller(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localsCaller).(*models.User)

	return user
}

// CallerName returns the username of the authenticated identity, empty if there is none.
func CallerName(c *fiber.Ctx) string {
	if user := Caller(c); user != nil {
		return user.Username
	}

	return ""
}

// Authenticate resolves the caller from basic credentials, a bearer token or
// the session cookie, in this order. Requests without any credentials fail.
func (m *Middleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := m.identify(c)
		if err != nil {
			return err
		}

		c.Locals(localsCaller, user)

		return c.Next()
	}
}

func (m *Middleware) identify(c *fiber.Ctx) (*models.User, error) {
	ctx := c.UserContext()
	header := c.Get(fiber.HeaderAuthorization)

	scheme, value, _ := strings.Cut(header, " ")

	switch {
	case strings.EqualFold(scheme, "basic"):
		username, plaintext, ok := parseBasic(value)
		if !ok {
			return nil, apperr.ErrAuthFailed
		}

		return m.service.Authenticate(ctx, Credentials{
			Username: username,
			Password: plaintext,
			OTP:      c.Get(HeaderOTP),
		})
	case strings.EqualFold(scheme, "bearer"):
		return m.bearer(ctx, value)
	case header != "":
		return nil, apperr.ErrAuthFailed
	}

	if m.sessions == nil {
		return nil, apperr.ErrAuthFailed
	}

	p, err := m.sessions.Principal(c)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return m.service.Identify(ctx, p)
}

// bearer accepts tokens of our own issuer, then ID tokens of the OIDC provider.
func (m *Middleware) bearer(ctx context.Context, raw string) (*models.User, error) {
	if m.tokens != nil {
		if p, err := m.tokens.Parse(raw); err == nil {
			return m.service.Identify(ctx, p)
		}
	}

	return m.service.AuthenticateIDToken(ctx, raw)
}

// Authorize lets the request pass if the caller may perform action on resource.
// target may be nil for actions without a target identity.
func (m *Middleware) Authorize(action Action, resource Resource, target TargetLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			targetUser *models.User
			err        error
		)

		if target != nil {
			targetUser, err = target(c)
			if err != nil && !errors.Is(err, apperr.ErrNotFound) {
				return err
			}
		}

		decision, err := m.service.Authorize(c.UserContext(), Caller(c), action, resource, targetUser)
		if err != nil {
			return err
		}

		if decision == Deny {
			return apperr.New(apperr.ErrDenied, "You don't have permission to "+string(action)+" this "+string(resource)+".", "")
		}

		return c.Next()
	}
}

// parseBasic decodes the value of a basic Authorization header.
func parseBasic(value string) (username, plaintext string, ok bool) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return "", "", false
	}

	return strings.Cut(string(raw), ":")
}
