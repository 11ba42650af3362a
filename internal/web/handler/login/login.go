// Package login provides the HTTP handlers that exchange credentials for a
// session cookie or a bearer token.
package login

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/gocinema/gocinema/internal/auth"
	"github.com/gocinema/gocinema/internal/db/models"
	"github.com/gocinema/gocinema/internal/web/handler"
	"github.com/gocinema/gocinema/internal/web/session"
)

const (
	// Path is the path of the login route.
	Path = handler.RootPath + "login"

	// TokenPath is the path of the bearer token route.
	TokenPath = handler.RootPath + "auth/token"
)

// Input is the body of a login or token request.
type Input struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	OTP      string `json:"otp"      form:"otp"`
}

// TokenResponse is the body returned by the token route.
type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service is the login handler service.
type Service struct {
	auth     *auth.Service
	sessions *session.Store
	tokens   *auth.TokenIssuer
}

// New creates the login handler. A nil tokens disables the token route.
func New(authService *auth.Service, sessions *session.Store, tokens *auth.TokenIssuer) *Service {
	return &Service{auth: authService, sessions: sessions, tokens: tokens}
}

// Init registers the routes.
func (s *Service) Init(app *fiber.App) error {
	if app == nil || s.auth == nil {
		return handler.ErrDependencyNil
	}

	if s.sessions == nil {
		return ErrSessionStoreNil
	}

	app.Post(Path, s.Login)

	if s.tokens != nil {
		app.Post(TokenPath, s.Token)
	}

	return nil
}

// Login verifies the credentials and starts a session.
func (s *Service) Login(c *fiber.Ctx) error {
	user, err := s.authenticate(c)
	if err != nil {
		return err
	}

	if err = s.sessions.Login(c, auth.PrincipalOf(user)); err != nil {
		return err //nolint:wrapcheck
	}

	log.Debug().Str("user", user.Username).Msg("session started")

	return c.JSON(fiber.Map{"username": user.Username})
}

// Token verifies the credentials and issues a bearer token.
func (s *Service) Token(c *fiber.Ctx) error {
	if s.tokens == nil {
		return ErrTokensDisabled
	}

	user, err := s.authenticate(c)
	if err != nil {
		return err
	}

	token, expiresAt, err := s.tokens.Issue(auth.PrincipalOf(user))
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.Status(fiber.StatusCreated).JSON(TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
	})
}

func (s *Service) authenticate(c *fiber.Ctx) (*models.User, error) {
	var in Input
	if err := handler.Bind(c, &in); err != nil {
		return nil, err //nolint:wrapcheck
	}

	user, err := s.auth.Authenticate(c.UserContext(), auth.Credentials{
		Username: in.Username,
		Password: in.Password,
		OTP:      in.OTP,
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return user, nil
}
