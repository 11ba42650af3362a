package auth

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/gocinema/gocinema/internal/apperr"
	"github.com/gocinema/gocinema/internal/auth/password"
	"github.com/gocinema/gocinema/internal/db/models"
)

var (
	authentications = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "auth_authentications_total",
		Help: "Number of authentication attempts, differentiated by result.",
	}, []string{"result"})

	decisions = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "auth_decisions_total",
		Help: "Number of authorization decisions, differentiated by action, resource and decision.",
	}, []string{"action", "resource", "decision"})
)

// Credentials are the secrets a caller presents to log in.
type Credentials struct {
	Username string
	Password string
	// OTP is the current TOTP code, only checked for users with a second factor.
	OTP string
}

// Service provides authentication and authorization functionality.
type Service struct {
	users     IdentityStore
	roles     *Registry
	local     *LocalProvider
	ldap      Authenticator
	oidc      *OIDCProvider
	otpIssuer string
}

// Option configures optional parts of the Service.
type Option func(*Service)

// WithLDAP routes directory users, and unknown usernames, to the given authenticator.
func WithLDAP(ldap Authenticator) Option {
	return func(s *Service) {
		s.ldap = ldap
	}
}

// WithOIDC accepts ID tokens of the given provider as bearer credentials.
func WithOIDC(provider *OIDCProvider) Option {
	return func(s *Service) {
		s.oidc = provider
	}
}

// WithOTPIssuer sets the issuer shown in authenticator apps.
func WithOTPIssuer(issuer string) Option {
	return func(s *Service) {
		s.otpIssuer = issuer
	}
}

// NewService creates a new auth service.
func NewService(users IdentityStore, roles RoleStore, hasher *password.Hasher, opts ...Option) *Service {
	s := &Service{
		users:     users,
		roles:     NewRegistry(roles),
		local:     NewLocalProvider(users, hasher),
		otpIssuer: "GoCinema",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Roles returns the role registry.
func (s *Service) Roles() *Registry {
	return s.roles
}

// OIDC returns the OIDC provider, nil when OIDC is disabled.
func (s *Service) OIDC() *OIDCProvider {
	return s.oidc
}

// Local returns the local password provider.
func (s *Service) Local() *LocalProvider {
	return s.local
}

// Authenticate verifies the credentials and returns the identity.
// Unknown usernames and wrong passwords are indistinguishable, both return apperr.ErrAuthFailed.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (*models.User, error) {
	user, err := s.authenticatePassword(ctx, creds.Username, creds.Password)
	if err != nil {
		authentications.WithLabelValues("failed").Inc()

		return nil, err
	}

	if user.OTPEnabled() && !validateOTP(creds.OTP, user.OTPSecret) {
		authentications.WithLabelValues("otp_failed").Inc()

		return nil, ErrOTPInvalid
	}

	authentications.WithLabelValues("success").Inc()

	return user, nil
}

func (s *Service) authenticatePassword(ctx context.Context, username, plaintext string) (*models.User, error) {
	if username == "" {
		return s.local.verify(ctx, nil, plaintext)
	}

	user, err := s.users.FindByUsername(ctx, username)

	switch {
	case err == nil && user.AuthSource == models.AuthSourceLDAP:
		return s.authenticateLDAP(ctx, username, plaintext)
	case errors.Is(err, apperr.ErrNotFound) && s.ldap != nil:
		return s.authenticateLDAP(ctx, username, plaintext)
	case errors.Is(err, apperr.ErrNotFound):
		return s.local.verify(ctx, nil, plaintext)
	case err != nil:
		return nil, err //nolint:wrapcheck
	}

	return s.local.verify(ctx, user, plaintext)
}

func (s *Service) authenticateLDAP(ctx context.Context, username, plaintext string) (*models.User, error) {
	if s.ldap == nil {
		return nil, apperr.ErrAuthFailed
	}

	return s.ldap.Authenticate(ctx, username, plaintext) //nolint:wrapcheck
}

// AuthenticateIDToken verifies an ID token of the OIDC provider and returns its identity.
// The second factor is left to the provider.
func (s *Service) AuthenticateIDToken(ctx context.Context, raw string) (*models.User, error) {
	if s.oidc == nil {
		return nil, ErrInvalidToken
	}

	user, err := s.oidc.Authenticate(ctx, raw)
	if err != nil {
		authentications.WithLabelValues("failed").Inc()

		return nil, err
	}

	authentications.WithLabelValues("success").Inc()

	return user, nil
}

// Identify re-reads the identity behind a session or token by its id.
// An identity deleted or renamed in the meantime fails authentication.
func (s *Service) Identify(ctx context.Context, p Principal) (*models.User, error) {
	if p.Empty() {
		return nil, apperr.ErrAuthFailed
	}

	user, err := s.users.FindByID(ctx, p.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrAuthFailed
	}

	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if user.Username != p.Username {
		return nil, apperr.ErrAuthFailed
	}

	return user, nil
}

// Authorize decides whether caller may perform action on resource.
// The caller's roles are read from the store on every call, a caller that no
// longer exists is denied. target is the identity acted on, nil if there is none
// or it does not exist.
func (s *Service) Authorize(
	ctx context.Context,
	caller *models.User,
	action Action,
	resource Resource,
	target *models.User,
) (Decision, error) {
	decision, err := s.authorize(ctx, caller, action, resource, target)

	decisions.WithLabelValues(string(action), string(resource), decision.String()).Inc()

	l := log.Debug().Str("action", string(action)).Str("resource", string(resource)).Stringer("decision", decision)
	if caller != nil {
		l = l.Str("caller", caller.Username)
	}

	if target != nil {
		l = l.Uint64("target", target.ID)
	}

	l.Msg("authorization decision")

	return decision, err
}

func (s *Service) authorize(
	ctx context.Context,
	caller *models.User,
	action Action,
	resource Resource,
	target *models.User,
) (Decision, error) {
	if caller == nil {
		return Deny, nil
	}

	current, err := s.users.FindByID(ctx, caller.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return Deny, nil
	}

	if err != nil {
		return Deny, err //nolint:wrapcheck
	}

	return decide(current, action, resource, target), nil
}
