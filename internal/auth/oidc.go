package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/gocinema/gocinema/internal/apperr"
	"github.com/gocinema/gocinema/internal/config"
	"github.com/gocinema/gocinema/internal/db/models"
)

// OIDCProvider handles OIDC authentication. Verified subjects are mirrored as
// identities with the oidc auth source.
type OIDCProvider struct {
	config   config.OIDC
	host     string
	verifier *oidc.IDTokenVerifier
	oauth2   oauth2.Config
	users    IdentityStore
	roles    *Registry
}

// NewOIDCProvider discovers the provider behind cfg.ProviderURL.
func NewOIDCProvider(ctx context.Context, cfg config.OIDC, users IdentityStore, roles *Registry) (*OIDCProvider, error) {
	if !cfg.Enabled {
		return nil, ErrOIDCDisabled
	}

	if cfg.DefaultRole == "" {
		cfg.DefaultRole = RoleUser
	}

	issuer, err := url.Parse(cfg.ProviderURL)
	if err != nil {
		return nil, fmt.Errorf("invalid OIDC provider url: %w", err)
	}

	provider, err := oidc.NewProvider(ctx, cfg.ProviderURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	return &OIDCProvider{
		config:   cfg,
		host:     issuer.Hostname(),
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth2: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       scopes,
		},
		users: users,
		roles: roles,
	}, nil
}

// GenerateStateToken generates a random state token for CSRF protection.
func GenerateStateToken() string {
	return rand.Text()
}

// AuthCodeURL returns the authorization URL carrying state.
func (p *OIDCProvider) AuthCodeURL(state string) string {
	return p.oauth2.AuthCodeURL(state)
}

// Exchange redeems an authorization code and returns the identity of its ID token.
func (p *OIDCProvider) Exchange(ctx context.Context, code string) (*models.User, error) {
	token, err := p.oauth2.Exchange(ctx, code)
	if err != nil {
		log.Warn().Err(err).Msg("OIDC code exchange failed")

		return nil, apperr.ErrAuthFailed
	}

	raw, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, ErrNoIDToken
	}

	return p.Authenticate(ctx, raw)
}

// Authenticate verifies a raw ID token and returns the identity of its subject.
func (p *OIDCProvider) Authenticate(ctx context.Context, raw string) (*models.User, error) {
	idToken, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		log.Debug().Err(err).Msg("OIDC token rejected")

		return nil, ErrInvalidToken
	}

	var claims struct {
		Email             string `json:"email"`
		PreferredUsername string `json:"preferred_username"`
	}

	if err = idToken.Claims(&claims); err != nil {
		return nil, ErrInvalidToken
	}

	username := claims.PreferredUsername
	if username == "" {
		username = claims.Email
	}

	if username == "" {
		username = idToken.Subject
	}

	return p.upsertOIDCUser(ctx, idToken.Subject, username, claims.Email)
}

// upsertOIDCUser creates or refreshes the identity of subject. An identity of
// another source or another subject holding the username is never taken over.
func (p *OIDCProvider) upsertOIDCUser(ctx context.Context, subject, username, email string) (*models.User, error) {
	if email == "" {
		email = username + "@" + p.host
	}

	user, err := p.users.FindByUsername(ctx, username)

	switch {
	case errors.Is(err, apperr.ErrNotFound):
		role, errRole := p.roles.GetByName(ctx, p.config.DefaultRole)
		if errRole != nil {
			return nil, fmt.Errorf("failed to resolve default role: %w", errRole)
		}

		user = &models.User{
			Username:   username,
			Email:      email,
			AuthSource: models.AuthSourceOIDC,
			ExternalID: subject,
			Roles:      []models.Role{*role},
		}

		if err = p.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		log.Info().Str("user", username).Str("subject", subject).Msg("created identity for OIDC user")

		return user, nil
	case err != nil:
		return nil, fmt.Errorf("failed to query user: %w", err)
	case user.AuthSource != models.AuthSourceOIDC || user.ExternalID != subject:
		log.Warn().Str("user", username).Str("subject", subject).Msg("OIDC login for a foreign identity refused")

		return nil, ErrOIDCIdentityTaken
	}

	if user.Email == email {
		return user, nil
	}

	user.Email = email

	if err = p.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}
