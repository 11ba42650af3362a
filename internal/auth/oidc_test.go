package auth_test

import (
	"context"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocinema/gocinema/internal/apperr"
	"github.com/gocinema/gocinema/internal/auth"
	"github.com/gocinema/gocinema/internal/auth/oidctest"
	"github.com/gocinema/gocinema/internal/config"
	"github.com/gocinema/gocinema/internal/db/models"
)

func newOIDCFixture(t *testing.T) (*fixture, *oidctest.Server) {
	t.Helper()

	idp := oidctest.New(t, "gocinema")

	f := newFixture(t)

	provider, err := auth.NewOIDCProvider(context.Background(), config.OIDC{
		Enabled:     true,
		ProviderURL: idp.URL,
		ClientID:    idp.ClientID,
		RedirectURL: "http://localhost:8080/login/oidc/callback",
	}, f.users, f.service.Roles())
	require.NoError(t, err)

	f.service = auth.NewService(f.users, f.roles, f.hasher, auth.WithOIDC(provider))

	return f, idp
}

func TestNewOIDCProviderDisabled(t *testing.T) {
	_, err := auth.NewOIDCProvider(context.Background(), config.OIDC{}, nil, nil)
	assert.ErrorIs(t, err, auth.ErrOIDCDisabled)
}

func TestOIDCAuthenticate(t *testing.T) {
	ctx := context.Background()
	f, idp := newOIDCFixture(t)

	raw := idp.IDToken(t, "subject-1", map[string]any{"preferred_username": "carol", "email": "carol@idp.org"})

	carol, err := f.service.AuthenticateIDToken(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, "carol", carol.Username)
	assert.Equal(t, models.AuthSourceOIDC, carol.AuthSource)
	assert.Equal(t, []string{auth.RoleUser}, carol.RoleNames())

	// a second login finds the same identity and refreshes its email
	raw = idp.IDToken(t, "subject-1", map[string]any{"preferred_username": "carol", "email": "carol@new.org"})

	again, err := f.service.AuthenticateIDToken(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, carol.ID, again.ID)
	assert.Equal(t, "carol@new.org", again.Email)

	_, err = f.service.Authenticate(ctx, auth.Credentials{Username: "carol", Password: ""})
	require.ErrorIs(t, err, apperr.ErrAuthFailed, "OIDC identities have no local password")
}

func TestOIDCAuthenticateRejected(t *testing.T) {
	ctx := context.Background()
	f, idp := newOIDCFixture(t)

	f.register(t, "alice", "password1", auth.RoleUser)

	_, err := f.service.AuthenticateIDToken(ctx, idp.IDToken(t, "subject-2", map[string]any{"preferred_username": "dave"}))
	require.NoError(t, err)

	other := oidctest.New(t, "gocinema")

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"foreign issuer", other.IDToken(t, "subject-1", nil)},
		{"wrong audience", idp.IDToken(t, "subject-1", map[string]any{"aud": "someone-else"})},
		{"expired", idp.IDToken(t, "subject-1", map[string]any{"exp": time.Now().Add(-time.Hour).Unix()})},
		{"local identity", idp.IDToken(t, "subject-3", map[string]any{"preferred_username": "alice"})},
		{"other subject", idp.IDToken(t, "subject-4", map[string]any{"preferred_username": "dave"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.AuthenticateIDToken(ctx, tt.token)
			assert.ErrorIs(t, err, apperr.ErrAuthFailed)
		})
	}
}

func TestOIDCExchange(t *testing.T) {
	ctx := context.Background()
	f, idp := newOIDCFixture(t)

	provider := f.service.OIDC()
	require.NotNil(t, provider)

	authURL, err := url.Parse(provider.AuthCodeURL("state-1"))
	require.NoError(t, err)
	assert.Equal(t, "state-1", authURL.Query().Get("state"))
	assert.Equal(t, "gocinema", authURL.Query().Get("client_id"))

	code := idp.Code(idp.IDToken(t, "subject-5", map[string]any{"email": "erin@idp.org"}))

	erin, err := provider.Exchange(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "erin@idp.org", erin.Username)

	// codes are single use
	_, err = provider.Exchange(ctx, code)
	assert.ErrorIs(t, err, apperr.ErrAuthFailed)
}

func TestMiddlewareOIDCBearer(t *testing.T) {
	f, idp := newOIDCFixture(t)

	app, tokens := newApp(t, f)

	own, _, err := tokens.Issue(auth.Principal{ID: 999, Username: "ghost"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"id token", idp.IDToken(t, "subject-6", map[string]any{"preferred_username": "frank"}), fiber.StatusOK},
		{"own token of unknown identity", own, fiber.StatusUnauthorized},
		{"neither", "abc", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/film", nil)
			req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tt.token)

			resp, err := app.Test(req, -1)
			require.NoError(t, err)

			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
