package auth_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocinema/gocinema/internal/apperr"
	"github.com/gocinema/gocinema/internal/auth"
	"github.com/gocinema/gocinema/internal/config"
)

func TestNewLDAPProviderDisabled(t *testing.T) {
	_, err := auth.NewLDAPProvider(config.LDAP{}, nil, nil)
	assert.ErrorIs(t, err, auth.ErrLDAPDisabled)
}

// closedPort returns a local port nothing listens on.
func closedPort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	return port
}

func TestLDAPProviderUnreachable(t *testing.T) {
	f := newFixture(t)

	provider, err := auth.NewLDAPProvider(config.LDAP{
		Enabled: true,
		Host:    "127.0.0.1",
		Port:    closedPort(t),
		BaseDN:  "dc=example,dc=org",
		Timeout: 1,
	}, nil, f.service.Roles())
	require.NoError(t, err)

	require.Error(t, provider.TestConnection())

	_, err = provider.Authenticate(context.Background(), "alice", "password1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrAuthFailed)

	// empty passwords never reach the directory
	_, err = provider.Authenticate(context.Background(), "alice", "")
	assert.ErrorIs(t, err, apperr.ErrAuthFailed)
}

func TestServiceRoutesUnknownUsersToLDAP(t *testing.T) {
	f := newFixture(t)

	provider, err := auth.NewLDAPProvider(config.LDAP{
		Enabled: true,
		Host:    "127.0.0.1",
		Port:    closedPort(t),
		Timeout: 1,
	}, f.users, f.service.Roles())
	require.NoError(t, err)

	withLDAP := newFixture(t, auth.WithLDAP(provider))
	withLDAP.register(t, "alice", "password1", auth.RoleUser)

	// local identities never touch the directory
	_, err = withLDAP.service.Authenticate(context.Background(), auth.Credentials{Username: "alice", Password: "password1"})
	require.NoError(t, err)

	// unknown ones do, and the directory is down
	_, err = withLDAP.service.Authenticate(context.Background(), auth.Credentials{Username: "dave", Password: "password1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrAuthFailed)
}
