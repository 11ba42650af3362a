package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocinema/gocinema/internal/apperr"
	"github.com/gocinema/gocinema/internal/auth"
)

func TestNewTokenIssuerEmptySecret(t *testing.T) {
	_, err := auth.NewTokenIssuer("", "gocinema", time.Hour)
	assert.ErrorIs(t, err, auth.ErrTokenSecretEmpty)
}

func TestTokenRoundTrip(t *testing.T) {
	issuer, err := auth.NewTokenIssuer("secret", "gocinema", time.Hour)
	require.NoError(t, err)

	token, expires, err := issuer.Issue(auth.Principal{ID: 7, Username: "alice"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	p, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, auth.Principal{ID: 7, Username: "alice"}, p)
}

func TestTokenRejected(t *testing.T) {
	issuer, err := auth.NewTokenIssuer("secret", "gocinema", time.Hour)
	require.NoError(t, err)

	token, _, err := issuer.Issue(auth.Principal{ID: 7, Username: "alice"})
	require.NoError(t, err)

	otherSecret, err := auth.NewTokenIssuer("other", "gocinema", time.Hour)
	require.NoError(t, err)

	otherIssuer, err := auth.NewTokenIssuer("secret", "someone-else", time.Hour)
	require.NoError(t, err)

	expired, err := auth.NewTokenIssuer("secret", "gocinema", -time.Minute)
	require.NoError(t, err)

	expiredToken, _, err := expired.Issue(auth.Principal{ID: 7, Username: "alice"})
	require.NoError(t, err)

	anonymous, _, err := issuer.Issue(auth.Principal{ID: 7})
	require.NoError(t, err)

	tests := []struct {
		name   string
		issuer *auth.TokenIssuer
		token  string
	}{
		{"no username", issuer, anonymous},
		{"garbage", issuer, "not-a-token"},
		{"tampered", issuer, token + "x"},
		{"wrong secret", otherSecret, token},
		{"wrong issuer", otherIssuer, token},
		{"expired", issuer, expiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.issuer.Parse(tt.token)
			require.ErrorIs(t, err, auth.ErrInvalidToken)
			assert.ErrorIs(t, err, apperr.ErrAuthFailed)
		})
	}
}
