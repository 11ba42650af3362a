// Package oidctest runs an OpenID Connect provider for tests. It serves
// discovery, the key set and a token endpoint that redeems issued codes.
package oidctest

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const keyID = "oidctest"

// Server is a running test provider.
type Server struct {
	URL      string
	ClientID string

	key   *rsa.PrivateKey
	mu    sync.Mutex
	codes map[string]string
}

// New starts a provider issuing ID tokens for clientID. It is stopped with the test.
func New(t *testing.T, clientID string) *Server {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048) //nolint:mnd
	require.NoError(t, err)

	s := &Server{ClientID: clientID, key: key, codes: make(map[string]string)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", s.discovery)
	mux.HandleFunc("GET /keys", s.keys)
	mux.HandleFunc("POST /token", s.token)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	s.URL = srv.URL

	return s
}

// IDToken signs an ID token for subject with the extra claims.
func (s *Server) IDToken(t *testing.T, subject string, extra map[string]any) string {
	t.Helper()

	now := time.Now()

	claims := jwt.MapClaims{
		"iss": s.URL,
		"aud": s.ClientID,
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}

	for k, v := range extra {
		claims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = keyID

	signed, err := token.SignedString(s.key)
	require.NoError(t, err)

	return signed
}

// Code registers an authorization code the token endpoint redeems for idToken.
func (s *Server) Code(idToken string) string {
	code := rand.Text()

	s.mu.Lock()
	s.codes[code] = idToken
	s.mu.Unlock()

	return code
}

func (s *Server) discovery(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                                s.URL,
		"authorization_endpoint":                s.URL + "/authorize",
		"token_endpoint":                        s.URL + "/token",
		"jwks_uri":                              s.URL + "/keys",
		"id_token_signing_alg_values_supported": []string{"RS256"},
	})
}

func (s *Server) keys(w http.ResponseWriter, _ *http.Request) {
	pub := s.key.PublicKey

	writeJSON(w, http.StatusOK, map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"alg": "RS256",
			"use": "sig",
			"kid": keyID,
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	})
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})

		return
	}

	s.mu.Lock()
	idToken, ok := s.codes[r.PostForm.Get("code")]
	delete(s.codes, r.PostForm.Get("code"))
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": "access-" + r.PostForm.Get("code"),
		"token_type":   "Bearer",
		"expires_in":   3600, //nolint:mnd
		"id_token":     idToken,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
