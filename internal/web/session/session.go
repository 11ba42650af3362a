// Package session keeps logged in principals in fiber sessions.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/gocinema/gocinema/internal/auth"
	"github.com/gocinema/gocinema/internal/config"
)

const (
	keyID       = "uid"
	keyUsername = "username"
)

// ErrStoreNil is returned when the session store has not been created.
var ErrStoreNil = errors.New("session store is nil")

// Store wraps the fiber session store.
type Store struct {
	store *session.Store
}

// New creates a session store on top of storage.
// A nil storage keeps sessions in process memory.
func New(cfg config.Session, storage fiber.Storage, secureCookie bool) *Store {
	return &Store{
		store: session.New(session.Config{
			Storage:        storage,
			Expiration:     cfg.ExpiryTime,
			KeyLookup:      "cookie:" + cfg.CookieName,
			KeyGenerator:   GenerateSessionID,
			CookieHTTPOnly: true,
			CookieSecure:   secureCookie,
			CookieSameSite: fiber.CookieSameSiteLaxMode,
		}),
	}
}

// Login starts a fresh session for p and sets the cookie.
func (s *Store) Login(c *fiber.Ctx, p auth.Principal) error {
	sess, err := s.get(c)
	if err != nil {
		return err
	}

	// a new id on login prevents session fixation
	if err = sess.Regenerate(); err != nil {
		return fmt.Errorf("failed to regenerate session: %w", err)
	}

	sess.Set(keyID, p.ID)
	sess.Set(keyUsername, p.Username)

	if err = sess.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Logout destroys the session of the request.
func (s *Store) Logout(c *fiber.Ctx) error {
	sess, err := s.get(c)
	if err != nil {
		return err
	}

	if err = sess.Destroy(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}

	return nil
}

// Principal returns the principal stored in the session of the request.
// It is empty when the request has no valid session.
func (s *Store) Principal(c *fiber.Ctx) (auth.Principal, error) {
	sess, err := s.get(c)
	if err != nil {
		return auth.Principal{}, err
	}

	if sess.Fresh() {
		return auth.Principal{}, nil
	}

	id, _ := sess.Get(keyID).(uint64)
	username, _ := sess.Get(keyUsername).(string)

	return auth.Principal{ID: id, Username: username}, nil
}

func (s *Store) get(c *fiber.Ctx) (*session.Session, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNil
	}

	sess, err := s.store.Get(c)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	return sess, nil
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() string {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	// crypto/rand.Read never returns an error
	_, _ = rand.Read(b)

	return hex.EncodeToString(b)
}
