// Package password implements one-way password hashing and verification.
//
// New hashes are produced with Argon2id. Hashes created by the previous
// system (passlib pbkdf2-sha256) are still accepted by Verify and reported by
// NeedsRehash so they can be upgraded after the next successful login.
package password

import (
	"errors"
	"strings"

	"github.com/alexedwards/argon2id"
)

// ErrEmptyPassword is returned when an empty plaintext is passed to Hash.
var ErrEmptyPassword = errors.New("password can not be empty")

// Hasher hashes and verifies passwords with Argon2id.
type Hasher struct {
	params *argon2id.Params
}

// New creates a Hasher using the given Argon2id parameters.
// Nil params select argon2id.DefaultParams.
func New(params *argon2id.Params) *Hasher {
	if params == nil {
		params = argon2id.DefaultParams
	}

	return &Hasher{params: params}
}

// Hash returns a salted Argon2id hash of plaintext in PHC string format.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}

	return argon2id.CreateHash(plaintext, h.params) //nolint:wrapcheck
}

// Verify reports whether plaintext is the password that was hashed into hashed.
// The digest comparison is constant time. Malformed hashes never verify.
func (h *Hasher) Verify(plaintext, hashed string) bool {
	switch {
	case strings.HasPrefix(hashed, argon2idPrefix):
		match, err := argon2id.ComparePasswordAndHash(plaintext, hashed)
		if err != nil {
			return false
		}

		return match
	case strings.HasPrefix(hashed, pbkdf2Prefix):
		return verifyPBKDF2(plaintext, hashed)
	default:
		return false
	}
}

// NeedsRehash reports whether hashed was produced by a legacy scheme.
func (h *Hasher) NeedsRehash(hashed string) bool {
	return !strings.HasPrefix(hashed, argon2idPrefix)
}

const argon2idPrefix = "$argon2id$"
