package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/gocinema/gocinema/internal/apperr"
	"github.com/gocinema/gocinema/internal/auth/password"
	"github.com/gocinema/gocinema/internal/db/models"
)

// LocalProvider handles local database authentication.
type LocalProvider struct {
	users  IdentityStore
	hasher *password.Hasher

	dummyOnce sync.Once
	dummyHash string
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(users IdentityStore, hasher *password.Hasher) *LocalProvider {
	return &LocalProvider{
		users:  users,
		hasher: hasher,
	}
}

// Authenticate authenticates a user against the local database.
// Unknown users and wrong passwords both yield apperr.ErrAuthFailed.
func (p *LocalProvider) Authenticate(ctx context.Context, username, plaintext string) (*models.User, error) {
	user, err := p.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err //nolint:wrapcheck
	}

	if err != nil {
		user = nil
	}

	return p.verify(ctx, user, plaintext)
}

// verify checks plaintext against the stored hash of user.
// A nil user is verified against a dummy hash so both failure paths cost the same.
func (p *LocalProvider) verify(ctx context.Context, user *models.User, plaintext string) (*models.User, error) {
	if user == nil || user.External() || user.Password == "" {
		p.hasher.Verify(plaintext, p.dummy())

		return nil, apperr.ErrAuthFailed
	}

	if !p.hasher.Verify(plaintext, user.Password) {
		return nil, apperr.ErrAuthFailed
	}

	if p.hasher.NeedsRehash(user.Password) {
		p.rehash(ctx, user, plaintext)
	}

	return user, nil
}

// rehash upgrades a legacy hash. A failed upgrade does not fail the login.
func (p *LocalProvider) rehash(ctx context.Context, user *models.User, plaintext string) {
	hashed, err := p.hasher.Hash(plaintext)
	if err != nil {
		log.Warn().Err(err).Str("user", user.Username).Msg("failed to rehash legacy password")

		return
	}

	user.Password = hashed

	if err = p.users.Save(ctx, user); err != nil {
		log.Warn().Err(err).Str("user", user.Username).Msg("failed to store upgraded password hash")

		return
	}

	log.Info().Str("user", user.Username).Msg("upgraded legacy password hash")
}

// ChangePassword changes a user's password.
// The old password is only checked when requireOld is set, admins reset without it.
func (p *LocalProvider) ChangePassword(ctx context.Context, user *models.User, oldPassword, newPassword string, requireOld bool) error {
	if user.External() {
		return ErrNotLocalUser
	}

	if requireOld && !p.hasher.Verify(oldPassword, user.Password) {
		return ErrInvalidOldPassword
	}

	hashed, err := p.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Validation(err.Error(), "password")
	}

	user.Password = hashed

	return p.users.Save(ctx, user) //nolint:wrapcheck
}

func (p *LocalProvider) dummy() string {
	p.dummyOnce.Do(func() {
		hashed, err := p.hasher.Hash("gocinema-dummy-password")
		if err != nil {
			log.Error().Err(err).Msg("failed to create dummy hash")
		}

		p.dummyHash = hashed
	})

	return p.dummyHash
}
