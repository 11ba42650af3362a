package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gocinema/gocinema/internal/apperr"
	"github.com/gocinema/gocinema/internal/auth"
	"github.com/gocinema/gocinema/internal/config"
	"github.com/gocinema/gocinema/internal/db/controller/role"
	usersvc "github.com/gocinema/gocinema/internal/service/user"
)

// SeedRoles makes sure the default roles exist as system roles. Extra named
// roles are created as regular roles, existing ones are left alone.
func SeedRoles(ctx context.Context, roles *role.Controller, names ...string) error {
	if err := roles.Seed(ctx, auth.DefaultRoles()...); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	for _, name := range names {
		_, err := roles.Create(ctx, name, "", false)
		if errors.Is(err, role.ErrRoleExists) {
			continue
		}

		if err != nil {
			return fmt.Errorf("failed to seed roles: %w", err)
		}

		log.Info().Str("role", name).Msg("role created")
	}

	return nil
}

// SeedAdmin creates the configured admin account unless an identity with
// its username exists. The admin also holds the "user" role.
func (s *Services) SeedAdmin(ctx context.Context, cfg config.LocalAuth) error {
	if cfg.AdminUser == "" {
		return nil
	}

	_, err := s.Users.GetByUsername(ctx, cfg.AdminUser)
	if err == nil {
		return nil
	}

	if !errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	admin, err := s.Users.Register(ctx, usersvc.RegisterInput{
		Username: cfg.AdminUser,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin %s: %w", cfg.AdminUser, err)
	}

	if _, err = s.Users.GrantRole(ctx, admin.ID, auth.RoleAdmin); err != nil {
		return fmt.Errorf("failed to grant admin role: %w", err)
	}

	log.Warn().Str("user", admin.Username).Msg("created admin account, change its password")

	return nil
}
