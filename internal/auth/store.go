package auth

import (
	"context"

	"github.com/gocinema/gocinema/internal/db/models"
)

// IdentityStore is the persistence the auth package needs for identities.
// Lookups of unknown identities return an error wrapping apperr.ErrNotFound.
type IdentityStore interface {
	FindByID(ctx context.Context, id uint64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
}

// RoleStore is the persistence the role registry reads from.
type RoleStore interface {
	FindByName(ctx context.Context, name string) (*models.Role, error)
	FindByID(ctx context.Context, id uint) (*models.Role, error)
	List(ctx context.Context) ([]models.Role, error)
}

// Authenticator verifies a username and password against one credential source.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}
