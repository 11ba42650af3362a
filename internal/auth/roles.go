package auth

import (
	"context"

	"github.com/gocinema/gocinema/internal/db/models"
)

const (
	// RoleUser is held by every registered identity.
	RoleUser = "user"
	// RoleAdmin grants the administrative actions.
	RoleAdmin = "admin"
)

// DefaultRoles are seeded at startup.
func DefaultRoles() []models.Role {
	return []models.Role{
		{Name: RoleUser, Description: "Registered user, may read films and manage the own account"},
		{Name: RoleAdmin, Description: "Administrator, may manage films, users and roles"},
	}
}

// Registry resolves named roles. Roles are only looked up here, never created.
type Registry struct {
	store RoleStore
}

// NewRegistry creates a Registry over the role store.
func NewRegistry(store RoleStore) *Registry {
	return &Registry{store: store}
}

// GetByName returns the role with the given name.
func (r *Registry) GetByName(ctx context.Context, name string) (*models.Role, error) {
	return r.store.FindByName(ctx, name) //nolint:wrapcheck
}

// GetByID returns the role with the given id.
func (r *Registry) GetByID(ctx context.Context, id uint) (*models.Role, error) {
	return r.store.FindByID(ctx, id) //nolint:wrapcheck
}

// List returns all roles.
func (r *Registry) List(ctx context.Context) ([]models.Role, error) {
	return r.store.List(ctx) //nolint:wrapcheck
}
