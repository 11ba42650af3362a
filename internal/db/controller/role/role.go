// Package role provides persistence operations for roles.
package role

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gocinema/gocinema/internal/apperr"
	"github.com/gocinema/gocinema/internal/db/models"
)

var (
	// ErrRoleNotFound is returned when no role matches the lookup.
	ErrRoleNotFound = fmt.Errorf("role %w", apperr.ErrNotFound)
	// ErrRoleExists is returned when a role with the same name already exists.
	ErrRoleExists = fmt.Errorf("role %w", apperr.ErrConflict)
	// ErrRoleNameEmpty is returned when a role is created without a name.
	ErrRoleNameEmpty = errors.New("role name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Controller stores roles with gorm.
type Controller struct {
	db *gorm.DB
}

// New creates a role controller.
func New(db *gorm.DB) (*Controller, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return &Controller{db: db}, nil
}

// FindByName returns the role with the given name.
func (c *Controller) FindByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role

	err := c.db.WithContext(ctx).Where(models.WhereNameIs, name).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query role: %w", err)
	}

	return &role, nil
}

// FindByID returns the role with the given id.
func (c *Controller) FindByID(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role

	err := c.db.WithContext(ctx).First(&role, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query role: %w", err)
	}

	return &role, nil
}

// List returns all roles ordered by name.
func (c *Controller) List(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role

	if err := c.db.WithContext(ctx).Order("name ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	return roles, nil
}

// Create adds a new role.
func (c *Controller) Create(ctx context.Context, name, description string, system bool) (*models.Role, error) {
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	if _, err := c.FindByName(ctx, name); err == nil {
		return nil, ErrRoleExists
	} else if !errors.Is(err, ErrRoleNotFound) {
		return nil, err
	}

	role := &models.Role{Name: name, Description: description, IsSystem: system}

	if err := c.db.WithContext(ctx).Create(role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRoleExists
		}

		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	return role, nil
}

// Seed makes sure the given roles exist as system roles.
// Existing roles are kept as they are.
func (c *Controller) Seed(ctx context.Context, roles ...models.Role) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range roles {
			var role models.Role

			err := tx.Where(models.Role{Name: r.Name}).
				Attrs(models.Role{Description: r.Description, IsSystem: true}).
				FirstOrCreate(&role).Error
			if err != nil {
				return fmt.Errorf("failed to seed role %s: %w", r.Name, err)
			}
		}

		return nil
	})
}
