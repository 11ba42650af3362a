// Package user provides persistence operations for identities.
package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gocinema/gocinema/internal/apperr"
	"github.com/gocinema/gocinema/internal/db/models"
)

const (
	whereUsername = "username = ?"
	whereEmail    = "email = ?"
	whereNotID    = "id <> ?"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = fmt.Errorf("user %w", apperr.ErrNotFound)
	// ErrUsernameExists is returned when the username is taken by another user.
	ErrUsernameExists = fmt.Errorf("username %w", apperr.ErrConflict)
	// ErrEmailExists is returned when the email is taken by another user.
	ErrEmailExists = fmt.Errorf("email %w", apperr.ErrConflict)
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Controller stores users with gorm.
type Controller struct {
	db *gorm.DB
}

// New creates a user controller.
func New(db *gorm.DB) (*Controller, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return &Controller{db: db}, nil
}

// FindByID returns the user with its roles.
func (c *Controller) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	return c.first(ctx, c.db.WithContext(ctx).Where("id = ?", id))
}

// FindByUsername returns the user with its roles.
func (c *Controller) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return c.first(ctx, c.db.WithContext(ctx).Where(whereUsername, username))
}

// FindByEmail returns the user with its roles.
func (c *Controller) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return c.first(ctx, c.db.WithContext(ctx).Where(whereEmail, email))
}

func (c *Controller) first(_ context.Context, tx *gorm.DB) (*models.User, error) {
	var user models.User

	err := tx.Preload("Roles").First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// List returns a page of users ordered by id and the total count.
func (c *Controller) List(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
	)

	if err := c.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	if err := c.db.WithContext(ctx).Preload("Roles").Order("id ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

// Create persists a new user together with its roles.
// A taken username or email yields a conflict and nothing is written.
func (c *Controller) Create(ctx context.Context, user *models.User) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, user); err != nil {
			return err
		}

		if err := tx.Create(user).Error; err != nil {
			return translate("create", err)
		}

		return nil
	})
}

// Save updates the scalar columns of an existing user. Roles are left untouched.
// Keeping the current username or email is not a conflict.
func (c *Controller) Save(ctx context.Context, user *models.User) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx.Where(whereNotID, user.ID), user); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(user).Error; err != nil {
			return translate("update", err)
		}

		return nil
	})
}

// DeleteByID removes the user and its role associations and returns the removed record.
func (c *Controller) DeleteByID(ctx context.Context, id uint64) (*models.User, error) {
	user, err := c.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errClear := tx.Model(user).Association("Roles").Clear(); errClear != nil {
			return fmt.Errorf("failed to remove role associations: %w", errClear)
		}

		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete user: %w", res.Error)
		}

		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// AddRole attaches a role to the user. Attaching a held role is a no-op.
func (c *Controller) AddRole(ctx context.Context, user *models.User, role *models.Role) error {
	if user.HasRole(role.Name) {
		return nil
	}

	if err := c.db.WithContext(ctx).Model(user).Association("Roles").Append(role); err != nil {
		return fmt.Errorf("failed to add role %s: %w", role.Name, err)
	}

	return nil
}

// RemoveRole detaches a role from the user.
func (c *Controller) RemoveRole(ctx context.Context, user *models.User, role *models.Role) error {
	if err := c.db.WithContext(ctx).Model(user).Association("Roles").Delete(role); err != nil {
		return fmt.Errorf("failed to remove role %s: %w", role.Name, err)
	}

	return nil
}

// checkUnique looks for other users holding the username or email.
// scope may already restrict the search, e.g. to exclude the user itself.
func checkUnique(scope *gorm.DB, user *models.User) error {
	var count int64

	if err := scope.Session(&gorm.Session{}).Model(&models.User{}).
		Where(whereUsername, user.Username).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}

	if count > 0 {
		return ErrUsernameExists
	}

	if err := scope.Session(&gorm.Session{}).Model(&models.User{}).
		Where(whereEmail, user.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}

	if count > 0 {
		return ErrEmailExists
	}

	return nil
}

func translate(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("failed to %s user: %w", op, apperr.ErrConflict)
	}

	return fmt.Errorf("failed to %s user: %w", op, err)
}
