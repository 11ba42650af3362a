// Package film provides persistence operations for films.
package film

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gocinema/gocinema/internal/apperr"
	"github.com/gocinema/gocinema/internal/db/models"
)

var (
	// ErrFilmNotFound is returned when no film matches the lookup.
	ErrFilmNotFound = fmt.Errorf("film %w", apperr.ErrNotFound)
	// ErrFilmExists is returned when another film already uses the name.
	ErrFilmExists = fmt.Errorf("film %w", apperr.ErrConflict)
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Controller stores films with gorm.
type Controller struct {
	db *gorm.DB
}

// New creates a film controller.
func New(db *gorm.DB) (*Controller, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return &Controller{db: db}, nil
}

// FindByID returns the film with the given id.
func (c *Controller) FindByID(ctx context.Context, id uint64) (*models.Film, error) {
	var film models.Film

	err := c.db.WithContext(ctx).First(&film, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFilmNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query film: %w", err)
	}

	return &film, nil
}

// List returns a page of films ordered by id and the total count.
func (c *Controller) List(ctx context.Context, limit, offset int) ([]models.Film, int64, error) {
	var (
		films []models.Film
		total int64
	)

	if err := c.db.WithContext(ctx).Model(&models.Film{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count films: %w", err)
	}

	if err := c.db.WithContext(ctx).Order("id ASC").Limit(limit).Offset(offset).Find(&films).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list films: %w", err)
	}

	return films, total, nil
}

// Create persists a new film. A taken name yields ErrFilmExists.
func (c *Controller) Create(ctx context.Context, film *models.Film) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := nameTaken(tx, film); err != nil {
			return err
		}

		if err := tx.Create(film).Error; err != nil {
			return translate("create", err)
		}

		return nil
	})
}

// Save updates an existing film. Keeping the current name is not a conflict.
func (c *Controller) Save(ctx context.Context, film *models.Film) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := nameTaken(tx.Where("id <> ?", film.ID), film); err != nil {
			return err
		}

		if err := tx.Save(film).Error; err != nil {
			return translate("update", err)
		}

		return nil
	})
}

// DeleteByID removes the film and returns the removed record.
func (c *Controller) DeleteByID(ctx context.Context, id uint64) (*models.Film, error) {
	film, err := c.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	res := c.db.WithContext(ctx).Delete(&models.Film{}, id)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to delete film: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return nil, ErrFilmNotFound
	}

	return film, nil
}

func nameTaken(scope *gorm.DB, film *models.Film) error {
	var count int64

	if err := scope.Model(&models.Film{}).Where(models.WhereNameIs, film.Name).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check film name: %w", err)
	}

	if count > 0 {
		return ErrFilmExists
	}

	return nil
}

func translate(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("failed to %s film: %w", op, ErrFilmExists)
	}

	return fmt.Errorf("failed to %s film: %w", op, err)
}
