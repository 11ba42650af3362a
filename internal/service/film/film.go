// Package film implements the film catalog.
package film

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gocinema/gocinema/internal/apperr"
	"github.com/gocinema/gocinema/internal/db/models"
	"github.com/gocinema/gocinema/internal/service"
)

const (
	msgIDNotFound = "Film with such id does not exist."
	msgNameExists = "Film with such name already exists."

	// ParamID is the path parameter holding the film id.
	ParamID = "filmId"

	// DateLayout is the layout of created_at in requests.
	DateLayout = time.DateOnly
)

// Store is the persistence the service needs.
type Store interface {
	FindByID(ctx context.Context, id uint64) (*models.Film, error)
	List(ctx context.Context, limit, offset int) ([]models.Film, int64, error)
	Create(ctx context.Context, film *models.Film) error
	Save(ctx context.Context, film *models.Film) error
	DeleteByID(ctx context.Context, id uint64) (*models.Film, error)
}

// Input is the body of a create or update.
// An empty state means Done, an empty created_at means today.
type Input struct {
	Name      string `json:"name"       validate:"required,max=45"`
	Duration  string `json:"duration"   validate:"required,max=45"`
	State     string `json:"state"      validate:"omitempty,oneof=Done InProduction"`
	CreatedAt string `json:"created_at" validate:"omitempty,datetime=2006-01-02"`
}

// Service manages films.
type Service struct {
	films     Store
	validator *service.Validator
	now       func() time.Time
}

// New creates the film service.
func New(films Store) *Service {
	return &Service{
		films: films,
		validator: service.NewValidator(service.Messages{
			"name.max":            "Film name should consist of at most 45 symbols.",
			"duration.max":        "Film duration should consist of at most 45 symbols.",
			"created_at.datetime": "Please, enter valid date in format YYYY-MM-DD.",
		}),
		now: time.Now,
	}
}

// Create adds a film to the catalog.
func (s *Service) Create(ctx context.Context, in Input) (*models.Film, error) {
	film := &models.Film{}
	if err := s.apply(film, in); err != nil {
		return nil, err
	}

	if err := s.films.Create(ctx, film); err != nil {
		return nil, translate(err)
	}

	log.Info().Str("film", film.Name).Uint64("id", film.ID).Msg("film created")

	return film, nil
}

// Get returns the film with the given id.
func (s *Service) Get(ctx context.Context, id uint64) (*models.Film, error) {
	film, err := s.films.FindByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound(msgIDNotFound, ParamID)
	}

	return film, err //nolint:wrapcheck
}

// List returns a page of films and the total count.
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.Film, int64, error) {
	return s.films.List(ctx, limit, offset) //nolint:wrapcheck
}

// Update replaces the fields of the film.
func (s *Service) Update(ctx context.Context, id uint64, in Input) (*models.Film, error) {
	film, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = s.apply(film, in); err != nil {
		return nil, err
	}

	if err = s.films.Save(ctx, film); err != nil {
		return nil, translate(err)
	}

	return film, nil
}

// Delete removes the film and returns it.
func (s *Service) Delete(ctx context.Context, id uint64) (*models.Film, error) {
	film, err := s.films.DeleteByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound(msgIDNotFound, ParamID)
	}

	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	log.Info().Str("film", film.Name).Uint64("id", film.ID).Msg("film deleted")

	return film, nil
}

func (s *Service) apply(film *models.Film, in Input) error {
	if err := s.validator.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	film.Name = in.Name
	film.Duration = in.Duration

	film.State = models.FilmState(in.State)
	if film.State == "" {
		film.State = models.FilmStateDone
	}

	switch {
	case in.CreatedAt != "":
		// the layout was checked by the validator
		createdAt, _ := time.Parse(DateLayout, in.CreatedAt)
		film.CreatedAt = createdAt
	case film.CreatedAt.IsZero():
		film.CreatedAt = s.now().UTC().Truncate(24 * time.Hour)
	}

	return nil
}

func translate(err error) error {
	if errors.Is(err, apperr.ErrConflict) {
		return apperr.Conflict(msgNameExists, "name")
	}

	return err
}
