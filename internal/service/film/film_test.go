package film_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocinema/gocinema/internal/apperr"
	filmdb "github.com/gocinema/gocinema/internal/db/controller/film"
	"github.com/gocinema/gocinema/internal/db/dbtest"
	"github.com/gocinema/gocinema/internal/db/models"
	"github.com/gocinema/gocinema/internal/service/film"
)

func newService(t *testing.T) *film.Service {
	t.Helper()

	films, err := filmdb.New(dbtest.New(t))
	require.NoError(t, err)

	return film.New(films)
}

func TestCreate(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	f, err := s.Create(ctx, film.Input{Name: "Dune", Duration: "155 min", CreatedAt: "2021-10-22"})
	require.NoError(t, err)
	assert.NotZero(t, f.ID)
	assert.Equal(t, models.FilmStateDone, f.State)
	assert.Equal(t, time.Date(2021, 10, 22, 0, 0, 0, 0, time.UTC), f.CreatedAt.UTC())

	f, err = s.Create(ctx, film.Input{Name: "Arrakis", Duration: "90 min", State: "InProduction"})
	require.NoError(t, err)
	assert.Equal(t, models.FilmStateInProduction, f.State)
	assert.False(t, f.CreatedAt.IsZero())

	tests := []struct {
		name   string
		in     film.Input
		kind   error
		source string
	}{
		{name: "blank name", in: film.Input{Duration: "1h"}, kind: apperr.ErrValidation, source: apperr.BodyField("name")},
		{name: "long name", in: film.Input{Name: "0123456789012345678901234567890123456789012345", Duration: "1h"}, kind: apperr.ErrValidation, source: apperr.BodyField("name")},
		{name: "blank duration", in: film.Input{Name: "Heat"}, kind: apperr.ErrValidation, source: apperr.BodyField("duration")},
		{name: "unknown state", in: film.Input{Name: "Heat", Duration: "1h", State: "Lost"}, kind: apperr.ErrValidation, source: apperr.BodyField("state")},
		{name: "bad date", in: film.Input{Name: "Heat", Duration: "1h", CreatedAt: "22.10.2021"}, kind: apperr.ErrValidation, source: apperr.BodyField("created_at")},
		{name: "duplicate name", in: film.Input{Name: "Dune", Duration: "1h"}, kind: apperr.ErrConflict, source: apperr.BodyField("name")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, tt.in)
			require.ErrorIs(t, err, tt.kind)

			var appErr *apperr.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.source, appErr.Source)
		})
	}
}

func TestGetUpdateDelete(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	dune, err := s.Create(ctx, film.Input{Name: "Dune", Duration: "155 min"})
	require.NoError(t, err)

	_, err = s.Create(ctx, film.Input{Name: "Heat", Duration: "170 min"})
	require.NoError(t, err)

	got, err := s.Get(ctx, dune.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Name)

	got, err = s.Update(ctx, dune.ID, film.Input{Name: "Dune", Duration: "156 min", State: "InProduction"})
	require.NoError(t, err, "keeping the name is not a conflict")
	assert.Equal(t, "156 min", got.Duration)
	assert.Equal(t, models.FilmStateInProduction, got.State)

	_, err = s.Update(ctx, dune.ID, film.Input{Name: "Heat", Duration: "1h"})
	require.ErrorIs(t, err, apperr.ErrConflict)

	list, total, err := s.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Heat", list[0].Name)

	deleted, err := s.Delete(ctx, dune.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", deleted.Name)

	var appErr *apperr.Error

	_, err = s.Get(ctx, dune.ID)
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Film with such id does not exist.", appErr.Message)
	assert.Equal(t, apperr.PathParam("filmId"), appErr.Source)

	_, err = s.Delete(ctx, dune.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = s.Update(ctx, dune.ID, film.Input{Name: "Dune", Duration: "1h"})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
