package models

import "time"

// FilmState is the production state of a film.
type FilmState string

const (
	// FilmStateDone marks a finished film.
	FilmStateDone FilmState = "Done"
	// FilmStateInProduction marks a film still in production.
	FilmStateInProduction FilmState = "InProduction"
)

// Film is a film in the cinema catalog.
type Film struct {
	ID        uint64    `gorm:"primaryKey"                      json:"id"`
	Name      string    `gorm:"uniqueIndex;size:45;not null"    json:"name"`
	Duration  string    `gorm:"size:45;not null"                json:"duration"`
	State     FilmState `gorm:"type:varchar(20);not null"       json:"state"`
	CreatedAt time.Time `gorm:"type:date"                       json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the database table name for the Film model.
func (Film) TableName() string {
	return "films"
}

// All returns every model managed by the schema migration.
func All() []any {
	return []any{
		&Role{},
		&User{},
		&Film{},
	}
}
