package models

import "time"

const (
	// WhereNameIs is the query pattern used to look up rows by name.
	WhereNameIs = "name = ?"
)

// Role represents a named role in the role-based access control system.
// Examples include "admin" and "user". Role names are unique.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the unique name of the role (e.g., "admin", "user").
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255" json:"description,omitempty"`
	// IsSystem indicates if this is a seeded role that cannot be deleted.
	IsSystem bool `gorm:"default:false" json:"-"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time `json:"-"`
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}
