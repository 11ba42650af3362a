package models

import "time"

// AuthSource represents the authentication source for a user account.
type AuthSource string

const (
	// AuthSourceLocal indicates the user authenticates with a local database password.
	AuthSourceLocal AuthSource = "local"
	// AuthSourceLDAP indicates the user authenticates via LDAP or Active Directory.
	AuthSourceLDAP AuthSource = "ldap"
	// AuthSourceOIDC indicates the user authenticates with an OpenID Connect provider.
	AuthSourceOIDC AuthSource = "oidc"
)

// User represents an identity in the system.
// Username and email are globally unique, the password column only ever holds a hash.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Username is the unique username used for login and ownership checks.
	Username string `gorm:"uniqueIndex;size:120;not null" json:"username"`
	// Email is the unique email address of the user.
	Email string `gorm:"uniqueIndex;size:120;not null" json:"email"`
	// Password is the hashed password. Empty for LDAP and OIDC users.
	Password string `gorm:"size:255" json:"password"`
	// Roles assigned to this user. The join rows are removed with the user.
	Roles []Role `gorm:"many2many:user_roles;constraint:OnDelete:CASCADE" json:"-"`
	// AuthSource indicates how this user authenticates (local, ldap or oidc).
	AuthSource AuthSource `gorm:"type:varchar(20);not null;default:'local'" json:"-"`
	// ExternalID is the LDAP DN for directory users, the subject for OIDC users.
	ExternalID string `gorm:"size:255" json:"-"`
	// OTPSecret is the base32 TOTP secret, empty when the second factor is disabled.
	OTPSecret string `gorm:"size:64" json:"-"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time `json:"-"`
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// RoleNames returns the names of the roles currently loaded on the user.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}

	return names
}

// HasRole reports whether a role with the given name is loaded on the user.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}

	return false
}

// External reports whether the password of the user is managed outside of the application.
func (u *User) External() bool {
	return u.AuthSource == AuthSourceLDAP || u.AuthSource == AuthSourceOIDC
}

// OTPEnabled reports whether the user has a TOTP second factor enrolled.
func (u *User) OTPEnabled() bool {
	return u.OTPSecret != ""
}
