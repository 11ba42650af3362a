package auth

import "github.com/gocinema/gocinema/internal/db/models"

// Principal names the identity a session or token was issued for.
// The username is kept next to the id so that a renamed identity invalidates
// every credential issued before the rename.
type Principal struct {
	ID       uint64
	Username string
}

// PrincipalOf returns the principal of user.
func PrincipalOf(user *models.User) Principal {
	return Principal{ID: user.ID, Username: user.Username}
}

// Empty reports whether p names no identity.
func (p Principal) Empty() bool {
	return p.ID == 0 || p.Username == ""
}
