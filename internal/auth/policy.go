package auth

import "github.com/gocinema/gocinema/internal/db/models"

// Action is the operation a caller wants to perform on a resource.
type Action string

// Resource is the kind of record an action targets.
type Resource string

// Decision is the outcome of an authorization check.
type Decision bool

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	// ActionGrant changes the role set of an identity.
	ActionGrant Action = "grant"

	ResourceIdentity Resource = "identity"
	ResourceFilm     Resource = "film"

	Deny  Decision = false
	Allow Decision = true
)

func (d Decision) String() string {
	if d {
		return "allow"
	}

	return "deny"
}

// decide applies the access policy to a caller that is known to exist.
// target is the current state of the identity acted on, nil when it does not exist.
//
//	identity read                any identity
//	identity update              self or admin
//	identity create/delete/grant admin
//	film read                    any identity
//	film create/update/delete    admin
func decide(caller *models.User, action Action, resource Resource, target *models.User) Decision {
	admin := caller.HasRole(RoleAdmin)

	switch resource {
	case ResourceIdentity:
		switch action {
		case ActionRead:
			return Allow
		case ActionUpdate:
			return Decision(admin || isSelf(caller, target))
		case ActionCreate, ActionDelete, ActionGrant:
			return Decision(admin)
		}
	case ResourceFilm:
		switch action {
		case ActionRead:
			return Allow
		case ActionCreate, ActionUpdate, ActionDelete:
			return Decision(admin)
		}
	}

	return Deny
}

func isSelf(caller, target *models.User) bool {
	return target != nil && caller.Username == target.Username
}
