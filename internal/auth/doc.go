// Package auth provides authentication and authorization for the cinema API.
//
// # Authentication
//
// Service.Authenticate verifies a username and password. Local identities are
// checked by LocalProvider against the Argon2id hash in the database, legacy
// hashes are upgraded on the fly. Directory identities, and unknown usernames
// when LDAP is enabled, are checked by LDAPProvider, which mirrors the directory
// entry into the identity store. Identities with an enrolled TOTP second factor
// also need a valid code.
//
// Unknown usernames and wrong passwords both return apperr.ErrAuthFailed.
//
// Sessions and bearer tokens carry a Principal, the identity id and the
// username it had at login. Service.Identify loads the identity by id and
// rejects the principal once the username changed. With OIDC enabled,
// OIDCProvider verifies ID tokens of the provider and mirrors their subjects
// the way LDAPProvider mirrors directory entries.
//
// # Authorization
//
// Service.Authorize decides whether a caller may perform an Action on a
// Resource. The caller is looked up again on every decision, so role changes
// and deletions apply to running sessions and tokens immediately.
//
//   - reading films and identities needs an existing identity
//   - updating an identity needs the identity itself or the "admin" role
//   - everything else needs the "admin" role
//
// # Middleware
//
// Routes compose the chain explicitly:
//
//	mw := auth.NewMiddleware(service, sessions, tokens)
//
//	app.Delete("/film/:id",
//	    mw.Authenticate(),
//	    mw.Authorize(auth.ActionDelete, auth.ResourceFilm, nil),
//	    handler,
//	)
package auth
