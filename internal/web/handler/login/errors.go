package login

import "errors"

var (
	// ErrSessionStoreNil is returned when the login handler has no session store.
	ErrSessionStoreNil = errors.New("session store is nil")

	// ErrTokensDisabled is returned when the token route is initialized without an issuer.
	ErrTokensDisabled = errors.New("token issuing is disabled")
)
