package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnknownGormEngine error if config db.gormEngine is not supported.
	ErrUnknownGormEngine = errors.New("toml config db.gormEngine must be mysql, postgres or sqlite")

	// ErrUnknownSessionStorage error if config webserver.session.storage is not supported.
	ErrUnknownSessionStorage = errors.New("toml config webserver.session.storage must be memory, mysql, postgres or redis")

	// ErrTokenSecretEmpty error if token auth is enabled without a secret.
	ErrTokenSecretEmpty = errors.New("toml config auth.token.secret can not be empty when tokens are enabled")

	// ErrRedisAddrEmpty error if the redis session storage is used without an address.
	ErrRedisAddrEmpty = errors.New("toml config redis.addr can not be empty for redis session storage")

	// ErrAdminCredentialsEmpty error if the admin bootstrap has a username but no password or email.
	ErrAdminCredentialsEmpty = errors.New("toml config auth.local.adminPassword and adminEmail can not be empty when adminUser is set")

	// ErrOIDCIncomplete error if OIDC is enabled without provider url or client id.
	ErrOIDCIncomplete = errors.New("toml config auth.oidc.providerURL and clientID can not be empty when oidc is enabled")
)
