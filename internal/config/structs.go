package config

import (
	"time"

	"github.com/gocinema/gocinema/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
	Redis     Redis
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool    // disable recover middleware
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown in seconds
	URL            string  // base url for the webserver
	ReadTimeout    int     // read timeout in seconds, 0 means no timeout
	Session        Session // session settings
}

// Session settings.
type Session struct {
	ExpiryTime time.Duration
	Storage    string // memory, mysql, postgres or redis
	Table      string // table name for sql storages
	CookieName string
}

// Auth groups the authentication settings.
type Auth struct {
	Local LocalAuth
	LDAP  LDAP
	OIDC  OIDC
	Token Token
	OTP   OTP
}

// LocalAuth configures username/password authentication against the database.
type LocalAuth struct {
	Enabled           bool // allow public registration of local accounts
	MinPasswordLength int

	// The admin account is created at startup if it does not exist yet.
	// An empty AdminUser disables the bootstrap.
	AdminUser     string
	AdminEmail    string
	AdminPassword string
}

// Token configures bearer token issuing.
type Token struct {
	Enabled bool
	Secret  string
	Issuer  string
	TTL     time.Duration
}

// OTP configures the TOTP second factor.
type OTP struct {
	Issuer string // issuer shown in authenticator apps
}

// LDAP holds LDAP/Active Directory configuration for authentication.
type LDAP struct {
	// Enabled indicates if LDAP authentication is enabled.
	Enabled bool
	// Host is the LDAP server hostname or IP address.
	Host string
	// Port is the LDAP server port (typically 389 for LDAP, 636 for LDAPS).
	Port int
	// UseSSL enables LDAPS.
	UseSSL bool
	// UseTLS enables StartTLS.
	UseTLS bool
	// SkipVerify skips TLS certificate verification.
	SkipVerify bool
	// BindDN is the distinguished name used for searches.
	BindDN string
	// BindPassword is the password for BindDN.
	BindPassword string
	// BaseDN is the base for user searches.
	BaseDN string
	// UserFilter finds users, {username} is replaced with the escaped login name.
	UserFilter string
	// UsernameAttr is the attribute holding the username (e.g., "uid", "sAMAccountName").
	UsernameAttr string
	// EmailAttr is the attribute holding the email address.
	EmailAttr string
	// DefaultRole is assigned to directory users on first login.
	DefaultRole string
	// Timeout in seconds.
	Timeout int
}

// OIDC holds OpenID Connect configuration for authentication.
type OIDC struct {
	// Enabled indicates if OIDC authentication is enabled.
	Enabled bool
	// ProviderURL is the issuer URL used for discovery (e.g., "https://accounts.google.com").
	ProviderURL string
	// ClientID is the OAuth2 client identifier, ID tokens must be issued for it.
	ClientID string
	// ClientSecret is the OAuth2 client secret.
	ClientSecret string
	// RedirectURL is the callback URL the provider redirects to after login.
	RedirectURL string
	// Scopes are the OAuth2 scopes to request (default: ["openid", "profile", "email"]).
	Scopes []string
	// DefaultRole is assigned to OIDC users on first login.
	DefaultRole string
}

// Redis holds the redis connection used by the redis session storage.
type Redis struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
}
