package auth

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"

	"github.com/gocinema/gocinema/internal/apperr"
	"github.com/gocinema/gocinema/internal/config"
	"github.com/gocinema/gocinema/internal/db/models"
)

const defaultLDAPTimeout = 10

// LDAPProvider handles LDAP authentication.
// Directory users are mirrored into the identity store on every successful login.
type LDAPProvider struct {
	config config.LDAP
	users  IdentityStore
	roles  *Registry
}

// NewLDAPProvider creates a new LDAP provider.
func NewLDAPProvider(cfg config.LDAP, users IdentityStore, roles *Registry) (*LDAPProvider, error) {
	if !cfg.Enabled {
		return nil, ErrLDAPDisabled
	}

	if cfg.UsernameAttr == "" {
		cfg.UsernameAttr = "uid"
	}

	if cfg.EmailAttr == "" {
		cfg.EmailAttr = "mail"
	}

	if cfg.UserFilter == "" {
		cfg.UserFilter = "(" + cfg.UsernameAttr + "={username})"
	}

	if cfg.DefaultRole == "" {
		cfg.DefaultRole = RoleUser
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = defaultLDAPTimeout
	}

	return &LDAPProvider{
		config: cfg,
		users:  users,
		roles:  roles,
	}, nil
}

// Connect establishes a connection to the LDAP server.
func (p *LDAPProvider) Connect() (*ldap.Conn, error) {
	hostPort := net.JoinHostPort(p.config.Host, strconv.Itoa(p.config.Port))

	ldapURL := "ldap://" + hostPort
	if p.config.UseSSL {
		ldapURL = "ldaps://" + hostPort
	}

	var tlsConfig *tls.Config
	if p.config.UseSSL || p.config.UseTLS {
		tlsConfig = &tls.Config{
			InsecureSkipVerify: p.config.SkipVerify, //nolint:gosec // skipping verifying tls is ok
			ServerName:         p.config.Host,
		}
	}

	timeout := time.Duration(p.config.Timeout) * time.Second

	conn, err := ldap.DialURL(ldapURL,
		ldap.DialWithTLSConfig(tlsConfig),
		ldap.DialWithDialer(&net.Dialer{Timeout: timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to LDAP server: %w", err)
	}

	if !p.config.UseSSL && p.config.UseTLS {
		if errStartTLS := conn.StartTLS(tlsConfig); errStartTLS != nil {
			if errClose := conn.Close(); errClose != nil {
				log.Error().Err(errClose).Msg("failed to close LDAP connection")
			}

			return nil, fmt.Errorf("failed to start TLS: %w", errStartTLS)
		}
	}

	conn.SetTimeout(timeout)

	return conn, nil
}

// Authenticate binds as the directory user and returns the mirrored identity.
// Unknown directory users and wrong passwords yield apperr.ErrAuthFailed,
// connection problems are returned as they are.
func (p *LDAPProvider) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	// an empty password would be an unauthenticated bind and succeed
	if password == "" {
		return nil, apperr.ErrAuthFailed
	}

	conn, err := p.Connect()
	if err != nil {
		return nil, err
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close LDAP connection")
		}
	}()

	if errBind := p.bindService(conn); errBind != nil {
		return nil, errBind
	}

	entry, err := p.searchUserEntry(conn, username)
	if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrMultipleUsersFound) {
		log.Debug().Err(err).Str("user", username).Msg("ldap lookup failed")

		return nil, apperr.ErrAuthFailed
	}

	if err != nil {
		return nil, err
	}

	if errBind := conn.Bind(entry.DN, password); errBind != nil {
		if ldap.IsErrorWithCode(errBind, ldap.LDAPResultInvalidCredentials) {
			return nil, apperr.ErrAuthFailed
		}

		return nil, fmt.Errorf("authentication failed: %w", errBind)
	}

	return p.upsertLDAPUser(ctx, username, entry.DN, entry.GetAttributeValue(p.config.EmailAttr))
}

// bindService binds with the configured service account, if any, to perform the user search.
func (p *LDAPProvider) bindService(conn *ldap.Conn) error {
	if p.config.BindDN == "" {
		return nil
	}

	if err := conn.Bind(p.config.BindDN, p.config.BindPassword); err != nil {
		return fmt.Errorf("failed to bind with service account: %w", err)
	}

	return nil
}

// searchUserEntry searches LDAP for the given username and returns a single entry.
func (p *LDAPProvider) searchUserEntry(conn *ldap.Conn, username string) (*ldap.Entry, error) {
	searchRequest := ldap.NewSearchRequest(
		p.config.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, // Size limit
		p.config.Timeout,
		false,
		userFilter(p.config.UserFilter, username),
		[]string{p.config.UsernameAttr, p.config.EmailAttr, "dn"},
		nil,
	)

	searchResult, err := conn.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to search for user: %w", err)
	}

	switch len(searchResult.Entries) {
	case 0:
		return nil, ErrUserNotFound
	case 1:
		return searchResult.Entries[0], nil
	default:
		return nil, ErrMultipleUsersFound
	}
}

// upsertLDAPUser creates or refreshes the identity mirroring a directory entry.
// New identities get the configured default role. A local identity with the
// same username is never taken over.
func (p *LDAPProvider) upsertLDAPUser(ctx context.Context, username, userDN, email string) (*models.User, error) {
	if email == "" {
		email = username + "@" + p.config.Host
	}

	user, err := p.users.FindByUsername(ctx, username)

	switch {
	case errors.Is(err, apperr.ErrNotFound):
		role, errRole := p.roles.GetByName(ctx, p.config.DefaultRole)
		if errRole != nil {
			return nil, fmt.Errorf("failed to resolve default role: %w", errRole)
		}

		user = &models.User{
			Username:   username,
			Email:      email,
			AuthSource: models.AuthSourceLDAP,
			ExternalID: userDN,
			Roles:      []models.Role{*role},
		}

		if err = p.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		log.Info().Str("user", username).Str("dn", userDN).Msg("created identity for directory user")

		return user, nil
	case err != nil:
		return nil, fmt.Errorf("failed to query user: %w", err)
	case user.AuthSource != models.AuthSourceLDAP:
		log.Warn().Str("user", username).Msg("directory login for a local identity refused")

		return nil, apperr.ErrAuthFailed
	}

	if user.Email == email && user.ExternalID == userDN {
		return user, nil
	}

	user.Email = email
	user.ExternalID = userDN

	if err = p.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// TestConnection tests the LDAP server connection and bind credentials.
func (p *LDAPProvider) TestConnection() error {
	conn, err := p.Connect()
	if err != nil {
		return err
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close LDAP connection")
		}
	}()

	return p.bindService(conn)
}

func userFilter(filter, username string) string {
	return strings.ReplaceAll(filter, "{username}", ldap.EscapeFilter(username))
}
