package auth

import (
	"errors"
	"fmt"

	"github.com/gocinema/gocinema/internal/apperr"
)

var (
	// ErrInvalidOldPassword is returned when the provided old password does not match the user's current password.
	ErrInvalidOldPassword = apperr.Validation("old password does not match", "old_password")

	// ErrNotLocalUser is returned when a password operation targets a directory or OIDC user.
	ErrNotLocalUser = apperr.New(apperr.ErrValidation, "password is managed by an external provider", "")

	// ErrOTPInvalid is returned when the second factor is missing or wrong.
	// Only reached after the password was verified.
	ErrOTPInvalid = fmt.Errorf("otp %w", apperr.ErrAuthFailed)

	// ErrOTPAlreadyEnabled is returned when enrolling a user that already has a second factor.
	ErrOTPAlreadyEnabled = apperr.New(apperr.ErrConflict, "otp is already enabled", "")

	// ErrOTPNotEnabled is returned when disabling a second factor that was never enrolled.
	ErrOTPNotEnabled = apperr.New(apperr.ErrNotFound, "otp is not enabled", "")

	// ErrInvalidToken is returned for bearer tokens that fail signature, issuer or expiry checks.
	ErrInvalidToken = fmt.Errorf("token %w", apperr.ErrAuthFailed)

	// ErrUserNotFound is returned when the directory has no entry for the username.
	ErrUserNotFound = errors.New("user not found")

	// ErrMultipleUsersFound is returned when a query expected one user but found multiple.
	// This typically indicates a misconfigured LDAP filter or duplicate entries.
	ErrMultipleUsersFound = errors.New("multiple users found")

	// ErrLDAPDisabled is returned when LDAP authentication is disabled via configuration.
	ErrLDAPDisabled = errors.New("ldap authentication is disabled")

	// ErrOIDCDisabled is returned when OIDC authentication is disabled via configuration.
	ErrOIDCDisabled = errors.New("oidc authentication is disabled")

	// ErrNoIDToken is returned when the token response of the provider carries no id_token.
	ErrNoIDToken = errors.New("no id_token in token response")

	// ErrOIDCIdentityTaken is returned when the username of an OIDC subject belongs to another identity.
	ErrOIDCIdentityTaken = fmt.Errorf("oidc identity %w", apperr.ErrAuthFailed)

	// ErrTokenSecretEmpty is returned when a token issuer is created without a signing secret.
	ErrTokenSecretEmpty = errors.New("token secret can not be empty")
)
