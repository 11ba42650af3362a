// Package user implements registration and management of identities.
package user

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/gocinema/gocinema/internal/apperr"
	"github.com/gocinema/gocinema/internal/auth"
	"github.com/gocinema/gocinema/internal/auth/password"
	userdb "github.com/gocinema/gocinema/internal/db/controller/user"
	"github.com/gocinema/gocinema/internal/db/models"
	"github.com/gocinema/gocinema/internal/service"
)

const (
	msgIDNotFound       = "User with such id does not exist."
	msgUsernameNotFound = "User with such username does not exist."
	msgEmailNotFound    = "User with such email does not exist."
	msgUsernameExists   = "User with such username already exists."
	msgEmailExists      = "User with such email already exists."
	msgRoleNotFound     = "Role with such name does not exist."

	// ParamID is the path parameter holding the user id.
	ParamID = "userId"
	// ParamUsername is the path parameter holding the username.
	ParamUsername = "username"
	// ParamEmail is the path parameter holding the email address.
	ParamEmail = "email"
	// ParamRole is the path parameter holding the role name.
	ParamRole = "role"
)

// Store is the persistence the service needs.
type Store interface {
	FindByID(ctx context.Context, id uint64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, int64, error)
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	DeleteByID(ctx context.Context, id uint64) (*models.User, error)
	AddRole(ctx context.Context, user *models.User, role *models.Role) error
	RemoveRole(ctx context.Context, user *models.User, role *models.Role) error
}

// RegisterInput is the body of a registration.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=120"`
	Email    string `json:"email"    validate:"required,email,max=120"`
	Password string `json:"password" validate:"required"`
}

// UpdateInput is the body of a profile update.
type UpdateInput struct {
	Username string `json:"username" validate:"required,min=3,max=120"`
	Email    string `json:"email"    validate:"required,email,max=120"`
}

// PasswordInput is the body of a password change.
type PasswordInput struct {
	OldPassword string `json:"old_password"`
	Password    string `json:"password" validate:"required"`
}

// Service manages identities.
type Service struct {
	users     Store
	auth      *auth.Service
	hasher    *password.Hasher
	validator *service.Validator
	minLength int
}

// New creates the user service. Passwords shorter than minPasswordLength are rejected.
func New(users Store, authService *auth.Service, hasher *password.Hasher, minPasswordLength int) *Service {
	return &Service{
		users:  users,
		auth:   authService,
		hasher: hasher,
		validator: service.NewValidator(service.Messages{
			"email.email": "Please, enter valid email address.",
		}),
		minLength: minPasswordLength,
	}
}

// Register creates a local identity holding the "user" role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err //nolint:wrapcheck
	}

	if err := s.checkPassword(in.Password); err != nil {
		return nil, err
	}

	role, err := s.auth.Roles().GetByName(ctx, auth.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve role %s: %w", auth.RoleUser, err)
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Validation(err.Error(), "password")
	}

	user := &models.User{
		Username:   in.Username,
		Email:      in.Email,
		Password:   hashed,
		AuthSource: models.AuthSourceLocal,
		Roles:      []models.Role{*role},
	}

	if err = s.users.Create(ctx, user); err != nil {
		return nil, translate(err)
	}

	log.Info().Str("user", user.Username).Uint64("id", user.ID).Msg("user registered")

	return user, nil
}

// Get returns the identity with the given id.
func (s *Service) Get(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound(msgIDNotFound, ParamID)
	}

	return user, err //nolint:wrapcheck
}

// GetByUsername returns the identity with the given username.
func (s *Service) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound(msgUsernameNotFound, ParamUsername)
	}

	return user, err //nolint:wrapcheck
}

// GetByEmail returns the identity with the given email address.
func (s *Service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound(msgEmailNotFound, ParamEmail)
	}

	return user, err //nolint:wrapcheck
}

// List returns a page of identities and the total count.
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	return s.users.List(ctx, limit, offset) //nolint:wrapcheck
}

// Update changes username and email of the identity.
// Keeping the current values is not a conflict.
func (s *Service) Update(ctx context.Context, id uint64, in UpdateInput) (*models.User, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err //nolint:wrapcheck
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Username = in.Username
	user.Email = in.Email

	if err = s.users.Save(ctx, user); err != nil {
		return nil, translate(err)
	}

	return user, nil
}

// ChangePassword sets a new password for the target identity.
// A caller changing the own password has to present the current one.
func (s *Service) ChangePassword(ctx context.Context, caller *models.User, id uint64, in PasswordInput) error {
	if err := s.validator.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	if err := s.checkPassword(in.Password); err != nil {
		return err
	}

	target, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	requireOld := caller == nil || caller.Username == target.Username

	return s.auth.Local().ChangePassword(ctx, target, in.OldPassword, in.Password, requireOld) //nolint:wrapcheck
}

// EnrollOTP enables the TOTP second factor of the identity.
func (s *Service) EnrollOTP(ctx context.Context, id uint64) (*auth.OTPEnrollment, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.auth.EnrollOTP(ctx, user) //nolint:wrapcheck
}

// DisableOTP removes the TOTP second factor of the identity.
func (s *Service) DisableOTP(ctx context.Context, id uint64) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	return s.auth.DisableOTP(ctx, user) //nolint:wrapcheck
}

// Delete removes the identity and its role associations and returns it.
func (s *Service) Delete(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.users.DeleteByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound(msgIDNotFound, ParamID)
	}

	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	log.Info().Str("user", user.Username).Uint64("id", user.ID).Msg("user deleted")

	return user, nil
}

// GrantRole adds the named role to the identity.
func (s *Service) GrantRole(ctx context.Context, id uint64, roleName string) (*models.User, error) {
	user, role, err := s.userAndRole(ctx, id, roleName)
	if err != nil {
		return nil, err
	}

	if err = s.users.AddRole(ctx, user, role); err != nil {
		return nil, err //nolint:wrapcheck
	}

	log.Info().Str("user", user.Username).Str("role", role.Name).Msg("role granted")

	return s.Get(ctx, id)
}

// RevokeRole removes the named role from the identity.
func (s *Service) RevokeRole(ctx context.Context, id uint64, roleName string) (*models.User, error) {
	user, role, err := s.userAndRole(ctx, id, roleName)
	if err != nil {
		return nil, err
	}

	if err = s.users.RemoveRole(ctx, user, role); err != nil {
		return nil, err //nolint:wrapcheck
	}

	log.Info().Str("user", user.Username).Str("role", role.Name).Msg("role revoked")

	return s.Get(ctx, id)
}

func (s *Service) userAndRole(ctx context.Context, id uint64, roleName string) (*models.User, *models.Role, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	role, err := s.auth.Roles().GetByName(ctx, roleName)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil, apperr.NotFound(msgRoleNotFound, ParamRole)
	}

	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	return user, role, nil
}

func (s *Service) checkPassword(plaintext string) error {
	if utf8.RuneCountInString(plaintext) < s.minLength {
		return apperr.Validation(fmt.Sprintf("Password should consist of at least %d symbols.", s.minLength), "password")
	}

	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, userdb.ErrUsernameExists):
		return apperr.Conflict(msgUsernameExists, "username")
	case errors.Is(err, userdb.ErrEmailExists):
		return apperr.Conflict(msgEmailExists, "email")
	default:
		return err
	}
}
