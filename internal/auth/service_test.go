package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocinema/gocinema/internal/apperr"
	"github.com/gocinema/gocinema/internal/auth"
	"github.com/gocinema/gocinema/internal/auth/password"
	"github.com/gocinema/gocinema/internal/db/controller/role"
	"github.com/gocinema/gocinema/internal/db/controller/user"
	"github.com/gocinema/gocinema/internal/db/dbtest"
	"github.com/gocinema/gocinema/internal/db/models"
)

// legacyPassword1 is the passlib pbkdf2-sha256 hash of "password1".
const legacyPassword1 = "$pbkdf2-sha256$1000$MDEyMzQ1Njc4OWFiY2RlZg$qPNV7g60ThaRhm2wjsphGUlU0Er3kA82T/dMkQuL1ls"

type fixture struct {
	service *auth.Service
	users   *user.Controller
	roles   *role.Controller
	hasher  *password.Hasher
}

func newFixture(t *testing.T, opts ...auth.Option) *fixture {
	t.Helper()

	gdb := dbtest.New(t)

	users, err := user.New(gdb)
	require.NoError(t, err)

	roles, err := role.New(gdb)
	require.NoError(t, err)

	require.NoError(t, roles.Seed(context.Background(), auth.DefaultRoles()...))

	hasher := password.New(&argon2id.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})

	return &fixture{
		service: auth.NewService(users, roles, hasher, opts...),
		users:   users,
		roles:   roles,
		hasher:  hasher,
	}
}

// register stores a local identity holding the given roles.
func (f *fixture) register(t *testing.T, username, plaintext string, roleNames ...string) *models.User {
	t.Helper()

	ctx := context.Background()

	hashed, err := f.hasher.Hash(plaintext)
	require.NoError(t, err)

	u := &models.User{
		Username:   username,
		Email:      username + "@x.com",
		Password:   hashed,
		AuthSource: models.AuthSourceLocal,
	}

	for _, name := range roleNames {
		r, errRole := f.roles.FindByName(ctx, name)
		require.NoError(t, errRole)

		u.Roles = append(u.Roles, *r)
	}

	require.NoError(t, f.users.Create(ctx, u))

	return u
}

func (f *fixture) grant(t *testing.T, u *models.User, roleName string) {
	t.Helper()

	ctx := context.Background()

	r, err := f.roles.FindByName(ctx, roleName)
	require.NoError(t, err)

	require.NoError(t, f.users.AddRole(ctx, u, r))
}

func TestAuthenticateAlice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.register(t, "alice", "password1", auth.RoleUser)

	alice, err := f.service.Authenticate(ctx, auth.Credentials{Username: "alice", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", alice.Username)
	assert.Equal(t, []string{auth.RoleUser}, alice.RoleNames())

	_, err = f.service.Authenticate(ctx, auth.Credentials{Username: "alice", Password: "wrong"})
	require.ErrorIs(t, err, apperr.ErrAuthFailed)
}

func TestAuthenticateDoesNotRevealUnknownUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.register(t, "alice", "password1", auth.RoleUser)

	_, wrongPassword := f.service.Authenticate(ctx, auth.Credentials{Username: "alice", Password: "wrong"})
	_, unknownUser := f.service.Authenticate(ctx, auth.Credentials{Username: "mallory", Password: "wrong"})
	_, emptyUser := f.service.Authenticate(ctx, auth.Credentials{Password: "wrong"})

	assert.Equal(t, wrongPassword, unknownUser)
	assert.Equal(t, wrongPassword, emptyUser)
	assert.ErrorIs(t, unknownUser, apperr.ErrAuthFailed)
}

func TestAuthenticateUpgradesLegacyHash(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.users.Create(ctx, &models.User{
		Username:   "bob",
		Email:      "bob@x.com",
		Password:   legacyPassword1,
		AuthSource: models.AuthSourceLocal,
	}))

	_, err := f.service.Authenticate(ctx, auth.Credentials{Username: "bob", Password: "password1"})
	require.NoError(t, err)

	stored, err := f.users.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, f.hasher.NeedsRehash(stored.Password))

	// the upgraded hash still verifies
	_, err = f.service.Authenticate(ctx, auth.Credentials{Username: "bob", Password: "password1"})
	require.NoError(t, err)
}

func TestAuthenticateLDAPUserWithoutDirectory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.users.Create(ctx, &models.User{
		Username:   "carol",
		Email:      "carol@x.com",
		AuthSource: models.AuthSourceLDAP,
	}))

	_, err := f.service.Authenticate(ctx, auth.Credentials{Username: "carol", Password: "anything"})
	assert.ErrorIs(t, err, apperr.ErrAuthFailed)
}

func TestAuthenticateWithOTP(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, auth.WithOTPIssuer("GoCinema Test"))

	alice := f.register(t, "alice", "password1", auth.RoleUser)

	enrollment, err := f.service.EnrollOTP(ctx, alice)
	require.NoError(t, err)
	assert.NotEmpty(t, enrollment.Secret)
	assert.Contains(t, enrollment.URL, "otpauth://totp/")

	_, err = f.service.EnrollOTP(ctx, alice)
	require.ErrorIs(t, err, auth.ErrOTPAlreadyEnabled)

	_, err = f.service.Authenticate(ctx, auth.Credentials{Username: "alice", Password: "password1"})
	require.ErrorIs(t, err, auth.ErrOTPInvalid)
	require.ErrorIs(t, err, apperr.ErrAuthFailed)

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)

	_, err = f.service.Authenticate(ctx, auth.Credentials{Username: "alice", Password: "password1", OTP: code})
	require.NoError(t, err)

	// a valid code does not help with a wrong password
	_, err = f.service.Authenticate(ctx, auth.Credentials{Username: "alice", Password: "wrong", OTP: code})
	require.ErrorIs(t, err, apperr.ErrAuthFailed)
	require.NotErrorIs(t, err, auth.ErrOTPInvalid)

	stored, err := f.users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, f.service.DisableOTP(ctx, stored))
	require.ErrorIs(t, f.service.DisableOTP(ctx, stored), auth.ErrOTPNotEnabled)

	_, err = f.service.Authenticate(ctx, auth.Credentials{Username: "alice", Password: "password1"})
	require.NoError(t, err)
}

func TestIdentify(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice := f.register(t, "alice", "password1", auth.RoleUser)

	got, err := f.service.Identify(ctx, auth.PrincipalOf(alice))
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = f.service.Identify(ctx, auth.Principal{})
	require.ErrorIs(t, err, apperr.ErrAuthFailed)

	_, err = f.users.DeleteByID(ctx, alice.ID)
	require.NoError(t, err)

	_, err = f.service.Identify(ctx, auth.PrincipalOf(alice))
	assert.ErrorIs(t, err, apperr.ErrAuthFailed)
}

func TestIdentifyAfterRename(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice := f.register(t, "alice", "password1", auth.RoleUser)
	issued := auth.PrincipalOf(alice)

	alice.Username = "alice2"
	require.NoError(t, f.users.Save(ctx, alice))

	impostor := f.register(t, "alice", "password1", auth.RoleUser)

	// neither the renamed identity nor the new owner of the name is reached
	_, err := f.service.Identify(ctx, issued)
	require.ErrorIs(t, err, apperr.ErrAuthFailed)

	got, err := f.service.Identify(ctx, auth.PrincipalOf(impostor))
	require.NoError(t, err)
	assert.Equal(t, impostor.ID, got.ID)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice := f.register(t, "alice", "password1", auth.RoleUser)

	err := f.service.Local().ChangePassword(ctx, alice, "wrong", "password2", true)
	require.ErrorIs(t, err, auth.ErrInvalidOldPassword)
	require.ErrorIs(t, err, apperr.ErrValidation)

	require.NoError(t, f.service.Local().ChangePassword(ctx, alice, "password1", "password2", true))

	_, err = f.service.Authenticate(ctx, auth.Credentials{Username: "alice", Password: "password1"})
	require.ErrorIs(t, err, apperr.ErrAuthFailed)

	_, err = f.service.Authenticate(ctx, auth.Credentials{Username: "alice", Password: "password2"})
	require.NoError(t, err)

	// admin reset skips the old password
	require.NoError(t, f.service.Local().ChangePassword(ctx, alice, "", "password3", false))

	_, err = f.service.Authenticate(ctx, auth.Credentials{Username: "alice", Password: "password3"})
	require.NoError(t, err)

	err = f.service.Local().ChangePassword(ctx, &models.User{AuthSource: models.AuthSourceLDAP}, "", "password4", false)
	require.ErrorIs(t, err, auth.ErrNotLocalUser)
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	admin, err := f.service.Roles().GetByName(ctx, auth.RoleAdmin)
	require.NoError(t, err)

	byID, err := f.service.Roles().GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, byID.Name)

	_, err = f.service.Roles().GetByName(ctx, "superuser")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	roles, err := f.service.Roles().List(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, len(auth.DefaultRoles()))
}
