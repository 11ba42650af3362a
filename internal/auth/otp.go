package auth

import (
	"context"

	"github.com/pquerna/otp/totp"

	"github.com/gocinema/gocinema/internal/db/models"
)

// OTPEnrollment is returned once when a second factor is enrolled.
type OTPEnrollment struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

// EnrollOTP creates a TOTP secret for the user and stores it.
// From now on Authenticate requires a valid code for this user.
func (s *Service) EnrollOTP(ctx context.Context, user *models.User) (*OTPEnrollment, error) {
	if user.OTPEnabled() {
		return nil, ErrOTPAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.otpIssuer,
		AccountName: user.Username,
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	user.OTPSecret = key.Secret()

	if err = s.users.Save(ctx, user); err != nil {
		user.OTPSecret = ""

		return nil, err //nolint:wrapcheck
	}

	return &OTPEnrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// DisableOTP removes the second factor of the user.
func (s *Service) DisableOTP(ctx context.Context, user *models.User) error {
	if !user.OTPEnabled() {
		return ErrOTPNotEnabled
	}

	user.OTPSecret = ""

	return s.users.Save(ctx, user) //nolint:wrapcheck
}

func validateOTP(code, secret string) bool {
	if code == "" {
		return false
	}

	return totp.Validate(code, secret)
}
