package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gocinema/gocinema/internal/apperr"
	"github.com/gocinema/gocinema/internal/auth"
)

// ErrorItem is one error of an error response.
type ErrorItem struct {
	Message string `json:"message"`
	Source  string `json:"source,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Errors  []ErrorItem `json:"errors"`
	TraceID string      `json:"traceId"`
}

var kindStatus = map[error]int{ //nolint:gochecknoglobals
	apperr.ErrValidation: fiber.StatusBadRequest,
	apperr.ErrNotFound:   fiber.StatusNotFound,
	apperr.ErrConflict:   fiber.StatusBadRequest,
	apperr.ErrAuthFailed: fiber.StatusUnauthorized,
	apperr.ErrDenied:     fiber.StatusForbidden,
}

var kindMessage = map[error]string{ //nolint:gochecknoglobals
	apperr.ErrValidation: "Request is invalid.",
	apperr.ErrNotFound:   "Requested resource does not exist.",
	apperr.ErrConflict:   "Resource already exists.",
	apperr.ErrAuthFailed: "Invalid username or password.",
	apperr.ErrDenied:     "You don't have permission to perform this action.",
}

// ErrorHandler translates errors returned by handlers into JSON error responses.
// Errors without a kind are logged and reported as internal server errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var (
		traceID = uuid.NewString()
		status  = fiber.StatusInternalServerError
		item    = ErrorItem{Message: "Internal server error."}
		fe      *fiber.Error
		ae      *apperr.Error
	)

	kind := apperr.Kind(err)

	switch {
	case kind != nil:
		status = kindStatus[kind]
		item.Message = kindMessage[kind]

		if errors.As(err, &ae) {
			item.Message = ae.Message
			item.Source = ae.Source
		}

		if errors.Is(err, auth.ErrOTPInvalid) {
			item.Message = "One-time password is missing or invalid."
		}
	case errors.As(err, &fe):
		status = fe.Code
		item.Message = fe.Message
	default:
		log.Error().Err(err).Str("traceId", traceID).Str("URI", c.OriginalURL()).Msg("request failed")
	}

	if status == fiber.StatusUnauthorized {
		c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="gocinema"`)
	}

	return c.Status(status).JSON(ErrorResponse{
		Errors:  []ErrorItem{item},
		TraceID: traceID,
	})
}
