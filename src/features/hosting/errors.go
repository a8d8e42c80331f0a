package hosting

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Error is the JSON envelope every failing API response carries.
type Error struct {
	Message    string `json:"message"`
	Name       string `json:"name"`
	StatusCode int    `json:"statusCode"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// ErrTrackNotFound reports that no track matched the request.
func ErrTrackNotFound() *Error {
	return &Error{
		Message:    "Failed to find specified track",
		Name:       "TrackNotFound",
		StatusCode: fiber.StatusNotFound,
	}
}

// ErrIncorrectPublishToken reports a missing, malformed, expired or
// already-consumed publish token. The message never reveals which.
func ErrIncorrectPublishToken() *Error {
	return &Error{
		Message:    "The provided publish token is incorrect",
		Name:       "IncorrectPublishTokenError",
		StatusCode: fiber.StatusBadRequest,
	}
}

// ErrValidation reports an input that failed declarative constraints.
func ErrValidation(message string) *Error {
	return &Error{
		Message:    message,
		Name:       "ValidationError",
		StatusCode: fiber.StatusBadRequest,
	}
}

func errUnknown() *Error {
	return &Error{
		Message:    "Something bad happened when processing your request",
		Name:       "UnknownError",
		StatusCode: fiber.StatusInternalServerError,
	}
}

// ErrorHandler renders any handler error as the API error envelope.
// Errors that are not *Error are logged with full detail and answered
// with the intentionally generic unknown-error body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	apiErr, ok := err.(*Error)
	if !ok {
		slog.Error("Unknown error happened",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals(RequestIDKey),
			"error", err,
		)
		apiErr = errUnknown()
	}
	return c.Status(apiErr.StatusCode).JSON(apiErr)
}
