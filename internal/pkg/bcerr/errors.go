package bcerr

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInternalError       = "INTERNAL_ERROR"
	CodeTokenNotFound       = "TOKEN_NOT_FOUND"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeTokenAlreadyUsed    = "TOKEN_ALREADY_USED"
	CodeIntegrationConfig   = "INTEGRATION_CONFIG"
	CodeIntegrationDispatch = "INTEGRATION_DISPATCH"
	CodeLimitReached        = "LIMIT_REACHED"
	CodeConflict            = "CONFLICT"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = New(fiber.StatusNotFound, CodeNotFound, "resource not found with given parameters")

	// ErrInvalidReq is returned when input is malformed. Nothing is persisted.
	ErrInvalidReq = New(fiber.StatusBadRequest, CodeInvalidRequest, "invalid request: some or all request parameters are invalid")

	// ErrInternalError is returned when an internal error occurs.
	ErrInternalError = New(fiber.StatusInternalServerError, CodeInternalError, "internal server error occurred")

	ErrTokenNotFound    = New(fiber.StatusNotFound, CodeTokenNotFound, "report token not found")
	ErrTokenExpired     = New(fiber.StatusGone, CodeTokenExpired, "report token has expired")
	ErrTokenAlreadyUsed = New(fiber.StatusConflict, CodeTokenAlreadyUsed, "report token has already been used")

	// ErrIntegrationConfig is returned when an integration is misconfigured or
	// its credentials are rejected by the external system.
	ErrIntegrationConfig = New(fiber.StatusUnprocessableEntity, CodeIntegrationConfig, "integration is misconfigured")

	// ErrIntegrationDispatch is returned when a single ban or unban call to an
	// integration fails.
	ErrIntegrationDispatch = New(fiber.StatusBadGateway, CodeIntegrationDispatch, "integration call failed")

	ErrLimitReached = New(fiber.StatusForbidden, CodeLimitReached, "limit reached")
	ErrConflict     = New(fiber.StatusConflict, CodeConflict, "resource is in a conflicting state")
)

type Extras map[string]any

type BarricadeError struct {
	StatusCode int
	ErrorCode  string
	Message    string
	Extras     *Extras
}

func New(statusCode int, errorCode string, message string) *BarricadeError {
	return &BarricadeError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

func (e BarricadeError) Msg(format string, parts ...any) *BarricadeError {
	e.Message = fmt.Sprintf(format, parts...)
	return &e
}

func (e BarricadeError) WithExtras(extras Extras) *BarricadeError {
	e.Extras = &extras
	return &e
}

func NewInvalidViolations(violations any) *BarricadeError {
	// copy ErrInvalidReq as e
	e := *ErrInvalidReq
	e.Extras = &Extras{
		"violations": violations,
	}
	return &e
}

func (e *BarricadeError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}

// Is matches errors by their code, so that derived errors such as
// ErrTokenExpired.Msg(...) still match ErrTokenExpired.
func (e *BarricadeError) Is(target error) bool {
	t, ok := target.(*BarricadeError)
	if !ok {
		return false
	}
	return e.ErrorCode == t.ErrorCode
}
