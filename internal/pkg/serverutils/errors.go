package serverutils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes surfaced to API clients.
const (
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeNotFound      = "NOT_FOUND"
	CodeValidation    = "VALIDATION"
	CodeConflictRetry = "CONFLICT_RETRY"
	CodeInternal      = "INTERNAL"
)

// AppError is the typed error the controllers let bubble up to the
// error-handler middleware.
type AppError struct {
	Code    string
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Status: fiber.StatusUnauthorized, Message: message}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Status: fiber.StatusNotFound, Message: message}
}

func NewValidation(message string) *AppError {
	return &AppError{Code: CodeValidation, Status: fiber.StatusBadRequest, Message: message}
}

// NewConflictRetry marks a lost turn-lock or creation race that the
// caller may simply retry.
func NewConflictRetry(message string) *AppError {
	return &AppError{Code: CodeConflictRetry, Status: fiber.StatusConflict, Message: message}
}

func NewInternal(err error) *AppError {
	return &AppError{Code: CodeInternal, Status: fiber.StatusInternalServerError, Message: "Internal server error", Err: err}
}

// ErrorHandlerMiddleware converts errors returned by handlers into a
// consistent JSON envelope. Unknown errors become opaque 500s so no
// partial data leaks.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			return ctx.Status(appErr.Status).JSON(fiber.Map{
				"success": false,
				"code":    appErr.Code,
				"message": appErr.Message,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{
				"success": false,
				"message": fiberErr.Message,
			})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"code":    CodeInternal,
			"message": "Internal server error",
		})
	}
}
