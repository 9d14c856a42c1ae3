package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// APIResponse is the envelope every endpoint replies with: status "success"
// with a data payload, or status "failed" with a human-readable message.
type APIResponse struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %v not found or deleted", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Err:     err,
	}
}

// StatusCode maps an error to the HTTP status it should be reported with.
// Unknown errors are treated as unexpected (500).
func StatusCode(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case "VALIDATION_ERROR":
		return fiber.StatusBadRequest
	case "NOT_FOUND":
		return fiber.StatusNotFound
	case "UNAUTHORIZED":
		return fiber.StatusUnauthorized
	case "FORBIDDEN":
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithData writes a success envelope with the given status code.
func RespondWithData(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(APIResponse{Status: "success", Data: data})
}

// RespondWithError writes a failure envelope. The HTTP status is derived from
// the error's code; the message is the error's human-readable text.
func RespondWithError(c *fiber.Ctx, err error) error {
	status := StatusCode(err)

	message := err.Error()
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code == "INTERNAL_ERROR" && appErr.Err != nil {
		// Surface the underlying message, matching the generic-500 policy.
		message = fmt.Sprintf("%s: %v", appErr.Message, appErr.Err)
	}

	return c.Status(status).JSON(APIResponse{Status: "failed", Message: message})
}
