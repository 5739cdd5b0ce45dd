package apperrors

import (
	"errors"
	"net/http"
)

// AppError carries the HTTP status a failure should be reported with.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// New creates an AppError.
func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func BadRequest(msg string) *AppError {
	return New(http.StatusBadRequest, msg)
}

func Unauthorized(msg string) *AppError {
	return New(http.StatusUnauthorized, msg)
}

func Internal(msg string) *AppError {
	return New(http.StatusInternalServerError, msg)
}

// StatusOf returns the HTTP status for err; anything that is not an
// AppError is an internal error.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
