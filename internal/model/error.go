// internal/model/error.go
package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInternalServer  = errors.New("internal server error")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrConflict        = errors.New("resource conflict")
	ErrDeliveryFailed  = errors.New("message delivery failed")
	ErrTooManyRequests = errors.New("too many requests")

	// ErrStaleObject is returned when an optimistic-locked write lost the race.
	// It matches ErrConflict so callers can retry on either.
	ErrStaleObject = fmt.Errorf("%w: stale object", ErrConflict)
)

// ErrorDetail is the client-facing part of an error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// APIErrorResponse is the JSON envelope for every error response.
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// AppError pairs a client-facing ErrorDetail with the underlying cause.
type AppError struct {
	Detail ErrorDetail
	Err    error
}

func NewAppError(code, message, field string, err error) *AppError {
	return &AppError{
		Detail: ErrorDetail{Code: code, Message: message, Field: field},
		Err:    err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Detail.Code, e.Detail.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Detail.Code, e.Detail.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}
