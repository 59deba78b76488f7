// Package goerrors contains the catalog of errors the server exposes to its clients.
// Every entry carries the message shown to the client, a stable error code and the HTTP status it maps to.
package goerrors

import (
	"errors"
	"net/http"
)

// CustomError is a client-facing error. It implements the error interface so services can return
// catalog entries directly or wrap them with additional context using fmt.Errorf and %w.
type CustomError struct {
	Message    string `json:"message"`
	Code       string `json:"code"`
	HttpStatus int    `json:"-"`
}

func (e *CustomError) Error() string {
	return e.Code + ": " + e.Message
}

var (
	BadRequest = &CustomError{
		Message:    "The request body is invalid. Please check the request body and try again.",
		Code:       "ERR-001",
		HttpStatus: http.StatusBadRequest,
	}
	UsernameTaken = &CustomError{
		Message:    "The username is already taken. Please try another username.",
		Code:       "ERR-002",
		HttpStatus: http.StatusBadRequest,
	}
	EmailTaken = &CustomError{
		Message:    "The email is already taken. Please try another email.",
		Code:       "ERR-003",
		HttpStatus: http.StatusBadRequest,
	}
	UserNotFound = &CustomError{
		Message:    "The user was not found. Please check the username or email and try again.",
		Code:       "ERR-004",
		HttpStatus: http.StatusNotFound,
	}
	NoteNotFound = &CustomError{
		Message:    "The note was not found. Please check the note ID and try again.",
		Code:       "ERR-005",
		HttpStatus: http.StatusNotFound,
	}
	InvalidCredentials = &CustomError{
		Message:    "The credentials are invalid. Please check the credentials and try again.",
		Code:       "ERR-006",
		HttpStatus: http.StatusUnauthorized,
	}
	EmailNotVerified = &CustomError{
		Message:    "The email address is not verified. Please verify your email or request a new verification email.",
		Code:       "ERR-007",
		HttpStatus: http.StatusForbidden,
	}
	InvalidToken = &CustomError{
		Message:    "The token is invalid. Please request a new one.",
		Code:       "ERR-008",
		HttpStatus: http.StatusBadRequest,
	}
	TokenExpired = &CustomError{
		Message:    "The token has expired. Please request a new one.",
		Code:       "ERR-009",
		HttpStatus: http.StatusBadRequest,
	}
	AlreadyVerified = &CustomError{
		Message:    "The email address is already verified. Please login to your account.",
		Code:       "ERR-010",
		HttpStatus: http.StatusBadRequest,
	}
	PasswordTooShort = &CustomError{
		Message:    "The password is too short. It must be at least 6 characters long.",
		Code:       "ERR-011",
		HttpStatus: http.StatusBadRequest,
	}
	NoChanges = &CustomError{
		Message:    "No changes were made. Please provide a title, content or tags.",
		Code:       "ERR-012",
		HttpStatus: http.StatusBadRequest,
	}
	TooManyRequests = &CustomError{
		Message:    "An email was sent recently. Please wait a moment before trying again.",
		Code:       "ERR-013",
		HttpStatus: http.StatusTooManyRequests,
	}
	Unauthorized = &CustomError{
		Message:    "The request is unauthorized. Please login to your account.",
		Code:       "ERR-014",
		HttpStatus: http.StatusUnauthorized,
	}
	EmailNotSent = &CustomError{
		Message:    "Your request was saved, but the email could not be sent. Please try again later.",
		Code:       "ERR-015",
		HttpStatus: http.StatusBadGateway,
	}
	UpstreamUnavailable = &CustomError{
		Message:    "A backing service is currently unavailable. Please try again later.",
		Code:       "ERR-016",
		HttpStatus: http.StatusServiceUnavailable,
	}
	InternalServerError = &CustomError{
		Message:    "An internal server error occurred. Please try again later.",
		Code:       "ERR-017",
		HttpStatus: http.StatusInternalServerError,
	}
)

// From resolves the catalog entry carried by err. Errors outside of the catalog resolve to InternalServerError.
func From(err error) *CustomError {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr
	}
	return InternalServerError
}
