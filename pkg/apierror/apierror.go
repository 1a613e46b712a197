package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeAlreadyExists = "ALREADY_EXISTS"
)

// APIError is a failure that already knows its HTTP status and client-facing
// code. Services return it for input problems; infrastructure faults stay
// plain errors.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// BadRequest reports invalid input; details names the offending field.
func BadRequest(message string, details string) *APIError {
	return New(CodeBadRequest, message, details, http.StatusBadRequest)
}

func Conflict(message string, details string) *APIError {
	return New(CodeAlreadyExists, message, details, http.StatusConflict)
}

// From unwraps err to an *APIError, if it holds one.
func From(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr, true
	}
	return nil, false
}
