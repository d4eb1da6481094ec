package server

import (
	"fmt"
	"net/http"
)

// ErrMissingPayload means execute was called before /upload staged a payload.
type ErrMissingPayload struct{}

func (e *ErrMissingPayload) Error() string {
	return "no upstream payload staged; POST /upload first"
}

// ErrMissingResume means execute was called before /resume staged a document.
type ErrMissingResume struct{}

func (e *ErrMissingResume) Error() string {
	return "no resume staged; POST /resume first"
}

// ErrRunInProgress means an execute run already holds the portal session.
type ErrRunInProgress struct{}

func (e *ErrRunInProgress) Error() string {
	return "a recommendation run is already in progress"
}

// ErrValidation indicates request validation failure.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrPortalUnavailable means the portal session could not be opened.
type ErrPortalUnavailable struct {
	Cause error
}

func (e *ErrPortalUnavailable) Error() string {
	return fmt.Sprintf("portal session unavailable: %v", e.Cause)
}

func (e *ErrPortalUnavailable) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrMissingPayload, *ErrMissingResume, *ErrRunInProgress:
		return http.StatusConflict
	case *ErrValidation:
		return http.StatusBadRequest
	case *ErrPortalUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
