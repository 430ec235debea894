package models

import (
	"fmt"
	"strings"
)

// ErrorMessageResponse returns the error message response struct
type ErrorMessageResponse struct {
	Response MessageError
}

// MessageError contains the inner details for the error message response
type MessageError struct {
	Message string
	Error   string
}

// ValidationError is returned for malformed input. Fields lists every
// violated field.
type ValidationError struct {
	Fields []string
	Msg    string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed: " + e.Msg
	}
	return fmt.Sprintf("validation failed on %s: %s", strings.Join(e.Fields, ", "), e.Msg)
}

// NewValidationError builds a ValidationError for the given fields
func NewValidationError(msg string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Msg: msg}
}

// NotFoundError is returned when an id is malformed or names nothing
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// AuthorizationError is returned when an actor may not perform an action
type AuthorizationError struct {
	Action string
}

func (e *AuthorizationError) Error() string {
	return "not authorized to " + e.Action
}

// Conflict reasons
const (
	ConflictAlreadyReported  = "already_reported"
	ConflictAlreadyOffered   = "already_offered"
	ConflictNotOffered       = "not_offered"
	ConflictAlreadyReviewed  = "already_reviewed"
	ConflictInvalidState     = "invalid_state"
	ConflictConcurrentUpdate = "concurrent_update"
	ConflictAlreadyExists    = "already_exists"
)

// ConflictError is returned when the current state forbids the request
type ConflictError struct {
	Reason string
	Msg    string
}

func (e *ConflictError) Error() string {
	return e.Reason + ": " + e.Msg
}

// HealthCheckResponse is returned by the health endpoint
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}
