package apperrors

import (
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// ErrValidation carries per-field validation messages.
type ErrValidation struct {
	Fields map[string]string
}

func (e *ErrValidation) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ErrValidation) Is(target error) bool {
	_, ok := target.(*ErrValidation)
	return ok
}

func NewValidationError(fields map[string]string) *ErrValidation {
	return &ErrValidation{Fields: fields}
}

// NewFieldError is a shorthand for a single-field validation failure.
func NewFieldError(field, message string) *ErrValidation {
	return &ErrValidation{Fields: map[string]string{field: message}}
}

// ErrConflict is returned when the request collides with the current state,
// e.g. seats that are already sold or held by someone else.
type ErrConflict struct {
	Reason string
	Items  []string
}

func (e *ErrConflict) Error() string {
	if len(e.Items) > 0 {
		return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Items, ", "))
	}
	return e.Reason
}

func (e *ErrConflict) Is(target error) bool {
	_, ok := target.(*ErrConflict)
	return ok
}

func NewConflictError(reason string, items ...string) *ErrConflict {
	return &ErrConflict{Reason: reason, Items: items}
}

// NewSeatsUnavailableError reports seats that cannot be held or sold.
func NewSeatsUnavailableError(seats []string) *ErrConflict {
	return &ErrConflict{Reason: "some seats are unavailable", Items: seats}
}

type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return e.Message
}

func (e *ErrUnauthorized) Is(target error) bool {
	_, ok := target.(*ErrUnauthorized)
	return ok
}

func NewUnauthorizedError(message string) *ErrUnauthorized {
	return &ErrUnauthorized{Message: message}
}

type ErrForbidden struct {
	Message string
}

func (e *ErrForbidden) Error() string {
	return e.Message
}

func (e *ErrForbidden) Is(target error) bool {
	_, ok := target.(*ErrForbidden)
	return ok
}

func NewForbiddenError(message string) *ErrForbidden {
	return &ErrForbidden{Message: message}
}

// ErrUnavailable means a feature cannot serve the request right now, either
// because it is not configured or because it is out of capacity.
type ErrUnavailable struct {
	Message string
}

func (e *ErrUnavailable) Error() string {
	return e.Message
}

func (e *ErrUnavailable) Is(target error) bool {
	_, ok := target.(*ErrUnavailable)
	return ok
}

func NewUnavailableError(message string) *ErrUnavailable {
	return &ErrUnavailable{Message: message}
}
