package service

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a claim, document or file does not exist
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller lacks the capability for an operation
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is matched by every ValidationError
	ErrValidation = errors.New("validation failed")

	// ErrAutoPromotion is returned when a document review was saved but the
	// follow-up claim verification could not be completed
	ErrAutoPromotion = errors.New("claim auto-promotion failed")

	// ErrNotificationFailed is returned when the CRM could not be triggered
	ErrNotificationFailed = errors.New("notification failed")
)

// ValidationError describes one invalid input field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Is matches ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidationErrors collects every invalid field of a request
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is matches ErrValidation
func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

func (v *ValidationErrors) add(field, message string) {
	*v = append(*v, &ValidationError{Field: field, Message: message})
}

// err returns nil when nothing was collected
func (v ValidationErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
