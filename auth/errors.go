package auth

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrAccountExists       = errors.New("account already exists")
	ErrExistingUsername    = errors.New("username is already taken")
	ErrExistingEmail       = errors.New("email is already registered")
	ErrExistingAdmission   = errors.New("admission number already in use")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrExternalAccountOnly = errors.New("please sign in with your identity provider")
	ErrNotFound            = errors.New("account not found")
	ErrMissingFields       = errors.New("missing required fields")
	ErrServiceUnavailable  = errors.New("service unavailable")

	// errDuplicateKey is what repositories report when the store's
	// unique index rejects a write. The index, not the service-level
	// pre-check, is the authority on uniqueness.
	errDuplicateKey = errors.New("duplicate key")
)

// ValidationError aggregates per-field messages from the validation
// layer so a form can surface all of them at once.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, f := range names {
		msgs = append(msgs, e.Fields[f])
	}
	return "invalid data provided: " + strings.Join(msgs, "; ")
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

func (e *ValidationError) add(field, msg string) {
	if msg != "" {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
