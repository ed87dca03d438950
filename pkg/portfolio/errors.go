package portfolio

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by the service and repositories wraps
// exactly one of these, so callers only need errors.Is against the kind.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("unauthorized")
)

// Specific errors
var (
	ErrImageNotFound   = kindError("image not found", ErrNotFound)
	ErrProjectNotFound = kindError("project not found", ErrNotFound)
	ErrSkillNotFound   = kindError("skill not found", ErrNotFound)
	ErrMessageNotFound = kindError("message not found", ErrNotFound)
	ErrUserNotFound    = kindError("user not found", ErrNotFound)
	ErrObjectNotFound  = kindError("object not found", ErrNotFound)

	// ErrScreenIndexOutOfRange is returned by screen update and delete.
	ErrScreenIndexOutOfRange = kindError("screen index out of range", ErrNotFound)
	// ErrInvalidScreenIndex is returned by reorder when either index is outside the list.
	ErrInvalidScreenIndex = kindError("invalid screen index", ErrValidation)

	ErrImageSlugTaken   = kindError("image slug already exists", ErrConflict)
	ErrProjectSlugTaken = kindError("project slug already exists", ErrConflict)
	ErrSkillNameTaken   = kindError("skill name already exists", ErrConflict)
	ErrEmailTaken       = kindError("email already registered", ErrConflict)
	ErrMessageExists    = kindError("message already exists", ErrConflict)

	ErrEmptyUpload = kindError("no file uploaded", ErrValidation)
)

type sentinel struct {
	msg  string
	kind error
}

func (e *sentinel) Error() string { return e.msg }

func (e *sentinel) Unwrap() error { return e.kind }

func kindError(msg string, kind error) error {
	return &sentinel{msg: msg, kind: kind}
}

// Kind returns the error kind wrapped by err, or nil when err carries none.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrUnauthorized} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError represents rejected input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid builds a single-field ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: fmt.Sprintf(format, args...)}}}
}

// StorageError represents an error related to blob storage operations
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
