package models

import (
	"errors"
	"fmt"
)

// Sentinel errors, matched with errors.Is
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrCycle      = errors.New("page cycle")
	ErrConflict   = errors.New("conflict")
)

// ValidationError reports an empty or invalid required field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a missing project, page or cell
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError builds a NotFoundError for any printable id
func NewNotFoundError(kind string, id interface{}) error {
	return &NotFoundError{Kind: kind, ID: fmt.Sprint(id)}
}

// CycleError reports a move that would make a page its own ancestor
type CycleError struct {
	PageID   int64
	ParentID int64
}

func (e *CycleError) Error() string {
	if e.PageID == e.ParentID {
		return fmt.Sprintf("page %d can not be its own parent", e.PageID)
	}
	return fmt.Sprintf("page %d is an ancestor of page %d", e.PageID, e.ParentID)
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// ConflictError reports a duplicate unique key
type ConflictError struct {
	Kind string
	Key  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.Key)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
