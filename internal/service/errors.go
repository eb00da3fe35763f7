package service

import (
	"errors"
	"fmt"
)

// Identity errors.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthenticated   = errors.New("not signed in")
)

// Lookup errors.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrFlowNotFound    = errors.New("flow not found")
	ErrNodeNotFound    = errors.New("node not found")
	ErrRecordNotFound  = errors.New("record not found")
)

// Rule violations.
var (
	ErrCycleDetected    = errors.New("flow would become its own ancestor")
	ErrRootFlowDeletion = errors.New("root flow cannot be deleted")
	ErrStatusRequired   = errors.New("at least one status is required")
	ErrInvalidInput     = errors.New("invalid input")
)

// OpError records the operation and entity an error came from.
type OpError struct {
	Op  string // operation name
	ID  string // entity id, may be empty
	Err error
}

func (e *OpError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func (e *OpError) Is(target error) bool { return errors.Is(e.Err, target) }

func opErr(op, id string, err error) error {
	return &OpError{Op: op, ID: id, Err: err}
}

// IsNotFound reports whether err is one of the lookup errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrFlowNotFound) ||
		errors.Is(err, ErrNodeNotFound) ||
		errors.Is(err, ErrRecordNotFound)
}

// IsValidation reports whether err is caused by bad caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrStatusRequired) ||
		errors.Is(err, ErrCycleDetected) ||
		errors.Is(err, ErrRootFlowDeletion)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
