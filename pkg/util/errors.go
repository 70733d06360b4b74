// Package util provides utility functions and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for command and state failures
var (
	ErrNotFound         = errors.New("resource not found")
	ErrAlreadyExists    = errors.New("resource already exists")
	ErrInUse            = errors.New("resource in use")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrValidationFailed = errors.New("validation failed")
	ErrMutationInFlight = errors.New("another change is already in flight")
	ErrNothingToSubmit  = errors.New("no pending changes to submit")
	ErrNotProvisioned   = errors.New("resource not provisioned")
	ErrSliceDeleted     = errors.New("slice has been deleted")
)

// CommandError wraps a failure reported by the control framework for a
// specific command, naming the triggering action so the UI can surface it.
type CommandError struct {
	Command string // e.g. "slice.submit", "node.remove"
	Target  string // slice, node, or network name
	Err     error
}

func (e *CommandError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s on '%s': %v", e.Command, e.Target, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a command error
func NewCommandError(command, target string, err error) *CommandError {
	return &CommandError{Command: command, Target: target, Err: err}
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// InUseError represents a resource that cannot be removed because it's in use
type InUseError struct {
	Resource string
	UsedBy   []string
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("%s is in use by: %s", e.Resource, strings.Join(e.UsedBy, ", "))
}

func (e *InUseError) Unwrap() error {
	return ErrInUse
}

// NewInUseError creates an in-use error
func NewInUseError(resource string, usedBy ...string) *InUseError {
	return &InUseError{Resource: resource, UsedBy: usedBy}
}
