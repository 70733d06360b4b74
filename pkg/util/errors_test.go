package util

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCommandErrorUnwrap(t *testing.T) {
	inner := ErrAlreadyExists
	err := NewCommandError("slice.create", "s1", inner)

	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("errors.Is(err, ErrAlreadyExists) = false, want true")
	}
	if !strings.Contains(err.Error(), "slice.create") {
		t.Errorf("error message %q missing command name", err.Error())
	}
	if !strings.Contains(err.Error(), "s1") {
		t.Errorf("error message %q missing target", err.Error())
	}
}

func TestCommandErrorNoTarget(t *testing.T) {
	err := NewCommandError("slice.list", "", fmt.Errorf("transport down"))
	if strings.Contains(err.Error(), "''") {
		t.Errorf("error message %q should omit empty target", err.Error())
	}
}

func TestValidationErrorSingle(t *testing.T) {
	err := NewValidationError("node 'n1' has no site")
	want := "validation failed: node 'n1' has no site"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrValidationFailed) {
		t.Error("validation error should unwrap to ErrValidationFailed")
	}
}

func TestValidationErrorMultiple(t *testing.T) {
	err := NewValidationError("first", "second")
	msg := err.Error()
	if !strings.Contains(msg, "first") || !strings.Contains(msg, "second") {
		t.Errorf("Error() = %q, want both messages", msg)
	}
}

func TestInUseError(t *testing.T) {
	err := NewInUseError("interface 'n1-nic1-p1'", "net1")
	if !errors.Is(err, ErrInUse) {
		t.Error("in-use error should unwrap to ErrInUse")
	}
	if !strings.Contains(err.Error(), "net1") {
		t.Errorf("Error() = %q, want user list", err.Error())
	}
}
