package diag

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeString(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{CodeGeneric, "GENERIC"},
		{CodeNullPointer, "NULL_POINTER"},
		{CodeNotRegistered, "NOT_REGISTERED"},
		{CodeTypeMismatch, "TYPE_MISMATCH"},
		{CodeInvalidFormat, "INVALID_FORMAT"},
		{CodeAllocation, "ALLOCATION"},
		{CodeAlreadyExists, "ALREADY_EXISTS"},
		{Code(99), "GENERIC"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("Code(%d).String() = %q, want %q", int(tt.code), got, tt.want)
		}
	}
}

func TestSentinelMatching(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
	}{
		{NullPointer(), ErrNullPointer},
		{NotRegistered("<0x1000^Foo>"), ErrNotRegistered},
		{WrongTag("<0x1000^Foo>"), ErrTypeMismatch},
		{TypeMismatch("Foo", "Bar"), ErrTypeMismatch},
		{InvalidFormat("bogus"), ErrInvalidFormat},
		{Allocation("arena block"), ErrAllocation},
		{Exists("subtag Foo"), ErrAlreadyExists},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.sentinel) {
			t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, tt.sentinel)
		}
	}
	if errors.Is(NullPointer(), ErrNotRegistered) {
		t.Error("NullPointer matched ErrNotRegistered")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := Wrap(CodeInvalidFormat, "unmarshal snapshot", cause)
	if !errors.Is(err, cause) {
		t.Error("wrapped cause lost")
	}
	if !errors.Is(err, ErrInvalidFormat) {
		t.Error("category lost after wrapping")
	}
	// Wrapping one more level with %w keeps both visible.
	outer := fmt.Errorf("restore: %w", err)
	if !errors.Is(outer, cause) || !errors.Is(outer, ErrInvalidFormat) {
		t.Error("double wrapping broke matching")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(TypeMismatch("Foo", "Bar")); got != CodeTypeMismatch {
		t.Errorf("CodeOf = %v, want CodeTypeMismatch", got)
	}
	if got := CodeOf(fmt.Errorf("wrapped: %w", NullPointer())); got != CodeNullPointer {
		t.Errorf("CodeOf through fmt wrap = %v, want CodeNullPointer", got)
	}
	if got := CodeOf(errors.New("plain")); got != CodeGeneric {
		t.Errorf("CodeOf(plain) = %v, want CodeGeneric", got)
	}
}

func TestErrorMessage(t *testing.T) {
	err := InvalidFormat("junk^")
	want := `INVALID_FORMAT: invalid pointer format (value "junk^")`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got := NullPointer().Error(); got != "NULL_POINTER: pointer is NULL" {
		t.Errorf("Error() = %q", got)
	}
}
