package faults

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapPreservesMarkerAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(ErrTransient, "fetch", "download", "stream interrupted", cause)

	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected ErrTransient marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "fetch", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected nil marker to default to ErrTransient, got %v", err)
	}
}

func TestKind(t *testing.T) {
	cases := []struct {
		marker error
		want   string
	}{
		{ErrInput, "input"},
		{ErrAuth, "auth"},
		{ErrTransient, "transient"},
		{ErrDependency, "dependency-missing"},
		{ErrUnsupported, "unsupported-format"},
		{ErrNotFound, "not-found"},
	}
	for _, tc := range cases {
		err := Wrap(tc.marker, "stage", "op", "msg", nil)
		if got := Kind(err); got != tc.want {
			t.Errorf("Kind(%v) = %q, want %q", tc.marker, got, tc.want)
		}
	}
	if got := Kind(fmt.Errorf("plain")); got != "error" {
		t.Errorf("Kind(plain) = %q, want %q", got, "error")
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(Wrap(ErrTransient, "fetch", "", "", nil)) {
		t.Error("transient errors should be retryable")
	}
	if Retryable(Wrap(ErrAuth, "fetch", "", "", nil)) {
		t.Error("auth errors should not be retryable")
	}
	if Retryable(Wrap(ErrNotFound, "fetch", "", "", nil)) {
		t.Error("not-found errors should not be retryable")
	}
}
