// Package faults defines the error taxonomy shared across pipeline stages.
// Errors are tagged with sentinel markers so callers can classify failures
// with errors.Is without depending on stage internals.
package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInput marks bad user input (URL, path, flag combination). Not retryable.
	ErrInput = errors.New("input error")
	// ErrAuth marks throttling that survived credential refresh. The user must
	// log in to a browser manually.
	ErrAuth = errors.New("auth error")
	// ErrTransient marks network hiccups that are safe to retry a bounded
	// number of times.
	ErrTransient = errors.New("transient error")
	// ErrDependency marks a missing optional external tool. The message names
	// the install step that resolves it.
	ErrDependency = errors.New("dependency missing")
	// ErrUnsupported marks a format the upstream cannot deliver. Fatal.
	ErrUnsupported = errors.New("unsupported format")
	// ErrNotFound marks media that is removed, private, or absent. Fatal.
	ErrNotFound = errors.New("not found")
)

// Wrap tags err with marker and a stage/operation detail string. A nil marker
// defaults to ErrTransient.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns the short human label for the error's marker, used in CLI
// output and warnings.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInput):
		return "input"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrDependency):
		return "dependency-missing"
	case errors.Is(err, ErrUnsupported):
		return "unsupported-format"
	case errors.Is(err, ErrNotFound):
		return "not-found"
	case errors.Is(err, ErrTransient):
		return "transient"
	default:
		return "error"
	}
}

// Retryable reports whether the orchestrator may retry the operation.
func Retryable(err error) bool {
	return errors.Is(err, ErrTransient)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "stage failure"
	}
	return strings.Join(parts, ": ")
}
