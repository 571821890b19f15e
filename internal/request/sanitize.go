package request

import (
	"fmt"
	"path/filepath"
	"strings"

	"tunegrab/internal/faults"
)

// SanitizeDir resolves the user-supplied output folder request against base
// and guarantees the result stays a descendant of base (or base itself). It
// fails instead of silently truncating a path that escapes.
func SanitizeDir(base, requested string) (string, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", faults.Wrap(faults.ErrInput, "validate", "output path", err.Error(), nil)
	}

	if requested == "" {
		return absBase, nil
	}
	if err := checkPathChars(requested); err != nil {
		return "", faults.Wrap(faults.ErrInput, "validate", "output path", err.Error(), nil)
	}

	var resolved string
	if filepath.IsAbs(requested) {
		resolved = filepath.Clean(requested)
	} else {
		resolved = filepath.Join(absBase, requested)
	}

	rel, err := filepath.Rel(absBase, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", faults.Wrap(faults.ErrInput, "validate", "output path",
			fmt.Sprintf("%q escapes the output root", requested), nil)
	}
	return resolved, nil
}

// SanitizeName strips characters that are unsafe in a file name derived from
// untrusted media titles. Separators collapse to a single space.
func SanitizeName(name string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7f:
			continue
		case strings.ContainsRune(`/\:*?"<>|`, r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		default:
			b.WriteRune(r)
			lastSpace = r == ' '
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "untitled"
	}
	return out
}

func checkPathChars(p string) error {
	for _, r := range p {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("path contains control characters")
		}
	}
	if strings.ContainsRune(p, 0) {
		return fmt.Errorf("path contains NUL")
	}
	return nil
}
