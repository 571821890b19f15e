// Package stems isolates instrument/vocal tracks from a mixed audio file by
// dispatching to one of two external separation backends. The heavy inference
// runtime is optional: a missing backend binary surfaces as a
// dependency-missing error naming the install step, never as a processing
// failure.
package stems

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tunegrab/internal/faults"
)

// Backend selects the separation engine. The set is closed: only two
// backends exist, so dispatch is a switch rather than a plugin registry.
type Backend string

const (
	// BackendOpenUnmix is the lighter model (~150MB), four stems.
	BackendOpenUnmix Backend = "openunmix"
	// BackendDemucs is the heavier model (~1.5GB), best quality, two stems.
	BackendDemucs Backend = "demucs"
)

// ParseBackend validates a user-supplied backend name.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case BackendOpenUnmix:
		return BackendOpenUnmix, nil
	case BackendDemucs:
		return BackendDemucs, nil
	default:
		return "", fmt.Errorf("unknown stem backend %q (want openunmix or demucs)", s)
	}
}

// StemSet maps stem role ("vocals", "drums", "backing_track", ...) to the
// output file path. Completeness depends on the backend.
type StemSet map[string]string

// Separator is the shared capability both backends implement.
type Separator interface {
	Name() string
	Separate(ctx context.Context, inputPath, outDir string) (StemSet, error)
}

// Config carries backend binary paths and the lock directory used to
// serialize separation jobs.
type Config struct {
	UmxPath    string
	DemucsPath string
	LockDir    string
}

// ForBackend returns the separator for the chosen backend.
func ForBackend(b Backend, cfg Config) (Separator, error) {
	switch b {
	case BackendOpenUnmix:
		return &openUnmix{bin: orDefault(cfg.UmxPath, "umx"), lockDir: cfg.LockDir}, nil
	case BackendDemucs:
		return &demucs{bin: orDefault(cfg.DemucsPath, "demucs"), lockDir: cfg.LockDir}, nil
	default:
		return nil, fmt.Errorf("unknown stem backend %q", b)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func dependencyMissing(backend, bin, install string) error {
	return faults.Wrap(faults.ErrDependency, "stems", backend,
		fmt.Sprintf("%s not found; install it with %q", bin, install), nil)
}

// collectStems flattens a backend's nested output directory into outDir,
// renaming files to <base>_<role>.wav. Roles listed in renames map to
// friendlier names.
func collectStems(stemDir, outDir, base string, roles []string, renames map[string]string) (StemSet, error) {
	set := StemSet{}
	for _, role := range roles {
		src := filepath.Join(stemDir, role+".wav")
		if _, err := os.Stat(src); err != nil {
			continue
		}
		outRole := role
		if renamed, ok := renames[role]; ok {
			outRole = renamed
		}
		dst := filepath.Join(outDir, fmt.Sprintf("%s_%s.wav", base, outRole))
		if err := os.Rename(src, dst); err != nil {
			return nil, fmt.Errorf("move stem %s: %w", role, err)
		}
		set[outRole] = dst
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("separation produced no stems in %s", stemDir)
	}
	return set, nil
}

func baseName(path string) string {
	b := filepath.Base(path)
	return strings.TrimSuffix(b, filepath.Ext(b))
}
