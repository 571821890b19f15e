package stems

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// Separation loads a model into memory, so only one job runs at a time: a
// process-local mutex plus a file lock covering sibling processes.
var procMu sync.Mutex

func withSeparationLock(ctx context.Context, lockDir string, fn func() error) error {
	procMu.Lock()
	defer procMu.Unlock()

	if lockDir == "" {
		lockDir = os.TempDir()
	}
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return err
	}

	fl := flock.New(filepath.Join(lockDir, "tunegrab-stems.lock"))
	locked, err := fl.TryLockContext(ctx, 500*time.Millisecond)
	if err != nil {
		return err
	}
	if !locked {
		return ctx.Err()
	}
	defer fl.Unlock()

	return fn()
}
