package stems

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// openUnmix runs the umx CLI (sigsep open-unmix). It writes
// <outdir>/<track>/{vocals,drums,bass,other}.wav which we flatten into the
// destination directory.
type openUnmix struct {
	bin     string
	lockDir string
}

func (o *openUnmix) Name() string { return string(BackendOpenUnmix) }

func (o *openUnmix) Separate(ctx context.Context, inputPath, outDir string) (StemSet, error) {
	if _, err := exec.LookPath(o.bin); err != nil {
		return nil, dependencyMissing(o.Name(), o.bin, "pip install openunmix")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	var set StemSet
	err := withSeparationLock(ctx, o.lockDir, func() error {
		cmd := exec.CommandContext(ctx, o.bin,
			"--outdir", outDir,
			"--audio-backend", "sox_io",
			inputPath,
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("umx failed: %v (%s)", err, out)
		}

		base := baseName(inputPath)
		stemDir := filepath.Join(outDir, base)
		collected, err := collectStems(stemDir, outDir, base,
			[]string{"vocals", "drums", "bass", "other"}, nil)
		if err != nil {
			return err
		}
		os.RemoveAll(stemDir)
		set = collected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}
