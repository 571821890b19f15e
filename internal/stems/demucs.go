package stems

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

const demucsModel = "htdemucs"

// demucs runs Meta's demucs CLI in two-stem mode. Output lands in
// <outdir>/htdemucs/<track>/{vocals,no_vocals}.wav; no_vocals is renamed to
// backing_track and the nested tree is removed.
type demucs struct {
	bin     string
	lockDir string
}

func (d *demucs) Name() string { return string(BackendDemucs) }

func (d *demucs) Separate(ctx context.Context, inputPath, outDir string) (StemSet, error) {
	if _, err := exec.LookPath(d.bin); err != nil {
		return nil, dependencyMissing(d.Name(), d.bin, "pip install demucs")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	var set StemSet
	err := withSeparationLock(ctx, d.lockDir, func() error {
		cmd := exec.CommandContext(ctx, d.bin,
			"--two-stems", "vocals",
			"-n", demucsModel,
			"-o", outDir,
			inputPath,
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("demucs failed: %v (%s)", err, out)
		}

		base := baseName(inputPath)
		stemDir := filepath.Join(outDir, demucsModel, base)
		collected, err := collectStems(stemDir, outDir, base,
			[]string{"vocals", "no_vocals", "drums", "bass", "other"},
			map[string]string{"no_vocals": "backing_track"})
		if err != nil {
			return err
		}
		os.RemoveAll(filepath.Join(outDir, demucsModel))
		set = collected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}
