package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Loudnorm parameters besides the integrated target. TP and LRA follow the
// streaming-platform convention for -14 LUFS material.
const (
	truePeakCeiling = -1.5
	loudnessRange   = 11.0
)

// Normalize rewrites the audio file to the target integrated loudness (LUFS),
// preserving the container and codec family. The original file is untouched;
// the normalized variant lands next to it as <name>.normalized.<ext> and the
// path is returned only after the output is verified to exist.
func (a *Adapter) Normalize(ctx context.Context, inputPath string, targetLUFS float64) (string, error) {
	ext := filepath.Ext(inputPath)
	outputPath := strings.TrimSuffix(inputPath, ext) + ".normalized" + ext
	tmpPath := outputPath + ".tmp" + ext
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(ctx, a.ffmpeg, normalizeArgs(inputPath, tmpPath, targetLUFS, ext)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg loudnorm failed: %v (%s)", err, out)
	}

	if info, err := os.Stat(tmpPath); err != nil || info.Size() == 0 {
		return "", fmt.Errorf("loudnorm produced no output")
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		return "", fmt.Errorf("move normalized file: %w", err)
	}
	return outputPath, nil
}

func normalizeArgs(in, out string, targetLUFS float64, ext string) []string {
	filter := fmt.Sprintf("loudnorm=I=%g:TP=%g:LRA=%g", targetLUFS, truePeakCeiling, loudnessRange)
	args := []string{
		"-y",
		"-v", "quiet",
		"-i", in,
		"-af", filter,
	}
	// Keep the bitrate tier the pipeline promised for lossy audio output.
	if strings.EqualFold(ext, ".mp3") {
		args = append(args, "-c:a", "libmp3lame", "-b:a", "320k")
	}
	args = append(args, out)
	return args
}
