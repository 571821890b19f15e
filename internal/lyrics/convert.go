package lyrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tunegrab/internal/faults"
)

// DefaultMergeGap collapses duplicate caption fragments whose repeat follows
// within this window. Overridable through config.
const DefaultMergeGap = 500 * time.Millisecond

// ConvertOptions tunes the subtitle-to-lyric conversion.
type ConvertOptions struct {
	// MergeGap merges consecutive cues with identical text whose gap is below
	// this threshold. Zero selects DefaultMergeGap; negative disables merging.
	MergeGap time.Duration
}

// Convert turns a subtitle track into a lyric track: one line per cue tagged
// with the cue's start time, empty cues dropped, duplicate fragments merged.
// Converting an already-converted-equivalent track again yields the same
// output.
func Convert(track SubtitleTrack, opts ConvertOptions) LyricTrack {
	gap := opts.MergeGap
	if gap == 0 {
		gap = DefaultMergeGap
	}

	var out LyricTrack
	var prev *Cue
	for i := range track {
		cue := track[i]
		cue.Text = strings.TrimSpace(cue.Text)
		if cue.Text == "" {
			continue
		}
		if prev != nil && cue.Text == prev.Text && gap > 0 && cue.Start-prev.End < gap {
			// Duplicate caption fragment; keep the earlier timestamp.
			prev.End = cue.End
			continue
		}
		out = append(out, Line{At: cue.Start, Text: cue.Text})
		c := cue
		prev = &c
	}
	return out
}

// Render produces the LRC document body.
func Render(track LyricTrack) string {
	var b strings.Builder
	for _, line := range track {
		b.WriteString(line.Timestamp())
		b.WriteString(line.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// ConvertFile reads an .srt file and writes the .lrc next to it (or at
// lrcPath when given). Returns the written path.
func ConvertFile(srtPath, lrcPath string, opts ConvertOptions) (string, error) {
	if lrcPath == "" {
		lrcPath = strings.TrimSuffix(srtPath, filepath.Ext(srtPath)) + ".lrc"
	}

	track, err := ParseSRTFile(srtPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", faults.Wrap(faults.ErrNotFound, "lyrics", "convert", "no subtitles available", err)
		}
		return "", fmt.Errorf("parse %s: %w", srtPath, err)
	}

	lrc := Convert(track, opts)
	if len(lrc) == 0 {
		return "", faults.Wrap(faults.ErrNotFound, "lyrics", "convert", "subtitle track has no usable text", nil)
	}

	if err := os.WriteFile(lrcPath, []byte(Render(lrc)), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", lrcPath, err)
	}
	return lrcPath, nil
}
