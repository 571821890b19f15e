// Package ffmpeg wraps the ffmpeg and ffprobe binaries behind structured
// argument lists. No command strings are ever interpolated from user input.
package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"tunegrab/internal/faults"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

// CheckInstalled verifies ffmpeg is on PATH before any fetch starts. The
// error message carries the per-OS install hint.
func (a *Adapter) CheckInstalled() error {
	if _, err := exec.LookPath(a.ffmpeg); err != nil {
		return faults.Wrap(faults.ErrDependency, "preflight", "ffmpeg",
			"ffmpeg not found; install it (winget install FFmpeg / brew install ffmpeg / sudo apt install ffmpeg)", nil)
	}
	return nil
}

// Metadata describes a probed media file.
type Metadata struct {
	Filename    string
	Title       string
	Artist      string
	DurationSec float64
	SampleRate  int
	Channels    int
	Format      string
}

type probeOutput struct {
	Format struct {
		Filename string            `json:"filename"`
		Duration string            `json:"duration"`
		Format   string            `json:"format_name"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	CodecType  string `json:"codec_type"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

func (p *probeOutput) firstAudioStream() *probeStream {
	for i := range p.Streams {
		if p.Streams[i].CodecType == "audio" {
			return &p.Streams[i]
		}
	}
	return nil
}

// Probe reads format and stream metadata via ffprobe JSON output.
func (a *Adapter) Probe(ctx context.Context, path string) (*Metadata, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	stream := probe.firstAudioStream()
	if stream == nil {
		return nil, errors.New("no audio stream found")
	}

	duration, _ := strconv.ParseFloat(probe.Format.Duration, 64)
	sampleRate, _ := strconv.Atoi(stream.SampleRate)

	meta := &Metadata{
		Filename:    filepath.Base(path),
		DurationSec: duration,
		SampleRate:  sampleRate,
		Channels:    stream.Channels,
		Format:      probe.Format.Format,
	}
	if probe.Format.Tags != nil {
		meta.Title = probe.Format.Tags["title"]
		meta.Artist = probe.Format.Tags["artist"]
	}
	return meta, nil
}

// ConvertToWAV rewrites the input as mono 16-bit PCM at sampleRate, writing
// into outDir. Output is staged in a temp file and renamed only on success.
func (a *Adapter) ConvertToWAV(ctx context.Context, inputPath, outDir string, sampleRate int) (string, error) {
	if sampleRate == 0 {
		sampleRate = 22050
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}

	base := filepath.Base(inputPath)
	outputPath := filepath.Join(outDir, trimExt(base)+".wav")
	tmpPath := outputPath + ".tmp.wav"
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(ctx, a.ffmpeg, convertArgs(inputPath, tmpPath, sampleRate)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg convert failed: %v (%s)", err, out)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		return "", fmt.Errorf("move converted file: %w", err)
	}
	return outputPath, nil
}

func convertArgs(in, out string, sampleRate int) []string {
	return []string{
		"-y",
		"-v", "quiet",
		"-i", in,
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-c:a", "pcm_s16le",
		out,
	}
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
