// Package config loads tunegrab settings from a TOML file with environment
// overrides. Policy constants that tune pipeline behavior (retry counts,
// caption merge gap, loudness target) live here rather than in code.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the root configuration document.
type Config struct {
	Output   Output   `toml:"output"`
	Fetch    Fetch    `toml:"fetch"`
	Lyrics   Lyrics   `toml:"lyrics"`
	Audio    Audio    `toml:"audio"`
	Stems    Stems    `toml:"stems"`
	Analysis Analysis `toml:"analysis"`
	Logging  Logging  `toml:"logging"`
}

// Output controls where artifacts land.
type Output struct {
	Dir        string `toml:"dir"`
	StagingDir string `toml:"staging_dir"`
}

// Fetch controls the extractor and its retry policy.
type Fetch struct {
	AudioBitrate     string   `toml:"audio_bitrate"`
	VideoHeight      int      `toml:"video_height"`
	SubtitleLang     string   `toml:"subtitle_lang"`
	TransientRetries int      `toml:"transient_retries"`
	Browsers         []string `toml:"browsers"`
}

// Lyrics controls the subtitle-to-lyric conversion.
type Lyrics struct {
	MergeGapMS int `toml:"merge_gap_ms"`
}

// Audio controls post-processing of the fetched audio.
type Audio struct {
	LoudnessTarget float64 `toml:"loudness_target"`
	FFmpegPath     string  `toml:"ffmpeg_path"`
	FFprobePath    string  `toml:"ffprobe_path"`
}

// Stems controls the separation backends.
type Stems struct {
	Backend    string `toml:"backend"`
	UmxPath    string `toml:"umx_path"`
	DemucsPath string `toml:"demucs_path"`
}

// Analysis controls tempo/key estimation.
type Analysis struct {
	SampleRate int `toml:"sample_rate"`
}

// Logging controls log output.
type Logging struct {
	Level string `toml:"level"`
}

// Load reads the config file at path, falling back to defaults when the file
// does not exist. An empty path selects the default location.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tunegrab.toml"
	}
	return filepath.Join(home, ".config", "tunegrab", "config.toml")
}

// Validate checks cross-field constraints not expressible in TOML.
func (c Config) Validate() error {
	if c.Fetch.TransientRetries < 0 {
		return fmt.Errorf("fetch.transient_retries must be >= 0, got %d", c.Fetch.TransientRetries)
	}
	if c.Lyrics.MergeGapMS < 0 {
		return fmt.Errorf("lyrics.merge_gap_ms must be >= 0, got %d", c.Lyrics.MergeGapMS)
	}
	if c.Audio.LoudnessTarget >= 0 {
		return fmt.Errorf("audio.loudness_target must be negative LUFS, got %g", c.Audio.LoudnessTarget)
	}
	switch c.Stems.Backend {
	case "openunmix", "demucs":
	default:
		return fmt.Errorf("stems.backend must be openunmix or demucs, got %q", c.Stems.Backend)
	}
	if c.Analysis.SampleRate <= 0 {
		return fmt.Errorf("analysis.sample_rate must be positive, got %d", c.Analysis.SampleRate)
	}
	if len(c.Fetch.Browsers) == 0 {
		return fmt.Errorf("fetch.browsers must name at least one browser")
	}
	return nil
}
