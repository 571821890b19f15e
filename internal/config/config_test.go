package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fetch.AudioBitrate != defaultAudioBitrate {
		t.Errorf("audio bitrate = %q, want default %q", cfg.Fetch.AudioBitrate, defaultAudioBitrate)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := `
[lyrics]
merge_gap_ms = 250

[fetch]
transient_retries = 5

[stems]
backend = "demucs"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Lyrics.MergeGapMS != 250 {
		t.Errorf("merge_gap_ms = %d, want 250", cfg.Lyrics.MergeGapMS)
	}
	if cfg.Fetch.TransientRetries != 5 {
		t.Errorf("transient_retries = %d, want 5", cfg.Fetch.TransientRetries)
	}
	if cfg.Stems.Backend != "demucs" {
		t.Errorf("stems backend = %q, want demucs", cfg.Stems.Backend)
	}
	// untouched keys keep their defaults
	if cfg.Audio.LoudnessTarget != defaultLoudnessTarget {
		t.Errorf("loudness_target = %g, want default %g", cfg.Audio.LoudnessTarget, defaultLoudnessTarget)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.Fetch.TransientRetries = -1 },
		func(c *Config) { c.Lyrics.MergeGapMS = -5 },
		func(c *Config) { c.Audio.LoudnessTarget = 3 },
		func(c *Config) { c.Stems.Backend = "spleeter" },
		func(c *Config) { c.Analysis.SampleRate = 0 },
		func(c *Config) { c.Fetch.Browsers = nil },
	}
	for i, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}
