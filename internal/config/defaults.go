package config

import (
	"os"
	"path/filepath"
)

const (
	defaultOutputDir        = "downloads"
	defaultAudioBitrate     = "320"
	defaultVideoHeight      = 720
	defaultSubtitleLang     = "en"
	defaultTransientRetries = 2
	defaultMergeGapMS       = 500
	defaultLoudnessTarget   = -14.0
	defaultStemBackend      = "openunmix"
	defaultSampleRate       = 22050
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Output: Output{
			Dir:        defaultOutputDir,
			StagingDir: filepath.Join(os.TempDir(), "tunegrab"),
		},
		Fetch: Fetch{
			AudioBitrate:     defaultAudioBitrate,
			VideoHeight:      defaultVideoHeight,
			SubtitleLang:     defaultSubtitleLang,
			TransientRetries: defaultTransientRetries,
			Browsers:         []string{"firefox", "chrome", "chromium", "brave", "edge"},
		},
		Lyrics: Lyrics{
			MergeGapMS: defaultMergeGapMS,
		},
		Audio: Audio{
			LoudnessTarget: defaultLoudnessTarget,
			FFmpegPath:     "ffmpeg",
			FFprobePath:    "ffprobe",
		},
		Stems: Stems{
			Backend:    defaultStemBackend,
			UmxPath:    "umx",
			DemucsPath: "demucs",
		},
		Analysis: Analysis{
			SampleRate: defaultSampleRate,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
