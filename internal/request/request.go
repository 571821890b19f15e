// Package request defines the immutable download request and the validation
// applied to untrusted input before a pipeline run starts.
package request

import (
	"fmt"
	"time"

	"tunegrab/internal/faults"
)

// Kind selects the target artifact type.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// Audio bitrate is fixed at the highest tier the upstream converter supports.
const AudioBitrateKbps = 320

// Video resolution tiers accepted by --quality.
var VideoHeights = []int{480, 720, 1080, 2160}

// TimeRange trims the fetch to a sub-range of the source timeline.
// Zero value means "full media"; a zero End with a nonzero Start means
// "from Start to the end of the media".
type TimeRange struct {
	Start time.Duration
	End   time.Duration
}

func (r TimeRange) IsZero() bool { return r.Start == 0 && r.End == 0 }

func (r TimeRange) validate() error {
	if r.IsZero() {
		return nil
	}
	if r.Start < 0 {
		return fmt.Errorf("start %s is negative", r.Start)
	}
	if r.End != 0 && r.End <= r.Start {
		return fmt.Errorf("end %s must be after start %s", r.End, r.Start)
	}
	return nil
}

// Options enables post-processing stages for a run.
type Options struct {
	Subtitles    bool
	SubtitleLang string
	Normalize    bool
	Analyze      bool
	Stems        bool
	StemBackend  string
	Playlist     bool
}

// Request is an immutable, validated description of one pipeline run. Build
// it with New; a Request that exists has already passed URL validation and
// path sanitization.
type Request struct {
	URL         string
	Kind        Kind
	VideoHeight int
	Range       TimeRange
	OutputDir   string
	Opts        Options
}

// New validates every untrusted field and returns the request. baseDir
// confines the output directory; rawOut is the user-supplied folder request
// relative to it (empty selects baseDir itself).
func New(rawURL, baseDir, rawOut string, kind Kind, videoHeight int, rng TimeRange, opts Options) (*Request, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, faults.Wrap(faults.ErrInput, "validate", "url", err.Error(), nil)
	}
	outDir, err := SanitizeDir(baseDir, rawOut)
	if err != nil {
		return nil, err
	}
	if err := rng.validate(); err != nil {
		return nil, faults.Wrap(faults.ErrInput, "validate", "time range", err.Error(), nil)
	}
	switch kind {
	case KindAudio:
		videoHeight = 0
	case KindVideo:
		if !validHeight(videoHeight) {
			return nil, faults.Wrap(faults.ErrInput, "validate", "quality",
				fmt.Sprintf("unsupported video height %d (want one of %v)", videoHeight, VideoHeights), nil)
		}
	default:
		return nil, faults.Wrap(faults.ErrInput, "validate", "kind", fmt.Sprintf("unknown kind %q", kind), nil)
	}
	if opts.Subtitles && opts.SubtitleLang == "" {
		opts.SubtitleLang = "en"
	}
	return &Request{
		URL:         rawURL,
		Kind:        kind,
		VideoHeight: videoHeight,
		Range:       rng,
		OutputDir:   outDir,
		Opts:        opts,
	}, nil
}

func validHeight(h int) bool {
	for _, v := range VideoHeights {
		if h == v {
			return true
		}
	}
	return false
}
