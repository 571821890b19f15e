// Package pipeline orchestrates one acquisition run as an explicit state
// machine: Validating, Fetching (with a single rate-limit recovery detour),
// PostProcessing, Finalizing, Done. Fetch failures are fatal; post-processing
// failures downgrade to warnings so the primary artifact always survives.
package pipeline

import (
	"context"

	"tunegrab/internal/analysis"
	"tunegrab/internal/auth"
	"tunegrab/internal/config"
	"tunegrab/internal/extract"
	"tunegrab/internal/ffmpeg"
	"tunegrab/internal/lyrics"
	"tunegrab/internal/request"
	"tunegrab/internal/stems"
	"tunegrab/pkg/logger"
)

// State identifies where a run is in its lifecycle.
type State string

const (
	StateValidating     State = "validating"
	StateFetching       State = "fetching"
	StateRateLimited    State = "rate-limited"
	StatePostProcessing State = "post-processing"
	StateFinalizing     State = "finalizing"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// Fetcher downloads media for a validated request into staging.
type Fetcher interface {
	Fetch(ctx context.Context, req *request.Request, cred *auth.Credential) (*extract.FetchResult, error)
}

// Normalizer adjusts a file's loudness and returns the new path.
type Normalizer interface {
	Normalize(ctx context.Context, inputPath string, targetLUFS float64) (string, error)
}

// Analyzer estimates tempo and key for a finished audio file.
type Analyzer interface {
	Analyze(ctx context.Context, audioPath, workDir string) (*analysis.Result, error)
}

// LyricFunc converts an SRT file to LRC. Matches lyrics.ConvertFile.
type LyricFunc func(srtPath, lrcPath string, opts lyrics.ConvertOptions) (string, error)

// RecoverFunc finds a browser session to ride through throttling. Matches
// auth.Recover with a fixed finder.
type RecoverFunc func(browsers []string) (*auth.Credential, error)

// SeparatorFunc builds the stem separator for a backend name.
type SeparatorFunc func(backend stems.Backend) (stems.Separator, error)

// Pipeline holds the wired stage implementations for one or more runs.
type Pipeline struct {
	cfg       config.Config
	fetcher   Fetcher
	normalize Normalizer
	analyzer  Analyzer
	toLyrics  LyricFunc
	recovery  RecoverFunc
	separator SeparatorFunc
	creds     *auth.Cache
	log       *logger.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithFetcher(f Fetcher) Option          { return func(p *Pipeline) { p.fetcher = f } }
func WithNormalizer(n Normalizer) Option    { return func(p *Pipeline) { p.normalize = n } }
func WithAnalyzer(a Analyzer) Option        { return func(p *Pipeline) { p.analyzer = a } }
func WithLyricFunc(fn LyricFunc) Option     { return func(p *Pipeline) { p.toLyrics = fn } }
func WithRecovery(fn RecoverFunc) Option    { return func(p *Pipeline) { p.recovery = fn } }
func WithSeparator(fn SeparatorFunc) Option { return func(p *Pipeline) { p.separator = fn } }

// New wires a pipeline from config, applying any overrides. Defaults cover
// production use; tests swap stages through the options.
func New(cfg config.Config, opts ...Option) *Pipeline {
	ff := ffmpeg.New(cfg.Audio.FFmpegPath, cfg.Audio.FFprobePath)
	p := &Pipeline{
		cfg:       cfg,
		fetcher:   extract.New(cfg.Output.StagingDir),
		normalize: ff,
		analyzer:  analysis.New(ff, cfg.Analysis.SampleRate),
		toLyrics:  lyrics.ConvertFile,
		recovery: func(browsers []string) (*auth.Credential, error) {
			return auth.Recover(browsers, nil)
		},
		separator: func(b stems.Backend) (stems.Separator, error) {
			return stems.ForBackend(b, stems.Config{
				UmxPath:    cfg.Stems.UmxPath,
				DemucsPath: cfg.Stems.DemucsPath,
				LockDir:    cfg.Output.StagingDir,
			})
		},
		creds: &auth.Cache{},
		log:   logger.GetLogger(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pipeline) transition(from, to State) State {
	p.log.Debugf("state: %s -> %s", from, to)
	return to
}
