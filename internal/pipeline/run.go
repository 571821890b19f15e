package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"tunegrab/internal/analysis"
	"tunegrab/internal/extract"
	"tunegrab/internal/faults"
	"tunegrab/internal/lyrics"
	"tunegrab/internal/request"
	"tunegrab/internal/stems"
)

// errAudioOnly explains why a derived-audio stage was skipped for a video
// download.
var errAudioOnly = errors.New("stage applies to audio downloads only, skipped")

// Artifact is one file the run delivered into the output directory.
type Artifact struct {
	Role string
	Path string
}

// Warning records a post-processing stage that failed without sinking the
// run.
type Warning struct {
	Stage   string
	Message string
}

// Outcome is the full result of one run.
type Outcome struct {
	State     State
	Title     string
	Artifacts []Artifact
	Analysis  *analysis.Result
	Warnings  []Warning
	Err       error
	Elapsed   time.Duration
}

func (o *Outcome) warn(stage string, err error) {
	o.Warnings = append(o.Warnings, Warning{Stage: stage, Message: err.Error()})
}

// Run executes the request through the state machine. The returned Outcome
// is never nil; State is Done or Failed and Err is set only on Failed.
func (p *Pipeline) Run(ctx context.Context, req *request.Request) *Outcome {
	start := time.Now()
	out := &Outcome{}
	fail := func(state State, err error) *Outcome {
		out.State = p.transition(state, StateFailed)
		out.Err = err
		out.Elapsed = time.Since(start)
		p.log.Errorf("run failed (%s): %v", faults.Kind(err), err)
		return out
	}

	state := StateValidating
	if err := request.ValidateURL(req.URL); err != nil {
		return fail(state, faults.Wrap(faults.ErrInput, "validate", "url", err.Error(), nil))
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return fail(state, faults.Wrap(faults.ErrInput, "validate", "output dir", err.Error(), nil))
	}

	state = p.transition(state, StateFetching)
	res, state, err := p.fetchWithRecovery(ctx, req, state)
	if err != nil {
		return fail(state, err)
	}
	defer os.RemoveAll(res.StagingDir)
	out.Title = res.Title

	state = p.transition(state, StatePostProcessing)
	primary := p.postProcess(ctx, req, res, out)

	state = p.transition(state, StateFinalizing)
	if err := p.finalize(req, res, primary, out); err != nil {
		return fail(state, err)
	}

	out.State = p.transition(state, StateDone)
	out.Elapsed = time.Since(start)
	return out
}

// fetchWithRecovery drives the Fetching/RateLimited loop: at most one
// credential refresh per run, and a bounded number of transient retries. A
// second throttling response is fatal.
func (p *Pipeline) fetchWithRecovery(ctx context.Context, req *request.Request, state State) (*extract.FetchResult, State, error) {
	cred := p.creds.Current()
	refreshed := false
	transient := 0

	for {
		res, err := p.fetcher.Fetch(ctx, req, cred)
		if err == nil {
			return res, state, nil
		}

		switch {
		case extract.IsRateLimited(err):
			if refreshed {
				p.creds.Invalidate()
				return nil, state, faults.Wrap(faults.ErrAuth, "fetch", "throttled",
					"still throttled after cookie refresh; log in to the video site in a browser and retry later", err)
			}
			state = p.transition(state, StateRateLimited)
			p.log.Warnf("upstream throttling detected, recovering browser session")
			c, rerr := p.recovery(p.cfg.Fetch.Browsers)
			if rerr != nil {
				return nil, state, rerr
			}
			p.creds.Store(c)
			cred = c
			refreshed = true
			p.log.Infof("retrying with cookies from %s", c.Browser)
			state = p.transition(state, StateFetching)

		case faults.Retryable(err) && transient < p.cfg.Fetch.TransientRetries:
			transient++
			p.log.Warnf("transient fetch failure (attempt %d/%d): %v",
				transient, p.cfg.Fetch.TransientRetries, err)
			select {
			case <-time.After(time.Duration(transient) * 2 * time.Second):
			case <-ctx.Done():
				return nil, state, ctx.Err()
			}

		default:
			return nil, state, err
		}
	}
}

// postProcess runs the optional stages against the primary media file.
// Loudness goes first because it rewrites the artifact the other stages read;
// lyrics and analysis then run concurrently; stem separation runs last and
// alone because the backends saturate the machine. Every failure here is a
// warning, not an error.
func (p *Pipeline) postProcess(ctx context.Context, req *request.Request, res *extract.FetchResult, out *Outcome) string {
	primary := res.MediaPaths[0]

	if req.Kind != request.KindAudio {
		for stage, enabled := range map[string]bool{
			"normalize": req.Opts.Normalize,
			"analysis":  req.Opts.Analyze,
			"stems":     req.Opts.Stems,
		} {
			if enabled {
				out.warn(stage, errAudioOnly)
			}
		}
	}

	if req.Opts.Normalize && req.Kind == request.KindAudio {
		if np, err := p.normalize.Normalize(ctx, primary, p.cfg.Audio.LoudnessTarget); err != nil {
			out.warn("normalize", err)
		} else {
			primary = np
		}
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	if req.Opts.Subtitles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lrcPath := filepath.Join(res.StagingDir, baseName(primary)+".lrc")
			gap := time.Duration(p.cfg.Lyrics.MergeGapMS) * time.Millisecond
			path, err := p.toLyrics(res.SubtitlePath, lrcPath, lyrics.ConvertOptions{MergeGap: gap})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.warn("lyrics", err)
				return
			}
			// the raw subtitle track ships alongside the converted lyrics
			out.Artifacts = append(out.Artifacts,
				Artifact{Role: "subtitles", Path: res.SubtitlePath},
				Artifact{Role: "lyrics", Path: path})
		}()
	}

	if req.Opts.Analyze && req.Kind == request.KindAudio {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := p.analyzer.Analyze(ctx, primary, res.StagingDir)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.warn("analysis", err)
				return
			}
			out.Analysis = result
		}()
	}

	wg.Wait()

	if req.Opts.Stems && req.Kind == request.KindAudio {
		p.separateStems(ctx, req, res, primary, out)
	}

	return primary
}

func (p *Pipeline) separateStems(ctx context.Context, req *request.Request, res *extract.FetchResult, primary string, out *Outcome) {
	backend, err := stems.ParseBackend(req.Opts.StemBackend)
	if err != nil {
		out.warn("stems", err)
		return
	}
	sep, err := p.separator(backend)
	if err != nil {
		out.warn("stems", err)
		return
	}
	stemDir := filepath.Join(res.StagingDir, "stems")
	if err := os.MkdirAll(stemDir, 0o755); err != nil {
		out.warn("stems", err)
		return
	}
	set, err := sep.Separate(ctx, primary, stemDir)
	if err != nil {
		out.warn("stems", err)
		return
	}
	for role, path := range set {
		out.Artifacts = append(out.Artifacts, Artifact{Role: "stem:" + role, Path: path})
	}
}

// finalize moves staged artifacts into the output directory and rewrites the
// Outcome paths to their final locations.
func (p *Pipeline) finalize(req *request.Request, res *extract.FetchResult, primary string, out *Outcome) error {
	deliver := func(role, src string) error {
		dest := filepath.Join(req.OutputDir, finalName(src))
		if err := moveFile(src, dest); err != nil {
			return faults.Wrap(nil, "finalize", "move", fmt.Sprintf("deliver %s", role), err)
		}
		out.Artifacts = append(out.Artifacts, Artifact{Role: role, Path: dest})
		return nil
	}

	if err := deliver("media", primary); err != nil {
		return err
	}
	for _, extra := range res.MediaPaths[1:] {
		if extra == primary {
			continue
		}
		if err := deliver("media", extra); err != nil {
			return err
		}
	}

	// staged post-processing artifacts were recorded with staging paths;
	// move them and fix the records in place
	for i, a := range out.Artifacts {
		if !strings.HasPrefix(a.Path, res.StagingDir) {
			continue
		}
		dest := filepath.Join(req.OutputDir, finalName(a.Path))
		if err := moveFile(a.Path, dest); err != nil {
			return faults.Wrap(nil, "finalize", "move", fmt.Sprintf("deliver %s", a.Role), err)
		}
		out.Artifacts[i].Path = dest
	}
	return nil
}

// finalName strips the intermediate ".normalized" tag and scrubs any
// filesystem-hostile characters so delivered files carry a clean title.
func finalName(path string) string {
	name := strings.Replace(filepath.Base(path), ".normalized", "", 1)
	return request.SanitizeName(name)
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// moveFile renames src to dest, copying across filesystems when rename is
// not possible.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	tmp := dest + ".tmp"
	outF, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(outF, in); err != nil {
		outF.Close()
		os.Remove(tmp)
		return err
	}
	if err := outF.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Remove(src)
}
