// Package extract adapts the yt-dlp downloader to pipeline requests. All
// upstream interaction goes through the go-ytdlp command builder, so URLs and
// user input are passed as discrete arguments and never touch a shell.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lrstanley/go-ytdlp"

	"tunegrab/internal/auth"
	"tunegrab/internal/faults"
	"tunegrab/internal/request"
	"tunegrab/pkg/logger"
)

// FetchResult describes what one fetch left in the staging directory.
type FetchResult struct {
	Title        string
	ID           string
	MediaPaths   []string
	SubtitlePath string
	StagingDir   string
}

// Adapter drives yt-dlp. StagingRoot is the parent for per-run staging
// directories; each fetch gets its own so concurrent runs never collide.
type Adapter struct {
	StagingRoot string

	// run executes the built command; swappable for tests.
	run func(ctx context.Context, dl *ytdlp.Command, url string) (*ytdlp.Result, error)
}

func New(stagingRoot string) *Adapter {
	return &Adapter{
		StagingRoot: stagingRoot,
		run: func(ctx context.Context, dl *ytdlp.Command, url string) (*ytdlp.Result, error) {
			return dl.Run(ctx, url)
		},
	}
}

// EnsureInstalled downloads a pinned yt-dlp binary when none is on PATH.
func EnsureInstalled(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, &ytdlp.InstallOptions{}); err != nil {
		return faults.Wrap(faults.ErrDependency, "fetch", "yt-dlp",
			"yt-dlp is not installed and could not be downloaded", err)
	}
	return nil
}

// Fetch downloads the requested media into a fresh staging directory. cred
// may be nil; when set, yt-dlp reads cookies from that browser's store.
func (a *Adapter) Fetch(ctx context.Context, req *request.Request, cred *auth.Credential) (*FetchResult, error) {
	stage := filepath.Join(a.StagingRoot, uuid.NewString())
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	dl := a.build(req, cred, stage)

	log := logger.GetLogger()
	dl.ProgressFunc(500*time.Millisecond, func(update ytdlp.ProgressUpdate) {
		if update.TotalBytes > 0 {
			pct := float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
			log.Debugf("downloading: %.1f%% (%d/%d bytes)", pct, update.DownloadedBytes, update.TotalBytes)
		}
	})

	result, err := a.run(ctx, dl, req.URL)
	if err != nil {
		os.RemoveAll(stage)
		return nil, classify(ctx, err)
	}

	res := &FetchResult{StagingDir: stage}
	res.ID, _ = request.VideoID(req.URL)
	if result != nil {
		if infos, ierr := result.GetExtractedInfo(); ierr == nil && len(infos) > 0 {
			if infos[0].Title != nil {
				res.Title = *infos[0].Title
			}
		}
	}

	if err := a.collect(stage, res); err != nil {
		os.RemoveAll(stage)
		return nil, err
	}
	log.Infof("fetched %d file(s) for %q", len(res.MediaPaths), res.Title)
	return res, nil
}

// build translates the request into a yt-dlp invocation.
func (a *Adapter) build(req *request.Request, cred *auth.Credential, stage string) *ytdlp.Command {
	dl := ytdlp.New().
		ForceOverwrites().
		RestrictFilenames().
		Output(stage + "/%(title)s.%(ext)s")

	dl.Format(formatExpr(req))
	if req.Kind == request.KindAudio {
		dl.ExtractAudio().
			AudioFormat("mp3").
			AudioQuality(strconv.Itoa(request.AudioBitrateKbps) + "K").
			EmbedMetadata().
			EmbedThumbnail()
	}

	if !req.Range.IsZero() {
		dl.DownloadSections("*" + sectionSpec(req.Range)).
			ForceKeyframesAtCuts()
	}

	if req.Opts.Subtitles {
		// auto-generated captions are the fallback when no authored track exists
		dl.WriteSubs().
			WriteAutoSubs().
			SubLangs(req.Opts.SubtitleLang).
			ConvertSubs("srt")
	}

	if req.Opts.Playlist {
		dl.YesPlaylist()
	} else {
		dl.NoPlaylist()
	}

	if cred != nil && cred.Browser != "" {
		dl.CookiesFromBrowser(cred.Browser)
	}
	return dl
}

// collect partitions staged files into media and subtitles.
func (a *Adapter) collect(stage string, res *FetchResult) error {
	entries, err := os.ReadDir(stage)
	if err != nil {
		return fmt.Errorf("read staging dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(stage, e.Name())
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".srt", ".vtt":
			res.SubtitlePath = path
		case ".part", ".ytdl":
			// leftover partials are never artifacts
		default:
			res.MediaPaths = append(res.MediaPaths, path)
		}
	}
	if len(res.MediaPaths) == 0 {
		return faults.Wrap(faults.ErrNotFound, "fetch", "collect",
			"download produced no media files", nil)
	}
	if res.Title == "" {
		base := filepath.Base(res.MediaPaths[0])
		res.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return nil
}

// formatExpr renders the yt-dlp format selector for the request: highest
// audio for extraction, or height-capped video plus matching audio.
func formatExpr(req *request.Request) string {
	if req.Kind == request.KindVideo {
		return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]",
			req.VideoHeight, req.VideoHeight)
	}
	return "bestaudio/best"
}

// sectionSpec renders a trim range the way yt-dlp's --download-sections
// expects, with an open end when End is unset.
func sectionSpec(r request.TimeRange) string {
	end := "inf"
	if r.End > 0 {
		end = seconds(r.End)
	}
	return seconds(r.Start) + "-" + end
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
