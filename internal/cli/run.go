package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tunegrab/internal/config"
	"tunegrab/internal/extract"
	"tunegrab/internal/faults"
	"tunegrab/internal/ffmpeg"
	"tunegrab/internal/pipeline"
	"tunegrab/internal/request"
	"tunegrab/pkg/logger"
)

func run(cmd *cobra.Command, url string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	applyLogLevel(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ff := ffmpeg.New(cfg.Audio.FFmpegPath, cfg.Audio.FFprobePath)
	if err := ff.CheckInstalled(); err != nil {
		return err
	}
	if err := extract.EnsureInstalled(ctx); err != nil {
		return err
	}

	req, err := buildRequest(cmd, url, cfg)
	if err != nil {
		return err
	}

	out := pipeline.New(cfg).Run(ctx, req)
	render(cmd, out)
	if out.State == pipeline.StateFailed {
		return fmt.Errorf("%s: %w", faults.Kind(out.Err), out.Err)
	}
	return nil
}

func buildRequest(cmd *cobra.Command, url string, cfg config.Config) (*request.Request, error) {
	outFlag, _ := cmd.Flags().GetString("out")
	video, _ := cmd.Flags().GetBool("video")
	quality, _ := cmd.Flags().GetInt("quality")
	startStr, _ := cmd.Flags().GetString("start")
	endStr, _ := cmd.Flags().GetString("end")

	kind := request.KindAudio
	if video {
		kind = request.KindVideo
		if quality == 0 {
			quality = cfg.Fetch.VideoHeight
		}
	}

	var rng request.TimeRange
	if startStr != "" || endStr != "" {
		var err error
		if rng.Start, err = parseTimePoint(startStr); err != nil {
			return nil, fmt.Errorf("--start: %w", err)
		}
		if rng.End, err = parseTimePoint(endStr); err != nil {
			return nil, fmt.Errorf("--end: %w", err)
		}
	}

	subs, _ := cmd.Flags().GetBool("subs")
	subLang, _ := cmd.Flags().GetString("sub-lang")
	if subLang == "" {
		subLang = cfg.Fetch.SubtitleLang
	}
	normalize, _ := cmd.Flags().GetBool("normalize")
	analyze, _ := cmd.Flags().GetBool("analyze")
	stemsOn, _ := cmd.Flags().GetBool("stems")
	backend, _ := cmd.Flags().GetString("stem-backend")
	if backend == "" {
		backend = cfg.Stems.Backend
	}
	playlist, _ := cmd.Flags().GetBool("playlist")

	opts := request.Options{
		Subtitles:    subs,
		SubtitleLang: subLang,
		Normalize:    normalize,
		Analyze:      analyze,
		Stems:        stemsOn,
		StemBackend:  backend,
		Playlist:     playlist,
	}
	return request.New(url, cfg.Output.Dir, outFlag, kind, quality, rng, opts)
}

// parseTimePoint accepts plain seconds ("90", "90.5"), MM:SS, HH:MM:SS, or
// a Go duration string ("1m30s"). Empty means unset.
func parseTimePoint(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) > 3 {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
		var total float64
		for _, p := range parts {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil || v < 0 {
				return 0, fmt.Errorf("invalid timestamp %q", s)
			}
			total = total*60 + v
		}
		return time.Duration(total * float64(time.Second)), nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if v < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
		return time.Duration(v * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	return d, nil
}

// render prints the run outcome as a table plus any warnings.
func render(cmd *cobra.Command, out *pipeline.Outcome) {
	if out.State == pipeline.StateFailed {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.SetTitle(out.Title)
	t.AppendHeader(table.Row{"Artifact", "Path"})
	for _, a := range out.Artifacts {
		t.AppendRow(table.Row{a.Role, a.Path})
	}
	t.Render()

	if out.Analysis != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "analysis: %s (confidence %.2f)\n",
			out.Analysis, out.Analysis.Confidence)
	}
	for _, w := range out.Warnings {
		logger.Warnf("%s: %s", w.Stage, w.Message)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "done in %s\n", out.Elapsed.Round(time.Millisecond))
}

func applyLogLevel(level string) {
	log := logger.GetLogger()
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		log.SetLevel(logger.DEBUG)
	case "", "info":
		log.SetLevel(logger.INFO)
	case "warn", "warning":
		log.SetLevel(logger.WARN)
	case "error":
		log.SetLevel(logger.ERROR)
	default:
		log.Warnf("unknown log level %q, using info", level)
	}
}
