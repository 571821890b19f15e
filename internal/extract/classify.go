package extract

import (
	"context"
	"errors"
	"strings"

	"tunegrab/internal/faults"
)

// ErrRateLimited tags throttling responses so the orchestrator can attempt a
// single credential refresh before treating the failure as fatal.
var ErrRateLimited = errors.New("rate limited")

// IsRateLimited reports whether err is an upstream throttling response.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// classify maps raw yt-dlp failures onto the shared error taxonomy by
// inspecting the tool's output, which go-ytdlp folds into the error text.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	msg := strings.ToLower(err.Error())

	switch {
	case containsAny(msg,
		"429", "too many requests", "rate-limit", "rate limit",
		"confirm you're not a bot", "confirm you’re not a bot",
		"sign in to confirm"):
		inner := faults.Wrap(faults.ErrAuth, "fetch", "download",
			"upstream is throttling requests", err)
		return errors.Join(ErrRateLimited, inner)

	case containsAny(msg,
		"video unavailable", "private video", "has been removed",
		"this video is not available", "404"):
		return faults.Wrap(faults.ErrNotFound, "fetch", "download",
			"media is unavailable", err)

	case containsAny(msg, "requested format is not available"):
		return faults.Wrap(faults.ErrUnsupported, "fetch", "download",
			"upstream cannot deliver the requested format", err)

	case containsAny(msg,
		"timed out", "timeout", "connection reset", "connection refused",
		"temporary failure", "unable to download webpage",
		"network is unreachable", "eof occurred"):
		return faults.Wrap(faults.ErrTransient, "fetch", "download",
			"network failure talking to upstream", err)

	default:
		return faults.Wrap(faults.ErrTransient, "fetch", "download",
			"download failed", err)
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
