package request

import (
	"fmt"
	"net/url"
	"strings"
)

const maxURLLength = 2048

// allowedHosts is the whitelist of upstream domains. Everything else is
// rejected, including well-formed URLs to other hosts.
var allowedHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"youtu.be":          true,
	"music.youtube.com": true,
}

// ValidateURL reports whether raw is an acceptable upstream link. It is
// side-effect-free and rejects anything outside the host whitelist.
func ValidateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("empty URL")
	}
	if len(raw) > maxURLLength {
		return fmt.Errorf("URL exceeds %d characters", maxURLLength)
	}
	for _, r := range raw {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("URL contains control characters")
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme %q not allowed", u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if !allowedHosts[host] {
		return fmt.Errorf("host %q is not a supported video site", host)
	}
	if strings.TrimPrefix(u.Path, "/") == "" && u.RawQuery == "" {
		return fmt.Errorf("URL has no video path")
	}
	return nil
}

// VideoID extracts the upstream video identifier from a validated URL. It
// understands watch URLs, short links, and embed paths.
func VideoID(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	host := strings.ToLower(u.Hostname())

	if host == "youtu.be" {
		if id := strings.Trim(u.Path, "/"); id != "" {
			return id, nil
		}
		return "", fmt.Errorf("no video ID in short link")
	}

	if id := u.Query().Get("v"); id != "" {
		return id, nil
	}
	for _, prefix := range []string{"/embed/", "/v/", "/shorts/"} {
		if strings.HasPrefix(u.Path, prefix) {
			if id := strings.TrimPrefix(u.Path, prefix); id != "" {
				return strings.SplitN(id, "/", 2)[0], nil
			}
		}
	}
	return "", fmt.Errorf("unable to extract video ID from %s", raw)
}
