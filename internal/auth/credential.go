// Package auth recovers session credentials from local browser cookie stores
// when the upstream starts throttling requests. The credential itself is just
// the browser name; the extractor hands it to yt-dlp which reads the cookie
// store directly. Nothing is persisted beyond process memory.
package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"tunegrab/internal/faults"
)

// Credential names a browser whose cookie store holds a logged-in upstream
// session. Valid for the lifetime of one process.
type Credential struct {
	Browser  string
	Obtained time.Time
}

// Cache is the process-wide credential store. It is filled lazily on the
// first throttling event and invalidated on the second; there are no
// concurrent writers because recovery only runs inside the single retry
// transition of a pipeline run.
type Cache struct {
	mu   sync.Mutex
	cred *Credential
}

func (c *Cache) Current() *Credential {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cred
}

func (c *Cache) Store(cred *Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cred = cred
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cred = nil
}

// ProfileFinder reports whether a browser has a usable local profile.
// Swappable for tests.
type ProfileFinder func(browser string) bool

// Recover probes the ordered browser list for an existing profile and returns
// a credential for the first hit. When no browser profile exists it returns
// an ErrAuth-tagged error whose message doubles as the user-facing hint.
func Recover(browsers []string, finder ProfileFinder) (*Credential, error) {
	if finder == nil {
		finder = HasProfile
	}
	for _, b := range browsers {
		if finder(b) {
			return &Credential{Browser: b, Obtained: time.Now()}, nil
		}
	}
	return nil, faults.Wrap(faults.ErrAuth, "auth", "recover",
		fmt.Sprintf("no browser session found (tried %v); log in to the video site in a browser and retry", browsers), nil)
}

// HasProfile checks the conventional profile locations for the browser on
// the current OS.
func HasProfile(browser string) bool {
	for _, dir := range profileDirs(browser) {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

func profileDirs(browser string) []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	var dirs []string
	switch runtime.GOOS {
	case "darwin":
		app := filepath.Join(home, "Library", "Application Support")
		switch browser {
		case "firefox":
			dirs = append(dirs, filepath.Join(app, "Firefox", "Profiles"))
		case "chrome":
			dirs = append(dirs, filepath.Join(app, "Google", "Chrome"))
		case "chromium":
			dirs = append(dirs, filepath.Join(app, "Chromium"))
		case "brave":
			dirs = append(dirs, filepath.Join(app, "BraveSoftware", "Brave-Browser"))
		case "edge":
			dirs = append(dirs, filepath.Join(app, "Microsoft Edge"))
		}
	case "windows":
		local := os.Getenv("LOCALAPPDATA")
		roaming := os.Getenv("APPDATA")
		switch browser {
		case "firefox":
			dirs = append(dirs, filepath.Join(roaming, "Mozilla", "Firefox", "Profiles"))
		case "chrome":
			dirs = append(dirs, filepath.Join(local, "Google", "Chrome", "User Data"))
		case "chromium":
			dirs = append(dirs, filepath.Join(local, "Chromium", "User Data"))
		case "brave":
			dirs = append(dirs, filepath.Join(local, "BraveSoftware", "Brave-Browser", "User Data"))
		case "edge":
			dirs = append(dirs, filepath.Join(local, "Microsoft", "Edge", "User Data"))
		}
	default:
		cfg := filepath.Join(home, ".config")
		switch browser {
		case "firefox":
			dirs = append(dirs, filepath.Join(home, ".mozilla", "firefox"), filepath.Join(home, "snap", "firefox"))
		case "chrome":
			dirs = append(dirs, filepath.Join(cfg, "google-chrome"))
		case "chromium":
			dirs = append(dirs, filepath.Join(cfg, "chromium"))
		case "brave":
			dirs = append(dirs, filepath.Join(cfg, "BraveSoftware", "Brave-Browser"))
		case "edge":
			dirs = append(dirs, filepath.Join(cfg, "microsoft-edge"))
		}
	}
	return dirs
}
