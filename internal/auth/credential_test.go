package auth

import (
	"errors"
	"testing"

	"tunegrab/internal/faults"
)

func TestRecoverReturnsFirstBrowserWithProfile(t *testing.T) {
	finder := func(browser string) bool { return browser == "chrome" || browser == "edge" }

	cred, err := Recover([]string{"firefox", "chrome", "edge"}, finder)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if cred.Browser != "chrome" {
		t.Errorf("browser = %q, want chrome (first hit in order)", cred.Browser)
	}
	if cred.Obtained.IsZero() {
		t.Error("obtained timestamp not set")
	}
}

func TestRecoverNoProfileIsAuthError(t *testing.T) {
	finder := func(string) bool { return false }

	_, err := Recover([]string{"firefox", "chrome"}, finder)
	if err == nil {
		t.Fatal("expected error when no browser has a profile")
	}
	if !errors.Is(err, faults.ErrAuth) {
		t.Errorf("error not tagged ErrAuth: %v", err)
	}
}

func TestCacheStoreAndInvalidate(t *testing.T) {
	var cache Cache
	if cache.Current() != nil {
		t.Fatal("fresh cache should be empty")
	}

	cred := &Credential{Browser: "firefox"}
	cache.Store(cred)
	if got := cache.Current(); got != cred {
		t.Errorf("Current() = %v, want stored credential", got)
	}

	cache.Invalidate()
	if cache.Current() != nil {
		t.Error("cache not cleared after Invalidate")
	}
}
