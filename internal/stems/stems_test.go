package stems

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tunegrab/internal/faults"
)

func TestParseBackend(t *testing.T) {
	cases := []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{"openunmix", BackendOpenUnmix, false},
		{"Demucs", BackendDemucs, false},
		{" demucs ", BackendDemucs, false},
		{"spleeter", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseBackend(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseBackend(%q) = %v, want error", tc.in, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseBackend(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
}

func TestForBackendDispatch(t *testing.T) {
	ou, err := ForBackend(BackendOpenUnmix, Config{})
	if err != nil || ou.Name() != "openunmix" {
		t.Errorf("ForBackend(openunmix) = %v, %v", ou, err)
	}
	dm, err := ForBackend(BackendDemucs, Config{})
	if err != nil || dm.Name() != "demucs" {
		t.Errorf("ForBackend(demucs) = %v, %v", dm, err)
	}
	if _, err := ForBackend(Backend("x"), Config{}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestSeparateMissingBinaryIsDependencyError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "definitely-not-installed")

	for _, sep := range []Separator{
		&openUnmix{bin: missing},
		&demucs{bin: missing},
	} {
		_, err := sep.Separate(context.Background(), "in.wav", t.TempDir())
		if err == nil {
			t.Fatalf("%s: expected error for missing binary", sep.Name())
		}
		if !errors.Is(err, faults.ErrDependency) {
			t.Errorf("%s: error not tagged ErrDependency: %v", sep.Name(), err)
		}
	}
}

func TestCollectStemsFlattensAndRenames(t *testing.T) {
	outDir := t.TempDir()
	stemDir := filepath.Join(outDir, "htdemucs", "mysong")
	if err := os.MkdirAll(stemDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"vocals.wav", "no_vocals.wav"} {
		if err := os.WriteFile(filepath.Join(stemDir, name), []byte("pcm"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	set, err := collectStems(stemDir, outDir, "mysong",
		[]string{"vocals", "no_vocals", "drums"},
		map[string]string{"no_vocals": "backing_track"})
	if err != nil {
		t.Fatalf("collectStems: %v", err)
	}

	if len(set) != 2 {
		t.Fatalf("collected %d stems, want 2: %v", len(set), set)
	}
	if set["backing_track"] != filepath.Join(outDir, "mysong_backing_track.wav") {
		t.Errorf("no_vocals not renamed: %v", set)
	}
	if _, err := os.Stat(set["vocals"]); err != nil {
		t.Errorf("vocals stem not moved: %v", err)
	}
}

func TestCollectStemsEmptyIsError(t *testing.T) {
	if _, err := collectStems(t.TempDir(), t.TempDir(), "x", []string{"vocals"}, nil); err == nil {
		t.Error("expected error when no stems produced")
	}
}
