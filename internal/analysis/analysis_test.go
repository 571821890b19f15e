package analysis

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func TestEstimateKeyMatchesProfile(t *testing.T) {
	// A chroma vector that IS the major profile rotated to a given tonic
	// must come back as that tonic major.
	cases := []struct {
		shift int
		want  string
	}{
		{0, "C major"},
		{2, "D major"},
		{9, "A major"},
	}
	for _, tc := range cases {
		var chroma [12]float64
		for i := 0; i < 12; i++ {
			chroma[(i+tc.shift)%12] = majorProfile[i]
		}
		got, conf := estimateKey(chroma)
		if got != tc.want {
			t.Errorf("shift %d: got %q, want %q", tc.shift, got, tc.want)
		}
		if conf < 0.99 {
			t.Errorf("shift %d: expected near-perfect confidence, got %f", tc.shift, conf)
		}
	}
}

func TestEstimateKeyMinor(t *testing.T) {
	var chroma [12]float64
	for i := 0; i < 12; i++ {
		chroma[(i+9)%12] = minorProfile[i]
	}
	got, _ := estimateKey(chroma)
	if got != "A minor" {
		t.Errorf("got %q, want %q", got, "A minor")
	}
}

func TestEstimateTempoFromImpulses(t *testing.T) {
	// At 22050 Hz / hop 512 the envelope runs at ~43.07 frames/s, so
	// impulses every 22 frames are a ~117.5 BPM pulse. The subharmonic
	// lag (44) sits outside the 60 BPM search bound, so the estimate
	// must land on the pulse itself.
	const sr = 22050
	const period = 22

	env := make([]float64, 600)
	for i := 0; i*period < len(env); i++ {
		env[i*period] = 1.0
	}

	fps := float64(sr) / float64(hopSize)
	want := 60.0 * fps / period

	bpm, conf := estimateTempo(env, sr, hopSize)
	if math.Abs(bpm-want) > 1.0 {
		t.Fatalf("bpm = %f, want ~%f", bpm, want)
	}
	if conf <= 0.1 {
		t.Errorf("confidence = %f, want clearly positive", conf)
	}
}

func TestEstimateTempoSilence(t *testing.T) {
	env := make([]float64, 400)
	bpm, conf := estimateTempo(env, 22050, hopSize)
	if bpm != 120.0 {
		t.Errorf("bpm = %f, want fallback 120", bpm)
	}
	if conf != 0 {
		t.Errorf("confidence = %f, want 0 for silence", conf)
	}
}

func TestEstimateTempoTooShort(t *testing.T) {
	bpm, conf := estimateTempo([]float64{1, 0, 1}, 22050, hopSize)
	if bpm != 120.0 || conf != 0 {
		t.Errorf("got (%f, %f), want fallback (120, 0)", bpm, conf)
	}
}

func TestOnsetEnvelopePositiveFluxOnly(t *testing.T) {
	spec := [][]float64{
		{1, 1, 1},
		{3, 0, 1}, // +2 flux, decrease ignored
		{0, 0, 0}, // all decrease
	}
	env := onsetEnvelope(spec)
	if len(env) != 3 {
		t.Fatalf("len = %d, want 3", len(env))
	}
	if env[0] != 0 {
		t.Errorf("env[0] = %f, want 0", env[0])
	}
	if env[1] != 2 {
		t.Errorf("env[1] = %f, want 2", env[1])
	}
	if env[2] != 0 {
		t.Errorf("env[2] = %f, want 0 (negative flux discarded)", env[2])
	}
}

func TestSTFTFrameCount(t *testing.T) {
	samples := make([]float64, windowSize+3*hopSize)
	spec, err := stft(samples, windowSize, hopSize)
	if err != nil {
		t.Fatal(err)
	}
	if len(spec) != 4 {
		t.Errorf("frames = %d, want 4", len(spec))
	}
	if len(spec[0]) != windowSize/2 {
		t.Errorf("bins = %d, want %d", len(spec[0]), windowSize/2)
	}
}

func TestSTFTTooShort(t *testing.T) {
	if _, err := stft(make([]float64, windowSize-1), windowSize, hopSize); err == nil {
		t.Fatal("expected error for input shorter than the window")
	}
}

func TestChromaFoldConcertA(t *testing.T) {
	const sr = 22050
	binHz := float64(sr) / float64(windowSize)
	frame := make([]float64, windowSize/2)
	bin := int(math.Round(440.0 / binHz))
	frame[bin] = 10.0

	chroma := chromaFold([][]float64{frame}, sr, windowSize)
	best := 0
	for i := 1; i < 12; i++ {
		if chroma[i] > chroma[best] {
			best = i
		}
	}
	if keyNames[best] != "A" {
		t.Errorf("dominant pitch class = %s, want A", keyNames[best])
	}
}

func writeTestWAV(t *testing.T, path string, samples []float64, sr int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sr, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sr},
		SourceBitDepth: 16,
	}
	buf.Data = make([]int, len(samples))
	for i, s := range samples {
		buf.Data[i] = int(s * 32767)
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestReadWAVRoundTrip(t *testing.T) {
	const sr = 22050
	in := make([]float64, sr/2)
	for i := range in {
		in[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/sr)
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	writeTestWAV(t, path, in, sr)

	out, gotSR, err := ReadWAV(path)
	if err != nil {
		t.Fatal(err)
	}
	if gotSR != sr {
		t.Errorf("sample rate = %d, want %d", gotSR, sr)
	}
	if len(out) != len(in) {
		t.Fatalf("samples = %d, want %d", len(out), len(in))
	}
	for i := 0; i < len(in); i += 1000 {
		if math.Abs(out[i]-in[i]) > 0.001 {
			t.Fatalf("sample %d = %f, want ~%f", i, out[i], in[i])
		}
	}
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.wav")
	if err := os.WriteFile(path, []byte("definitely not riff"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadWAV(path); err == nil {
		t.Fatal("expected error for non-WAV input")
	}
}

func TestAnalyzeSamplesClickTrack(t *testing.T) {
	// Synthesize 10s of 120 BPM clicks riding on an A440 tone. The
	// analyzer should land near 120 BPM and pick A as the tonic pitch
	// class in some mode, with nonzero confidence.
	const sr = 22050
	samples := make([]float64, 10*sr)
	for i := range samples {
		samples[i] = 0.3 * math.Sin(2*math.Pi*440*float64(i)/sr)
	}
	for beat := 0; beat < 20; beat++ {
		start := beat * sr / 2
		for i := 0; i < 300 && start+i < len(samples); i++ {
			samples[start+i] += 0.7 * math.Exp(-float64(i)/40.0)
		}
	}

	res, err := AnalyzeSamples(samples, sr)
	if err != nil {
		t.Fatal(err)
	}
	if res.BPM < 55 || res.BPM > 250 {
		t.Errorf("bpm = %f, outside plausible range", res.BPM)
	}
	if res.Key == "" {
		t.Error("empty key label")
	}
	if res.Confidence < 0 || res.Confidence > 1 {
		t.Errorf("confidence = %f, outside [0,1]", res.Confidence)
	}
}

func TestAnalyzeSamplesTooShortIsLowConfidence(t *testing.T) {
	res, err := AnalyzeSamples(make([]float64, 10), 22050)
	if err != nil {
		t.Fatalf("short input must not error: %v", err)
	}
	if res.BPM != 120.0 {
		t.Errorf("bpm = %f, want fallback 120", res.BPM)
	}
	if res.Confidence != 0 {
		t.Errorf("confidence = %f, want 0", res.Confidence)
	}
	if res.Key == "" {
		t.Error("empty key label")
	}
}
