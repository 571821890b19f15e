// Package analysis estimates tempo (BPM) and musical key from a finished
// audio file. Tempo comes from autocorrelated spectral-flux onsets; key from
// a chroma profile matched against major/minor templates. Ambiguous audio
// yields a low-confidence estimate rather than an error; "no tempo" is not a
// meaningful answer for an audible track.
package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"tunegrab/internal/ffmpeg"
)

// Result is the analyzer output. Key is one of the 24 major/minor labels.
type Result struct {
	BPM        float64
	Key        string
	Confidence float64
}

// String renders the result for CLI display.
func (r Result) String() string {
	return fmt.Sprintf("%.1f BPM - %s", r.BPM, r.Key)
}

// Analyzer converts non-WAV input through ffmpeg, then runs the estimators.
type Analyzer struct {
	FFmpeg     *ffmpeg.Adapter
	SampleRate int
}

func New(ff *ffmpeg.Adapter, sampleRate int) *Analyzer {
	if sampleRate <= 0 {
		sampleRate = 22050
	}
	return &Analyzer{FFmpeg: ff, SampleRate: sampleRate}
}

// Analyze estimates tempo and key for the audio file, using workDir for the
// intermediate WAV when the input needs conversion.
func (a *Analyzer) Analyze(ctx context.Context, audioPath, workDir string) (*Result, error) {
	wavPath := audioPath
	if !strings.EqualFold(filepath.Ext(audioPath), ".wav") {
		converted, err := a.FFmpeg.ConvertToWAV(ctx, audioPath, workDir, a.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("convert for analysis: %w", err)
		}
		wavPath = converted
	}

	samples, sr, err := ReadWAV(wavPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", wavPath, err)
	}

	return AnalyzeSamples(samples, sr)
}

// AnalyzeSamples runs the estimators on decoded mono samples. Audio too
// short for even one analysis window still yields a zero-confidence estimate.
func AnalyzeSamples(samples []float64, sampleRate int) (*Result, error) {
	if len(samples) < windowSize {
		key, _ := estimateKey([12]float64{})
		return &Result{BPM: 120.0, Key: key, Confidence: 0}, nil
	}

	spec, err := stft(samples, windowSize, hopSize)
	if err != nil {
		return nil, err
	}

	bpm, tempoConf := estimateTempo(onsetEnvelope(spec), sampleRate, hopSize)
	key, keyConf := estimateKey(chromaFold(spec, sampleRate, windowSize))

	// the weaker estimate bounds how much the pair is worth
	conf := tempoConf
	if keyConf < conf {
		conf = keyConf
	}

	return &Result{BPM: bpm, Key: key, Confidence: conf}, nil
}
