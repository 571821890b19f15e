package analysis

import "math"

// Tempo search range in beats per minute.
const (
	minBPM = 60.0
	maxBPM = 200.0
)

// onsetEnvelope computes per-frame onset strength as positive spectral flux.
func onsetEnvelope(spec [][]float64) []float64 {
	if len(spec) == 0 {
		return nil
	}
	env := make([]float64, len(spec))
	for t := 1; t < len(spec); t++ {
		var flux float64
		for k := range spec[t] {
			if d := spec[t][k] - spec[t-1][k]; d > 0 {
				flux += d
			}
		}
		env[t] = flux
	}
	return env
}

// estimateTempo autocorrelates the onset envelope over the beat-period lag
// range and returns BPM plus a 0..1 confidence. Ambiguous audio yields a
// low-confidence estimate, never an error.
func estimateTempo(env []float64, sampleRate, hop int) (float64, float64) {
	fps := float64(sampleRate) / float64(hop)
	minLag := int(60.0 / maxBPM * fps)
	maxLag := int(60.0 / minBPM * fps)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(env) || len(env) == 0 {
		return 120.0, 0.0
	}

	// subtract the mean so silence doesn't correlate with itself
	var mean float64
	for _, v := range env {
		mean += v
	}
	mean /= float64(len(env))

	centered := make([]float64, len(env))
	for i, v := range env {
		centered[i] = v - mean
	}

	var r0 float64
	for _, v := range centered {
		r0 += v * v
	}
	if r0 == 0 {
		return 120.0, 0.0
	}

	bestLag, bestR := 0, math.Inf(-1)
	for lag := minLag; lag <= maxLag; lag++ {
		var r float64
		for i := lag; i < len(centered); i++ {
			r += centered[i] * centered[i-lag]
		}
		if r > bestR {
			bestR = r
			bestLag = lag
		}
	}
	if bestLag == 0 {
		return 120.0, 0.0
	}

	bpm := 60.0 * fps / float64(bestLag)
	conf := bestR / r0
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return math.Round(bpm*10) / 10, conf
}
