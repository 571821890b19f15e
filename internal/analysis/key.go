package analysis

import "math"

var keyNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Krumhansl-Schmuckler key profiles.
var (
	majorProfile = []float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	minorProfile = []float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

// chromaFold accumulates spectrogram magnitude into 12 pitch classes. Bins
// outside the musically useful band are ignored.
func chromaFold(spec [][]float64, sampleRate, win int) [12]float64 {
	var chroma [12]float64
	binHz := float64(sampleRate) / float64(win)
	for _, frame := range spec {
		for k, mag := range frame {
			freq := float64(k) * binHz
			if freq < 55 || freq > 2000 {
				continue
			}
			midi := 69 + 12*math.Log2(freq/440.0)
			pc := ((int(math.Round(midi)) % 12) + 12) % 12
			chroma[pc] += mag
		}
	}
	return chroma
}

// estimateKey matches the chroma vector against major/minor templates over
// all 12 rotations and returns the best label ("A minor") with a 0..1
// confidence derived from the winning correlation.
func estimateKey(chroma [12]float64) (string, float64) {
	bestCorr := math.Inf(-1)
	bestKey := "C"
	bestMode := "major"

	for shift := 0; shift < 12; shift++ {
		rolled := rollChroma(chroma, shift)
		if c := correlate(rolled, majorProfile); c > bestCorr {
			bestCorr = c
			bestKey = keyNames[shift]
			bestMode = "major"
		}
		if c := correlate(rolled, minorProfile); c > bestCorr {
			bestCorr = c
			bestKey = keyNames[shift]
			bestMode = "minor"
		}
	}

	conf := bestCorr
	if math.IsNaN(conf) || conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return bestKey + " " + bestMode, conf
}

// rollChroma rotates the chroma vector so that pitch class `shift` lands at
// index 0.
func rollChroma(chroma [12]float64, shift int) []float64 {
	out := make([]float64, 12)
	for i := 0; i < 12; i++ {
		out[i] = chroma[(i+shift)%12]
	}
	return out
}

// correlate computes the Pearson correlation of two equal-length vectors.
func correlate(a, b []float64) float64 {
	n := float64(len(a))
	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}
