package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// STFT tunables.
const (
	windowSize = 2048
	hopSize    = 512
)

// hamming returns a Hamming window of length n.
func hamming(n int) []float64 {
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// stft computes a time-major magnitude spectrogram (positive frequencies
// only) with a Hamming window.
func stft(samples []float64, win, hop int) ([][]float64, error) {
	if len(samples) < win {
		return nil, errors.New("input shorter than analysis window")
	}
	window := hamming(win)

	var frames [][]float64
	for start := 0; start+win <= len(samples); start += hop {
		frame := make([]float64, win)
		for i := 0; i < win; i++ {
			frame[i] = samples[start+i] * window[i]
		}
		spec := fft.FFTReal(frame)
		mag := make([]float64, win/2)
		for i := range mag {
			mag[i] = cmplx.Abs(spec[i])
		}
		frames = append(frames, mag)
	}
	return frames, nil
}
