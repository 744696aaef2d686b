package analysis

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrTooShort = errors.New("analysis: need at least 4 samples")

// PowerSpectrum returns |X_k| for k in [0, N/2) of the zero-padded signal,
// where N is the next power of two at or above len(data).
func PowerSpectrum(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, data)

	spectrum := fft.FFTReal(padded)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the frequency (cycles per unit time) of the
// largest spectral peak, ignoring the mean. dt is the sample interval.
func DominantFrequency(data []float64, dt float64) (float64, error) {
	if len(data) < 4 {
		return 0, ErrTooShort
	}
	if dt <= 0 {
		return 0, errors.New("analysis: sample interval must be positive")
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))
	centred := make([]float64, len(data))
	for i, v := range data {
		centred[i] = v - mean
	}

	ps := PowerSpectrum(centred)
	peak, idx := 0.0, 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > peak {
			peak, idx = ps[i], i
		}
	}

	n := 2 * len(ps)
	return float64(idx) / (float64(n) * dt), nil
}
