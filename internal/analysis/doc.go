// Package analysis provides frequency analysis of probe time series.
//
//   - [PowerSpectrum]: magnitude spectrum of a real signal
//   - [DominantFrequency]: strongest non-zero frequency in a sampled signal
//
// # Example
//
//	freq, err := analysis.DominantFrequency(samples, dt)
//	if err == nil && freq > 0 {
//	    period := 1 / freq
//	}
package analysis
