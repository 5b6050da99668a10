package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// PowerSpectrum computes the magnitude spectrum of evenly sampled
// data. dt is the sampling interval; the returned frequencies are in
// cycles per time unit up to the Nyquist frequency 1/(2 dt).
func PowerSpectrum(samples []float64, dt float64) (freqs, power []float64) {
	if len(samples) < 2 || dt <= 0 {
		return nil, nil
	}

	fft := fourier.NewFFT(len(samples))
	coeffs := fft.Coefficients(nil, samples)

	freqs = make([]float64, len(coeffs))
	power = make([]float64, len(coeffs))
	for i, c := range coeffs {
		freqs[i] = fft.Freq(i) / dt
		power[i] = cmplx.Abs(c)
	}
	return freqs, power
}

// DominantFrequency returns the frequency with the strongest component,
// ignoring the constant offset at frequency zero.
func DominantFrequency(samples []float64, dt float64) float64 {
	freqs, power := PowerSpectrum(samples, dt)
	if len(power) < 2 {
		return 0
	}

	maxIdx := 1
	for i := 2; i < len(power); i++ {
		if power[i] > power[maxIdx] {
			maxIdx = i
		}
	}
	return freqs[maxIdx]
}
