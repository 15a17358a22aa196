package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the magnitudes of the real FFT of series with its
// mean removed, from the zero frequency up to Nyquist.
func PowerSpectrum(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}
	mean := stat.Mean(series, nil)
	centered := make([]float64, len(series))
	for i, v := range series {
		centered[i] = v - mean
	}
	coeff := fft.FFTReal(centered)
	ps := make([]float64, len(series)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(coeff[i])
	}
	return ps
}

// DominantPeriod estimates the period of the strongest oscillation in a
// series sampled every dt. It reports false for a flat series or when the
// strongest component does not complete two cycles within the series.
func DominantPeriod(series []float64, dt float64) (float64, bool) {
	ps := PowerSpectrum(series)
	if len(ps) < 3 || dt <= 0 {
		return 0, false
	}
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	if ps[best] < 1e-12 || best < 2 {
		return 0, false
	}
	return float64(len(series)) * dt / float64(best), true
}
