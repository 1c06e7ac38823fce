package dsp

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// PowerSpectrum returns the magnitude spectrum of a real int16 signal
// in dB relative to full scale, for diagnostic dumps of the mixed
// baseband. The input is not windowed; the caller picks a block that
// spans whole code periods.
func PowerSpectrum(signal []int16, fullScale float64) []float64 {
	if len(signal) == 0 {
		return []float64{}
	}
	in := make([]float64, len(signal))
	for i, v := range signal {
		in[i] = float64(v)
	}
	coeffs := fourier.NewFFT(len(in)).Coefficients(nil, in)
	norm := fullScale * float64(len(in)) / 2
	db := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mag := cmplx.Abs(complex128(c))
		if mag == 0 {
			db[i] = math.Inf(-1)
			continue
		}
		db[i] = 20 * math.Log10(mag/norm)
	}
	return db
}

// PeakBin returns the index of the strongest non-DC bin.
func PeakBin(db []float64) int {
	best := 0
	bestVal := math.Inf(-1)
	for i := 1; i < len(db); i++ {
		if db[i] > bestVal {
			bestVal = db[i]
			best = i
		}
	}
	return best
}
