// Package loop implements the feedback side of the tracking engine:
// discriminators, second-order loop filters, and the variance-summing
// C/No estimator.
package loop

import (
	"math"

	"github.com/min-zhi/gnss-intrinsics/internal/dsp"
)

// CarrierDiscriminator maps the prompt correlator outputs to a carrier
// phase error in cycles: atan2(Q_P, I_P) / 2π. A dead prompt (both
// components zero) yields zero error rather than a NaN that would
// poison the loop-filter state.
func CarrierDiscriminator(ip, qp float64) float64 {
	if ip == 0 && qp == 0 {
		return 0
	}
	return math.Atan2(qp, ip) / (2 * math.Pi)
}

// CodeDiscriminator maps early/late correlator outputs to a normalized
// envelope error: (|E|-|L|)/(|E|+|L|). A zero denominator yields zero
// error.
func CodeDiscriminator(s dsp.EpochSums) float64 {
	e := math.Sqrt(s.IE*s.IE + s.QE*s.QE)
	l := math.Sqrt(s.IL*s.IL + s.QL*s.QL)
	if e+l == 0 {
		return 0
	}
	return (e - l) / (e + l)
}
