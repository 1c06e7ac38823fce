package loop

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ceilingDBHz caps reported C/No; windows with no measurable noise
// saturate here instead of reading infinite.
const ceilingDBHz = 100.0

// CNoEstimate is one carrier-to-noise-density reading, indexed by the
// epoch at which its accumulation interval closed.
type CNoEstimate struct {
	Epoch int
	DBHz  float64
}

// CNoEstimator implements the variance-summing method: it accumulates
// prompt power over a fixed number of epochs and converts the mean and
// population variance of that window into a C/No reading.
type CNoEstimator struct {
	interval int
	accInt   float64
	powers   []float64
}

// NewCNoEstimator builds an estimator emitting one reading every
// interval epochs, with accInt the coherent integration time in
// seconds.
func NewCNoEstimator(interval int, accInt float64) (*CNoEstimator, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("cno interval must be positive, got %d", interval)
	}
	if accInt <= 0 {
		return nil, fmt.Errorf("cno integration time must be positive, got %g", accInt)
	}
	return &CNoEstimator{
		interval: interval,
		accInt:   accInt,
		powers:   make([]float64, 0, interval),
	}, nil
}

// Update accumulates one epoch's prompt power. When the window fills,
// it emits the C/No estimate for the given epoch index and resets the
// accumulator.
func (e *CNoEstimator) Update(epoch int, ip, qp float64) (CNoEstimate, bool) {
	e.powers = append(e.powers, ip*ip+qp*qp)
	if len(e.powers) < e.interval {
		return CNoEstimate{}, false
	}

	mean := stat.Mean(e.powers, nil)
	variance := stat.PopVariance(e.powers, nil)
	avgSqr := math.Abs(mean*mean - variance)
	avg := math.Sqrt(avgSqr)
	noiseVar := 0.5 * (mean - avg)

	// A zero-variance window has no measurable noise; the raw ratio
	// would be infinite, so such windows read as the estimator
	// ceiling instead.
	cno := ceilingDBHz
	if noiseVar != 0 {
		cno = 10 * math.Log10(math.Abs((avg/e.accInt)/(2*noiseVar)))
		if cno > ceilingDBHz {
			cno = ceilingDBHz
		}
	}

	e.powers = e.powers[:0]
	// The historic convention indexes the reading by the epoch count
	// at interval close, one past the zero-based loop index.
	return CNoEstimate{Epoch: epoch + 1, DBHz: cno}, true
}

// Interval returns the configured window length in epochs.
func (e *CNoEstimator) Interval() int { return e.interval }
