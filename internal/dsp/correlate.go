package dsp

import "fmt"

// Policy selects how a correlation accumulates.
type Policy int

const (
	// Exact accumulates in 64 bits; the batched result equals the
	// sequential left-to-right reduction bit for bit.
	Exact Policy = iota
	// Saturate models narrow-word SIMD accumulation: each product is
	// truncated to int16 and every partial sum clamps to the int16
	// range, including the final lane reduction. Saturation makes the
	// result order-dependent, so scalar and batched backends may
	// legitimately disagree once clamping engages; both stay within
	// the lane range.
	Saturate
)

func (p Policy) String() string {
	switch p {
	case Exact:
		return "exact"
	case Saturate:
		return "saturate"
	default:
		return "unknown"
	}
}

// ParsePolicy converts a string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "exact", "":
		return Exact, nil
	case "saturate", "sat":
		return Saturate, nil
	default:
		return Policy(0), fmt.Errorf("unsupported accumulation policy %q", s)
	}
}

// Correlator multiplies two equal-length int16 sequences element-wise
// and reduces to a single sum under its accumulation policy.
type Correlator interface {
	Dot(a, b []int16) int64
	Policy() Policy
}

const (
	laneMax = 32767
	laneMin = -32768
	// laneCount is the lane width of the batched backend, matching a
	// 256-bit register of 16-bit lanes.
	laneCount = 16
)

func satAdd16(acc, v int32) int32 {
	s := acc + v
	if s > laneMax {
		return laneMax
	}
	if s < laneMin {
		return laneMin
	}
	return s
}

// wrapMul16 truncates the 32-bit product to its low 16 bits, matching
// a mullo on 16-bit lanes.
func wrapMul16(a, b int16) int32 {
	return int32(int16(int32(a) * int32(b)))
}

// ScalarCorrelator reduces strictly left to right.
type ScalarCorrelator struct {
	policy Policy
}

// NewScalarCorrelator builds the sequential reference backend.
func NewScalarCorrelator(policy Policy) *ScalarCorrelator {
	return &ScalarCorrelator{policy: policy}
}

func (c *ScalarCorrelator) Policy() Policy { return c.policy }

func (c *ScalarCorrelator) Dot(a, b []int16) int64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if c.policy == Saturate {
		var acc int32
		for i := 0; i < n; i++ {
			acc = satAdd16(acc, wrapMul16(a[i], b[i]))
		}
		return int64(acc)
	}
	var acc int64
	for i := 0; i < n; i++ {
		acc += int64(a[i]) * int64(b[i])
	}
	return acc
}

// BatchCorrelator reduces across laneCount independent partial sums,
// the way a vector unit accumulates, then folds the lanes together.
type BatchCorrelator struct {
	policy Policy
}

// NewBatchCorrelator builds the lane-batched backend.
func NewBatchCorrelator(policy Policy) *BatchCorrelator {
	return &BatchCorrelator{policy: policy}
}

func (c *BatchCorrelator) Policy() Policy { return c.policy }

func (c *BatchCorrelator) Dot(a, b []int16) int64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	full := n / laneCount * laneCount

	if c.policy == Saturate {
		var lanes [laneCount]int32
		for i := 0; i < full; i += laneCount {
			for k := 0; k < laneCount; k++ {
				lanes[k] = satAdd16(lanes[k], wrapMul16(a[i+k], b[i+k]))
			}
		}
		var acc int32
		for _, v := range lanes {
			acc = satAdd16(acc, v)
		}
		// Leftover samples reduce sequentially into the folded sum.
		for i := full; i < n; i++ {
			acc = satAdd16(acc, wrapMul16(a[i], b[i]))
		}
		return int64(acc)
	}

	var lanes [laneCount]int64
	for i := 0; i < full; i += laneCount {
		for k := 0; k < laneCount; k++ {
			lanes[k] += int64(a[i+k]) * int64(b[i+k])
		}
	}
	var acc int64
	for _, v := range lanes {
		acc += v
	}
	for i := full; i < n; i++ {
		acc += int64(a[i]) * int64(b[i])
	}
	return acc
}

// NewCorrelator selects a backend by name ("scalar" or "batch").
func NewCorrelator(backend string, policy Policy) (Correlator, error) {
	switch backend {
	case "scalar":
		return NewScalarCorrelator(policy), nil
	case "batch", "":
		return NewBatchCorrelator(policy), nil
	default:
		return nil, fmt.Errorf("unknown correlator backend %q", backend)
	}
}

// Mix multiplies raw int8 samples with a carrier waveform element-wise
// into dst. Not accumulated; carrier amplitude keeps the product
// inside int16.
func Mix(dst []int16, samples []int8, carrier []int16) {
	n := len(dst)
	for i := 0; i < n; i++ {
		dst[i] = int16(samples[i]) * carrier[i]
	}
}

// EpochSums carries the six correlation outputs of one epoch.
type EpochSums struct {
	IE, QE, IP, QP, IL, QL float64
}

// CorrelateEpoch computes the six {I,Q} x {E,P,L} sums from the mixed
// in-phase/quadrature baseband and the code replicas.
func CorrelateEpoch(c Correlator, mixedI, mixedQ []int16, replicas *CodeReplicas) EpochSums {
	return EpochSums{
		IE: float64(c.Dot(replicas.Early, mixedI)),
		IP: float64(c.Dot(replicas.Prompt, mixedI)),
		IL: float64(c.Dot(replicas.Late, mixedI)),
		QE: float64(c.Dot(replicas.Early, mixedQ)),
		QP: float64(c.Dot(replicas.Prompt, mixedQ)),
		QL: float64(c.Dot(replicas.Late, mixedQ)),
	}
}
