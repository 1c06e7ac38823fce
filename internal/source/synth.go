package source

import (
	"context"
	"math"
	"math/rand"

	"github.com/min-zhi/gnss-intrinsics/internal/cacode"
)

// SynthConfig describes the signal a SynthSource emits.
type SynthConfig struct {
	SampFreq  float64
	CarrFreq  float64 // IF carrier in Hz
	CodeFreq  float64 // chipping rate in Hz
	Amplitude float64 // peak sample value before noise
	NoiseRMS  float64 // additive Gaussian noise, 0 for noiseless
	Limit     int64   // total samples before exhaustion, 0 = unbounded
	Seed      int64
}

// SynthSource synthesizes a code-modulated IF carrier, the moral
// equivalent of a hardware mock: deterministic for a given seed and
// continuous across reads.
type SynthSource struct {
	cfg  SynthConfig
	code *cacode.Table
	pos  int64
	rng  *rand.Rand
}

// NewSynth builds a synthetic source over the given ranging code.
func NewSynth(cfg SynthConfig, code *cacode.Table) *SynthSource {
	if cfg.Amplitude == 0 {
		cfg.Amplitude = 32
	}
	return &SynthSource{
		cfg:  cfg,
		code: code,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
	}
}

func (s *SynthSource) Seek(_ context.Context, sampleOffset int64) error {
	s.pos = sampleOffset
	return nil
}

func (s *SynthSource) Read(ctx context.Context, dst []int8) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.Limit > 0 && s.pos+int64(len(dst)) > s.cfg.Limit {
		got := s.cfg.Limit - s.pos
		if got < 0 {
			got = 0
		}
		return &Shortfall{Wanted: len(dst), Got: int(got)}
	}
	chipStep := s.cfg.CodeFreq / s.cfg.SampFreq
	carrStep := 2 * math.Pi * s.cfg.CarrFreq / s.cfg.SampFreq
	codeLen := float64(s.code.Len())
	for i := range dst {
		t := float64(s.pos + int64(i))
		chip := int(math.Mod(t*chipStep, codeLen))
		v := s.cfg.Amplitude * float64(s.code.At(chip)) * math.Cos(carrStep*t)
		if s.cfg.NoiseRMS > 0 {
			v += s.rng.NormFloat64() * s.cfg.NoiseRMS
		}
		dst[i] = clampInt8(math.Round(v))
	}
	s.pos += int64(len(dst))
	return nil
}

func (s *SynthSource) Close() error { return nil }

func clampInt8(v float64) int8 {
	if v > 127 {
		return 127
	}
	if v < -128 {
		return -128
	}
	return int8(v)
}
