package source

import (
	"context"
	"errors"
	"testing"

	"github.com/min-zhi/gnss-intrinsics/internal/cacode"
)

func synthCode(t *testing.T) *cacode.Table {
	t.Helper()
	chips, err := cacode.Generate(1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	table, err := cacode.NewTable(chips)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	return table
}

func TestSynthContinuityAcrossReads(t *testing.T) {
	cfg := SynthConfig{
		SampFreq: 8.184e6,
		CarrFreq: 1.023e6,
		CodeFreq: 1.023e6,
		NoiseRMS: 2,
		Seed:     5,
	}
	code := synthCode(t)
	ctx := context.Background()

	// Noise draws depend on read boundaries, so compare the noiseless
	// waveform: two chunked reads must equal one contiguous read.
	cfg.NoiseRMS = 0
	split := NewSynth(cfg, code)
	a := make([]int8, 500)
	b := make([]int8, 300)
	if err := split.Read(ctx, a); err != nil {
		t.Fatalf("read a: %v", err)
	}
	if err := split.Read(ctx, b); err != nil {
		t.Fatalf("read b: %v", err)
	}

	whole := make([]int8, 800)
	if err := NewSynth(cfg, code).Read(ctx, whole); err != nil {
		t.Fatalf("read whole: %v", err)
	}
	for i, v := range a {
		if whole[i] != v {
			t.Fatalf("first chunk diverges at %d", i)
		}
	}
	for i, v := range b {
		if whole[500+i] != v {
			t.Fatalf("second chunk diverges at %d", i)
		}
	}
}

func TestSynthDeterministicForSeed(t *testing.T) {
	cfg := SynthConfig{
		SampFreq: 8.184e6,
		CarrFreq: 1.023e6,
		CodeFreq: 1.023e6,
		NoiseRMS: 4,
		Seed:     42,
	}
	code := synthCode(t)
	ctx := context.Background()

	a := make([]int8, 256)
	b := make([]int8, 256)
	if err := NewSynth(cfg, code).Read(ctx, a); err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := NewSynth(cfg, code).Read(ctx, b); err != nil {
		t.Fatalf("read: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverges at sample %d", i)
		}
	}
}

func TestSynthLimit(t *testing.T) {
	cfg := SynthConfig{
		SampFreq: 8.184e6,
		CarrFreq: 1.023e6,
		CodeFreq: 1.023e6,
		Limit:    700,
	}
	src := NewSynth(cfg, synthCode(t))
	ctx := context.Background()

	dst := make([]int8, 500)
	if err := src.Read(ctx, dst); err != nil {
		t.Fatalf("first read: %v", err)
	}
	err := src.Read(ctx, dst)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	var short *Shortfall
	if !errors.As(err, &short) {
		t.Fatalf("expected Shortfall, got %T", err)
	}
	if short.Wanted != 500 || short.Got != 200 {
		t.Fatalf("shortfall = %+v, want {500 200}", short)
	}
}

func TestSynthAmplitudeBounds(t *testing.T) {
	cfg := SynthConfig{
		SampFreq:  8.184e6,
		CarrFreq:  1.023e6,
		CodeFreq:  1.023e6,
		Amplitude: 120,
		NoiseRMS:  30,
		Seed:      9,
	}
	src := NewSynth(cfg, synthCode(t))
	dst := make([]int8, 4096)
	if err := src.Read(context.Background(), dst); err != nil {
		t.Fatalf("read: %v", err)
	}
	// Values are clamped, never wrapped: a heavily driven synth still
	// produces a waveform whose extremes sit at the int8 rails.
	var peak int8
	for _, v := range dst {
		if v > peak {
			peak = v
		}
	}
	if peak < 100 {
		t.Fatalf("peak %d suspiciously low for amplitude 120", peak)
	}
}
