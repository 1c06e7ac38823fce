package dsp

import (
	"math"
	"testing"
)

func TestPowerSpectrumFindsTone(t *testing.T) {
	const (
		n   = 256
		bin = 32
		amp = 100.0
	)
	signal := make([]int16, n)
	for i := range signal {
		signal[i] = int16(math.Round(amp * math.Cos(2*math.Pi*float64(bin)*float64(i)/n)))
	}
	db := PowerSpectrum(signal, amp)
	if len(db) != n/2+1 {
		t.Fatalf("got %d bins, want %d", len(db), n/2+1)
	}
	if got := PeakBin(db); got != bin {
		t.Fatalf("peak at bin %d, want %d", got, bin)
	}
	if math.Abs(db[bin]) > 0.1 {
		t.Fatalf("tone level %.3f dBFS, want ~0", db[bin])
	}
}

func TestPowerSpectrumEmptyInput(t *testing.T) {
	if db := PowerSpectrum(nil, 1); len(db) != 0 {
		t.Fatalf("expected empty spectrum, got %d bins", len(db))
	}
}
