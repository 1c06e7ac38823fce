package loop

import (
	"math"
	"testing"
)

func TestCNoConstantPowerIsFinite(t *testing.T) {
	e, err := NewCNoEstimator(20, 0.001)
	if err != nil {
		t.Fatalf("new estimator: %v", err)
	}
	var got CNoEstimate
	emitted := false
	for epoch := 0; epoch < 20; epoch++ {
		est, ok := e.Update(epoch, 1000, 0)
		if ok {
			got, emitted = est, true
		}
	}
	if !emitted {
		t.Fatal("window closed without an estimate")
	}
	if math.IsInf(got.DBHz, 0) || math.IsNaN(got.DBHz) {
		t.Fatalf("constant power produced %v", got.DBHz)
	}
	// Zero variance means no measurable noise; the reading saturates
	// at the estimator ceiling rather than diverging.
	if got.DBHz != 100 {
		t.Fatalf("constant power = %.2f dB-Hz, want ceiling 100", got.DBHz)
	}
	if got.Epoch != 20 {
		t.Fatalf("estimate indexed at %d, want 20", got.Epoch)
	}
}

func TestCNoVarianceSummingFormula(t *testing.T) {
	// Two-level prompt power exercises the full formula with values
	// small enough to verify by hand.
	e, err := NewCNoEstimator(4, 0.001)
	if err != nil {
		t.Fatalf("new estimator: %v", err)
	}
	// |P|^2 alternates between 100 and 64.
	inputs := [][2]float64{{10, 0}, {8, 0}, {0, 10}, {0, 8}}
	var got CNoEstimate
	emitted := false
	for epoch, in := range inputs {
		if est, ok := e.Update(epoch, in[0], in[1]); ok {
			got, emitted = est, true
		}
	}
	if !emitted {
		t.Fatal("window did not close")
	}

	mean := (100.0 + 64 + 100 + 64) / 4
	variance := ((100-mean)*(100-mean)*2 + (64-mean)*(64-mean)*2) / 4
	avg := math.Sqrt(math.Abs(mean*mean - variance))
	noiseVar := 0.5 * (mean - avg)
	want := 10 * math.Log10(math.Abs((avg/0.001)/(2*noiseVar)))

	if math.Abs(got.DBHz-want) > 1e-9 {
		t.Fatalf("C/No = %.9f, want %.9f", got.DBHz, want)
	}
	if got.Epoch != 4 {
		t.Fatalf("estimate indexed at %d, want 4", got.Epoch)
	}
}

func TestCNoWindowResets(t *testing.T) {
	e, _ := NewCNoEstimator(3, 0.001)
	emissions := 0
	for epoch := 0; epoch < 9; epoch++ {
		if _, ok := e.Update(epoch, float64(epoch+1), 0); ok {
			emissions++
		}
	}
	if emissions != 3 {
		t.Fatalf("got %d estimates over 9 epochs with interval 3, want 3", emissions)
	}
}

func TestNewCNoEstimatorRejectsBadConfig(t *testing.T) {
	if _, err := NewCNoEstimator(0, 0.001); err == nil {
		t.Fatal("expected error for zero interval")
	}
	if _, err := NewCNoEstimator(10, 0); err == nil {
		t.Fatal("expected error for zero integration time")
	}
}
