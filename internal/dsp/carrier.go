package dsp

import "math"

// carrierAmplitude is the peak value of the local carrier tables. The
// receiver convention keeps the carrier small so that a mixed int8
// sample never leaves the int16 range.
const carrierAmplitude = 8

// CarrierTable supplies one cycle of quantized cos/sin values indexed
// by the oscillator's 8-bit phase index. Implementations are immutable
// after construction and safe to share across epochs.
type CarrierTable interface {
	Cos(idx uint8) int16
	Sin(idx uint8) int16
}

type lutCarrier struct {
	cos [1 << indexBits]int16
	sin [1 << indexBits]int16
}

func (t *lutCarrier) Cos(idx uint8) int16 { return t.cos[idx] }
func (t *lutCarrier) Sin(idx uint8) int16 { return t.sin[idx] }

// NewSignCarrier builds the coarse two-level carrier approximation:
// one value per half cycle, ±carrierAmplitude. This reproduces the
// historic gps_sin/gps_cos shortcut and trades harmonic purity for a
// multiplier-free waveform; C/No read with it sits a fraction of a dB
// below the true value.
func NewSignCarrier() CarrierTable {
	t := &lutCarrier{}
	for i := range t.cos {
		phase := 2 * math.Pi * float64(i) / float64(len(t.cos))
		if math.Cos(phase) >= 0 {
			t.cos[i] = carrierAmplitude
		} else {
			t.cos[i] = -carrierAmplitude
		}
		if math.Sin(phase) >= 0 {
			t.sin[i] = carrierAmplitude
		} else {
			t.sin[i] = -carrierAmplitude
		}
	}
	return t
}

// NewSineCarrier builds a quantized sine table at the same amplitude.
// Drop-in replacement for the sign table; downstream stages only
// require a stable table-valued waveform in the same numeric range.
func NewSineCarrier() CarrierTable {
	t := &lutCarrier{}
	for i := range t.cos {
		phase := 2 * math.Pi * float64(i) / float64(len(t.cos))
		t.cos[i] = int16(math.Round(carrierAmplitude * math.Cos(phase)))
		t.sin[i] = int16(math.Round(carrierAmplitude * math.Sin(phase)))
	}
	return t
}

// GenerateCarrier fills cos/sin waveforms for one epoch from the
// oscillator's batched index path and the given table. The oscillator
// advances by len(cosOut) samples; cosOut and sinOut must be the same
// length.
func GenerateCarrier(osc *Oscillator, table CarrierTable, cosOut, sinOut []int16, idxScratch []uint8) {
	idx := idxScratch[:len(cosOut)]
	osc.IndicesBatched(idx)
	for i, k := range idx {
		cosOut[i] = table.Cos(k)
		sinOut[i] = table.Sin(k)
	}
}
