// Package config loads and validates the tracking scenario: signal
// geometry, loop constants, and run length. Parameters load once
// before the epoch loop; any fault here is fatal.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/min-zhi/gnss-intrinsics/internal/cacode"
)

// LoopParams holds one loop's filter constants.
type LoopParams struct {
	Tau1 float64 `yaml:"tau1" json:"tau1"`
	Tau2 float64 `yaml:"tau2" json:"tau2"`
	PDI  float64 `yaml:"pdi" json:"pdi"`
}

// Parameters is the full scenario description.
type Parameters struct {
	SampFreq      float64 `yaml:"samp_freq" json:"samp_freq"`
	CarrFreq      float64 `yaml:"carr_freq" json:"carr_freq"`
	CarrFreqBasis float64 `yaml:"carr_freq_basis" json:"carr_freq_basis"`
	CodeFreq      float64 `yaml:"code_freq" json:"code_freq"`
	CodeFreqBasis float64 `yaml:"code_freq_basis" json:"code_freq_basis"`

	EarlyLateSpc float64 `yaml:"early_late_spc" json:"early_late_spc"`
	RemCodePhase float64 `yaml:"rem_code_phase" json:"rem_code_phase"`
	RemCarrPhase float64 `yaml:"rem_carr_phase" json:"rem_carr_phase"`

	Carrier LoopParams `yaml:"carrier_loop" json:"carrier_loop"`
	Code    LoopParams `yaml:"code_loop" json:"code_loop"`

	CodePeriods int     `yaml:"code_periods" json:"code_periods"`
	CNoInterval int     `yaml:"cno_interval" json:"cno_interval"`
	CNoAccTime  float64 `yaml:"cno_acc_time" json:"cno_acc_time"`

	// PRN selects a generated C/A code; CodeFile overrides it with
	// raw int8 chips (±1) read from disk.
	PRN      int    `yaml:"prn" json:"prn"`
	CodeFile string `yaml:"code_file,omitempty" json:"code_file,omitempty"`

	SeekOffset  int64 `yaml:"seek_offset" json:"seek_offset"`
	SampleWidth int   `yaml:"sample_width" json:"sample_width"`

	CarrierTable string `yaml:"carrier_table" json:"carrier_table"` // sign | sine
	Correlator   string `yaml:"correlator" json:"correlator"`       // scalar | batch
	AccPolicy    string `yaml:"acc_policy" json:"acc_policy"`       // exact | saturate

	OpenLoop bool `yaml:"open_loop" json:"open_loop"`
}

// Defaults returns the reference L1 C/A scenario: 16.3676 MHz
// sampling, 4.1304 MHz IF, 1 ms epochs.
func Defaults() Parameters {
	return Parameters{
		SampFreq:      16.3676e6,
		CarrFreq:      4.1304e6,
		CarrFreqBasis: 4.1304e6,
		CodeFreq:      1023002.79220779,
		CodeFreqBasis: 1023002.79220779,
		EarlyLateSpc:  0.5,
		Carrier:       LoopParams{Tau1: 0.0072, Tau2: 0.0037, PDI: 0.001},
		Code:          LoopParams{Tau1: 0.2917, Tau2: 0.3017, PDI: 0.001},
		CodePeriods:   1000,
		CNoInterval:   200,
		CNoAccTime:    0.001,
		PRN:           1,
		SampleWidth:   1,
		CarrierTable:  "sign",
		Correlator:    "batch",
		AccPolicy:     "exact",
	}
}

// Load reads parameters from a YAML (.yaml/.yml) or JSON (.json) file,
// layered over Defaults.
func Load(path string) (Parameters, error) {
	p := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return Parameters{}, fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Parameters{}, fmt.Errorf("parse yaml config %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &p); err != nil {
			return Parameters{}, fmt.Errorf("parse json config %s: %w", path, err)
		}
	default:
		return Parameters{}, fmt.Errorf("unsupported config extension %q", filepath.Ext(path))
	}
	return p, nil
}

// Validate rejects configurations that would corrupt or stall the
// tracking loop. It reports the first fault found.
func (p Parameters) Validate() error {
	switch {
	case p.SampFreq <= 0:
		return fmt.Errorf("samp_freq must be positive, got %g", p.SampFreq)
	case p.CodeFreq <= 0 || p.CodeFreqBasis <= 0:
		return fmt.Errorf("code frequency and basis must be positive")
	case p.CodeFreq >= p.SampFreq:
		return fmt.Errorf("code_freq %g must be below samp_freq %g", p.CodeFreq, p.SampFreq)
	case p.EarlyLateSpc <= 0 || p.EarlyLateSpc > 1:
		return fmt.Errorf("early_late_spc must be in (0,1], got %g", p.EarlyLateSpc)
	case p.RemCodePhase < 0:
		return fmt.Errorf("rem_code_phase must be non-negative, got %g", p.RemCodePhase)
	case p.CodePeriods <= 0:
		return fmt.Errorf("code_periods must be positive, got %d", p.CodePeriods)
	case p.CNoInterval <= 0:
		return fmt.Errorf("cno_interval must be positive, got %d", p.CNoInterval)
	case p.CNoAccTime <= 0:
		return fmt.Errorf("cno_acc_time must be positive, got %g", p.CNoAccTime)
	case p.SampleWidth < 1:
		return fmt.Errorf("sample_width must be >= 1, got %d", p.SampleWidth)
	case p.SeekOffset < 0:
		return fmt.Errorf("seek_offset must be non-negative, got %d", p.SeekOffset)
	}
	if p.CodeFile == "" {
		if p.PRN < 1 || p.PRN > 32 {
			return fmt.Errorf("prn must be in [1,32], got %d", p.PRN)
		}
	}
	if !p.OpenLoop {
		if p.Carrier.Tau1 == 0 || p.Code.Tau1 == 0 {
			return fmt.Errorf("loop filter tau1 must be non-zero")
		}
		if p.Carrier.PDI <= 0 || p.Code.PDI <= 0 {
			return fmt.Errorf("loop filter pdi must be positive")
		}
	}
	switch p.CarrierTable {
	case "sign", "sine":
	default:
		return fmt.Errorf("carrier_table must be sign or sine, got %q", p.CarrierTable)
	}
	switch p.Correlator {
	case "scalar", "batch":
	default:
		return fmt.Errorf("correlator must be scalar or batch, got %q", p.Correlator)
	}
	switch p.AccPolicy {
	case "exact", "saturate":
	default:
		return fmt.Errorf("acc_policy must be exact or saturate, got %q", p.AccPolicy)
	}
	return nil
}

// CodeTable materializes the ranging-code table the scenario names,
// either generated from the PRN or loaded from CodeFile.
func (p Parameters) CodeTable() (*cacode.Table, error) {
	if p.CodeFile != "" {
		chips, err := loadChips(p.CodeFile)
		if err != nil {
			return nil, err
		}
		return cacode.NewTable(chips)
	}
	chips, err := cacode.Generate(p.PRN)
	if err != nil {
		return nil, err
	}
	return cacode.NewTable(chips)
}

func loadChips(path string) ([]int16, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read code file: %w", err)
	}
	chips := make([]int16, len(data))
	for i, b := range data {
		v := int16(int8(b))
		if v != 1 && v != -1 {
			return nil, fmt.Errorf("code file %s: chip %d is %d, want ±1", path, i, v)
		}
		chips[i] = v
	}
	return chips, nil
}
