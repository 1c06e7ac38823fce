package loop

import "fmt"

// FilterConfig holds the fixed constants of one second-order loop.
type FilterConfig struct {
	Tau1 float64
	Tau2 float64
	// PDI is the predetection integration interval in seconds.
	PDI float64
}

// Validate rejects constants that would make the recurrence divide by
// zero or run with a non-positive integration time.
func (c FilterConfig) Validate() error {
	if c.Tau1 == 0 {
		return fmt.Errorf("loop filter tau1 must be non-zero")
	}
	if c.PDI <= 0 {
		return fmt.Errorf("loop filter integration interval must be positive, got %g", c.PDI)
	}
	return nil
}

// Filter is a second-order proportional-plus-integral loop filter.
// Its output is a pure function of the current error and the retained
// previous command and error.
type Filter struct {
	cfg     FilterConfig
	prevCmd float64
	prevErr float64
}

// NewFilter builds a filter with zeroed state.
func NewFilter(cfg FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Update advances the recurrence
//
//	cmd[k] = cmd[k-1] + (tau2/tau1)*(err[k]-err[k-1]) + err[k]*(PDI/tau1)
//
// and returns the new NCO command.
func (f *Filter) Update(err float64) float64 {
	cmd := f.prevCmd +
		(f.cfg.Tau2/f.cfg.Tau1)*(err-f.prevErr) +
		err*(f.cfg.PDI/f.cfg.Tau1)
	f.prevCmd = cmd
	f.prevErr = err
	return cmd
}

// Command returns the last NCO command without advancing the filter.
func (f *Filter) Command() float64 { return f.prevCmd }

// LastError returns the previous epoch's error input.
func (f *Filter) LastError() float64 { return f.prevErr }
