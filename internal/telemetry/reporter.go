// Package telemetry receives per-epoch tracking outputs and turns them
// into logs, in-memory series, and on-disk artifacts.
package telemetry

import (
	"github.com/min-zhi/gnss-intrinsics/internal/logging"
)

// Record is one epoch's fixed-schema tracking output.
type Record struct {
	Epoch          int
	CarrFreq       float64
	CodeFreq       float64
	AbsoluteSample float64
	CarrError      float64
	CarrNco        float64
	CodeError      float64
	CodeNco        float64
	IE, QE         float64
	IP, QP         float64
	IL, QL         float64
}

// CNoPoint is one periodic carrier-to-noise reading.
type CNoPoint struct {
	Epoch int
	DBHz  float64
}

// Reporter captures tracking telemetry.
type Reporter interface {
	Report(rec Record)
	ReportCNo(p CNoPoint)
}

// StdoutReporter logs tracking updates through the structured logger.
// Per-epoch records log at debug with decimation; C/No readings log at
// info.
type StdoutReporter struct {
	logger logging.Logger
	every  int
}

// NewStdoutReporter builds a stdout reporter logging every n-th epoch
// record (n <= 0 logs all of them).
func NewStdoutReporter(logger logging.Logger, every int) StdoutReporter {
	if logger == nil {
		logger = logging.Default()
	}
	return StdoutReporter{logger: logger, every: every}
}

func (r StdoutReporter) Report(rec Record) {
	if r.every > 1 && rec.Epoch%r.every != 0 {
		return
	}
	r.logger.Debug("epoch",
		logging.F("epoch", rec.Epoch),
		logging.F("carr_freq_hz", rec.CarrFreq),
		logging.F("code_freq_hz", rec.CodeFreq),
		logging.F("carr_err", rec.CarrError),
		logging.F("code_err", rec.CodeError),
		logging.F("ip", rec.IP),
		logging.F("qp", rec.QP),
	)
}

func (r StdoutReporter) ReportCNo(p CNoPoint) {
	r.logger.Info("cno estimate",
		logging.F("epoch", p.Epoch),
		logging.F("cno_dbhz", p.DBHz),
	)
}

// MultiReporter fans out telemetry to multiple destinations.
type MultiReporter []Reporter

func (m MultiReporter) Report(rec Record) {
	for _, r := range m {
		if r != nil {
			r.Report(rec)
		}
	}
}

func (m MultiReporter) ReportCNo(p CNoPoint) {
	for _, r := range m {
		if r != nil {
			r.ReportCNo(p)
		}
	}
}
