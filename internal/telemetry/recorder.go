package telemetry

import "sync"

// Recorder accumulates the full run history as one fixed-width numeric
// series per tracked quantity, ready for the series writer. It
// implements Reporter.
type Recorder struct {
	mu      sync.Mutex
	records []Record
	cno     []CNoPoint
}

// NewRecorder builds an empty recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (rec *Recorder) Report(r Record) {
	rec.mu.Lock()
	rec.records = append(rec.records, r)
	rec.mu.Unlock()
}

func (rec *Recorder) ReportCNo(p CNoPoint) {
	rec.mu.Lock()
	rec.cno = append(rec.cno, p)
	rec.mu.Unlock()
}

// Len returns the number of recorded epochs.
func (rec *Recorder) Len() int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return len(rec.records)
}

// Records returns a copy of the per-epoch history.
func (rec *Recorder) Records() []Record {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]Record, len(rec.records))
	copy(out, rec.records)
	return out
}

// CNo returns a copy of the C/No history.
func (rec *Recorder) CNo() []CNoPoint {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]CNoPoint, len(rec.cno))
	copy(out, rec.cno)
	return out
}

// Series flattens the history into named float64 vectors, one per
// tracked quantity, each of length Len(). The C/No readings form two
// shorter vectors (interval-close epoch and value).
func (rec *Recorder) Series() map[string][]float64 {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	n := len(rec.records)
	out := map[string][]float64{
		"carrFreq":       make([]float64, n),
		"codeFreq":       make([]float64, n),
		"absoluteSample": make([]float64, n),
		"carrError":      make([]float64, n),
		"carrNco":        make([]float64, n),
		"codeError":      make([]float64, n),
		"codeNco":        make([]float64, n),
		"I_E":            make([]float64, n),
		"Q_E":            make([]float64, n),
		"I_P":            make([]float64, n),
		"Q_P":            make([]float64, n),
		"I_L":            make([]float64, n),
		"Q_L":            make([]float64, n),
	}
	for i, r := range rec.records {
		out["carrFreq"][i] = r.CarrFreq
		out["codeFreq"][i] = r.CodeFreq
		out["absoluteSample"][i] = r.AbsoluteSample
		out["carrError"][i] = r.CarrError
		out["carrNco"][i] = r.CarrNco
		out["codeError"][i] = r.CodeError
		out["codeNco"][i] = r.CodeNco
		out["I_E"][i] = r.IE
		out["Q_E"][i] = r.QE
		out["I_P"][i] = r.IP
		out["Q_P"][i] = r.QP
		out["I_L"][i] = r.IL
		out["Q_L"][i] = r.QL
	}

	idx := make([]float64, len(rec.cno))
	val := make([]float64, len(rec.cno))
	for i, p := range rec.cno {
		idx[i] = float64(p.Epoch)
		val[i] = p.DBHz
	}
	out["cnoIndex"] = idx
	out["cnoValue"] = val
	return out
}
