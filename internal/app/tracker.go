// Package app drives the tracking engine: it owns the per-channel
// state, runs the epoch loop against a sample source, and fans results
// out to telemetry.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/min-zhi/gnss-intrinsics/internal/cacode"
	"github.com/min-zhi/gnss-intrinsics/internal/config"
	"github.com/min-zhi/gnss-intrinsics/internal/dsp"
	"github.com/min-zhi/gnss-intrinsics/internal/logging"
	"github.com/min-zhi/gnss-intrinsics/internal/loop"
	"github.com/min-zhi/gnss-intrinsics/internal/source"
	"github.com/min-zhi/gnss-intrinsics/internal/telemetry"
)

// Config captures application-level configuration for one run.
type Config struct {
	Params config.Parameters
	// Debug dumps a baseband spectrum diagnostic after the first
	// epoch and logs every epoch record.
	Debug bool
}

// ChannelState holds every per-channel quantity the loop carries from
// one epoch to the next. The tracker owns it exclusively for the
// channel's lifetime; nothing else mutates it.
type ChannelState struct {
	RemCodePhase float64 // chips, in [0, codeLen)
	RemCarrPhase float64 // radians, in [0, 2π)
	CarrFreq     float64
	CodeFreq     float64
}

// Summary describes a finished run.
type Summary struct {
	Epochs    int
	Truncated bool
	// ShortfallSamples is the size of the partial final read when the
	// input ran out, zero otherwise.
	ShortfallSamples int
	MeanCNoDBHz      float64
	CarrErrStdDev    float64
	CodeErrStdDev    float64
}

// Tracker wires a sample source into the epoch state machine.
type Tracker struct {
	src      source.Source
	reporter telemetry.Reporter
	logger   logging.Logger
	cfg      Config

	state   ChannelState
	code    *cacode.Table
	carrier dsp.CarrierTable
	corr    dsp.Correlator
	carrFlt *loop.Filter
	codeFlt *loop.Filter
	cno     *loop.CNoEstimator

	// samplesRead counts samples consumed since the seek origin; the
	// absolute sample offset derives from it.
	samplesRead int64

	// Epoch-local buffers, resized to the current block and reused.
	raw      []int8
	idx      []uint8
	carrCos  []int16
	carrSin  []int16
	mixedI   []int16
	mixedQ   []int16
	replicas dsp.CodeReplicas

	carrErrs []float64
	codeErrs []float64
	cnoVals  []float64
}

// New builds a tracker over the given source. reporter and logger may
// be nil.
func New(src source.Source, reporter telemetry.Reporter, logger logging.Logger, cfg Config) *Tracker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Tracker{src: src, reporter: reporter, logger: logger, cfg: cfg}
}

// Init validates configuration, materializes the immutable tables and
// loop state, and seeks the source to the configured offset. Any error
// here is fatal; the epoch loop never starts on a half-built channel.
func (t *Tracker) Init(ctx context.Context) error {
	p := t.cfg.Params
	if err := p.Validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	code, err := p.CodeTable()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	t.code = code

	if p.RemCodePhase >= float64(code.Len()) {
		return fmt.Errorf("configuration: rem_code_phase %g outside code period %d", p.RemCodePhase, code.Len())
	}

	switch p.CarrierTable {
	case "sine":
		t.carrier = dsp.NewSineCarrier()
	default:
		t.carrier = dsp.NewSignCarrier()
	}

	policy, err := dsp.ParsePolicy(p.AccPolicy)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	corr, err := dsp.NewCorrelator(p.Correlator, policy)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	t.corr = corr

	carrCfg := loop.FilterConfig{Tau1: p.Carrier.Tau1, Tau2: p.Carrier.Tau2, PDI: p.Carrier.PDI}
	codeCfg := loop.FilterConfig{Tau1: p.Code.Tau1, Tau2: p.Code.Tau2, PDI: p.Code.PDI}
	if !p.OpenLoop {
		if err := carrCfg.Validate(); err != nil {
			return fmt.Errorf("configuration: carrier %w", err)
		}
		if err := codeCfg.Validate(); err != nil {
			return fmt.Errorf("configuration: code %w", err)
		}
	}
	t.carrFlt = loop.NewFilter(carrCfg)
	t.codeFlt = loop.NewFilter(codeCfg)

	cno, err := loop.NewCNoEstimator(p.CNoInterval, p.CNoAccTime)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	t.cno = cno

	t.state = ChannelState{
		RemCodePhase: p.RemCodePhase,
		RemCarrPhase: math.Mod(p.RemCarrPhase, 2*math.Pi),
		CarrFreq:     p.CarrFreq,
		CodeFreq:     p.CodeFreq,
	}
	if t.state.RemCarrPhase < 0 {
		t.state.RemCarrPhase += 2 * math.Pi
	}

	if err := t.src.Seek(ctx, p.SeekOffset); err != nil {
		return fmt.Errorf("seek source: %w", err)
	}
	t.samplesRead = 0
	return nil
}

// State returns a copy of the current channel state.
func (t *Tracker) State() ChannelState { return t.state }

// Run executes the epoch loop for the configured number of code
// periods. Input exhaustion truncates the run at the last fully read
// epoch; all other errors abort it.
func (t *Tracker) Run(ctx context.Context) (Summary, error) {
	p := t.cfg.Params
	codeLen := t.code.Len()
	sum := Summary{}

	for epoch := 0; epoch < p.CodePeriods; epoch++ {
		select {
		case <-ctx.Done():
			return sum, ctx.Err()
		default:
		}

		if epoch%1000 == 0 && epoch > 0 {
			t.logger.Debug("progress", logging.F("seconds", epoch/1000))
		}

		if err := t.runEpoch(ctx, epoch, codeLen); err != nil {
			var short *source.Shortfall
			if errors.As(err, &short) {
				sum.Truncated = true
				sum.ShortfallSamples = short.Wanted - short.Got
				t.logger.Warn("input exhausted, truncating run",
					logging.F("epoch", epoch),
					logging.F("wanted", short.Wanted),
					logging.F("got", short.Got),
				)
				break
			}
			return sum, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		sum.Epochs = epoch + 1
	}

	t.finishSummary(&sum)
	return sum, nil
}

// runEpoch performs one complete tracking epoch. Channel state is
// committed only after every stage has succeeded; a failed sample read
// leaves the state exactly as it was.
func (t *Tracker) runEpoch(ctx context.Context, epoch, codeLen int) error {
	p := t.cfg.Params
	st := &t.state

	codeStep := st.CodeFreq / p.SampFreq
	blk := dsp.BlockSize(codeLen, st.RemCodePhase, codeStep)
	if blk <= 0 {
		return fmt.Errorf("degenerate block size %d", blk)
	}
	t.resize(blk)

	if err := t.src.Read(ctx, t.raw); err != nil {
		return err
	}
	t.samplesRead += int64(blk)

	// Local carrier, mixed to baseband. The in-phase arm takes the
	// sine table, matching receiver convention.
	osc := dsp.NewOscillator(st.CarrFreq, p.SampFreq, st.RemCarrPhase)
	dsp.GenerateCarrier(osc, t.carrier, t.carrCos, t.carrSin, t.idx)
	dsp.Mix(t.mixedI, t.raw, t.carrSin)
	dsp.Mix(t.mixedQ, t.raw, t.carrCos)

	dsp.GenerateCode(t.code, &t.replicas, codeStep, st.RemCodePhase, p.EarlyLateSpc)

	sums := dsp.CorrelateEpoch(t.corr, t.mixedI, t.mixedQ, &t.replicas)

	if t.cfg.Debug && epoch == 0 {
		db := dsp.PowerSpectrum(t.mixedI, 1024)
		t.logger.Debug("baseband spectrum",
			logging.F("bins", len(db)),
			logging.F("peak_bin", dsp.PeakBin(db)),
		)
	}

	est, haveCNo := t.cno.Update(epoch, sums.IP, sums.QP)

	// Commit phase remainders for the next epoch.
	st.RemCodePhase = st.RemCodePhase + float64(blk)*codeStep - float64(codeLen)
	st.RemCodePhase = math.Mod(st.RemCodePhase, float64(codeLen))
	if st.RemCodePhase < 0 {
		st.RemCodePhase += float64(codeLen)
	}
	trigarg := 2*math.Pi*st.CarrFreq*(float64(blk)/p.SampFreq) + st.RemCarrPhase
	st.RemCarrPhase = math.Mod(trigarg, 2*math.Pi)

	carrErr := loop.CarrierDiscriminator(sums.IP, sums.QP)
	codeErr := loop.CodeDiscriminator(sums)

	var carrNco, codeNco float64
	if p.OpenLoop {
		// Open-loop runs hold the NCOs at their basis frequencies;
		// discriminator outputs are still recorded.
		st.CarrFreq = p.CarrFreqBasis
		st.CodeFreq = p.CodeFreqBasis
	} else {
		carrNco = t.carrFlt.Update(carrErr)
		st.CarrFreq = p.CarrFreqBasis + carrNco
		codeNco = t.codeFlt.Update(codeErr)
		st.CodeFreq = p.CodeFreqBasis - codeNco
	}

	absoluteSample := float64(p.SeekOffset+t.samplesRead) - st.RemCodePhase

	rec := telemetry.Record{
		Epoch:          epoch,
		CarrFreq:       st.CarrFreq,
		CodeFreq:       st.CodeFreq,
		AbsoluteSample: absoluteSample,
		CarrError:      carrErr,
		CarrNco:        carrNco,
		CodeError:      codeErr,
		CodeNco:        codeNco,
		IE:             sums.IE,
		QE:             sums.QE,
		IP:             sums.IP,
		QP:             sums.QP,
		IL:             sums.IL,
		QL:             sums.QL,
	}
	if t.reporter != nil {
		t.reporter.Report(rec)
		if haveCNo {
			t.reporter.ReportCNo(telemetry.CNoPoint{Epoch: est.Epoch, DBHz: est.DBHz})
		}
	}

	t.carrErrs = append(t.carrErrs, carrErr)
	t.codeErrs = append(t.codeErrs, codeErr)
	if haveCNo {
		t.cnoVals = append(t.cnoVals, est.DBHz)
	}
	return nil
}

func (t *Tracker) resize(n int) {
	if cap(t.raw) < n {
		t.raw = make([]int8, n)
		t.idx = make([]uint8, n)
		t.carrCos = make([]int16, n)
		t.carrSin = make([]int16, n)
		t.mixedI = make([]int16, n)
		t.mixedQ = make([]int16, n)
	}
	t.raw = t.raw[:n]
	t.idx = t.idx[:n]
	t.carrCos = t.carrCos[:n]
	t.carrSin = t.carrSin[:n]
	t.mixedI = t.mixedI[:n]
	t.mixedQ = t.mixedQ[:n]
	t.replicas.Resize(n)
}

func (t *Tracker) finishSummary(sum *Summary) {
	if len(t.cnoVals) > 0 {
		sum.MeanCNoDBHz = stat.Mean(t.cnoVals, nil)
	}
	if len(t.carrErrs) > 1 {
		sum.CarrErrStdDev = stat.StdDev(t.carrErrs, nil)
		sum.CodeErrStdDev = stat.StdDev(t.codeErrs, nil)
	}
	t.logger.Info("run complete",
		logging.F("epochs", sum.Epochs),
		logging.F("truncated", sum.Truncated),
		logging.F("mean_cno_dbhz", sum.MeanCNoDBHz),
		logging.F("carr_err_stddev", sum.CarrErrStdDev),
		logging.F("code_err_stddev", sum.CodeErrStdDev),
	)
}
