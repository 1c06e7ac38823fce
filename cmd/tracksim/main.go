package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/min-zhi/gnss-intrinsics/internal/app"
	"github.com/min-zhi/gnss-intrinsics/internal/config"
	"github.com/min-zhi/gnss-intrinsics/internal/logging"
	"github.com/min-zhi/gnss-intrinsics/internal/source"
	"github.com/min-zhi/gnss-intrinsics/internal/telemetry"
)

func main() {
	cfg, err := parseConfig(os.Args[1:], os.LookupEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tracksim: %v\n", err)
		os.Exit(2)
	}

	level, err := logging.ParseLevel(cfg.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tracksim: %v\n", err)
		os.Exit(2)
	}
	logger := logging.New(level, cfg.logJSON, os.Stderr)
	logging.SetDefault(logger)

	if cfg.saveConfig != "" {
		if err := saveParams(cfg.saveConfig, cfg.params); err != nil {
			logger.Error("save config", logging.F("err", err.Error()))
			os.Exit(1)
		}
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", logging.F("err", err.Error()))
		os.Exit(1)
	}
}

func run(cfg cliConfig, logger logging.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	src, err := selectSource(cfg)
	if err != nil {
		return fmt.Errorf("select source: %w", err)
	}
	defer src.Close()

	recorder := telemetry.NewRecorder()
	reporters := telemetry.MultiReporter{
		telemetry.NewStdoutReporter(logger, cfg.reportEvery),
		recorder,
	}

	tracker := app.New(src, reporters, logger, app.Config{
		Params: cfg.params,
		Debug:  cfg.debug,
	})
	if err := tracker.Init(ctx); err != nil {
		return fmt.Errorf("init tracker: %w", err)
	}

	logger.Info("tracking",
		logging.F("backend", cfg.backend),
		logging.F("prn", cfg.params.PRN),
		logging.F("periods", cfg.params.CodePeriods),
		logging.F("correlator", cfg.params.Correlator),
		logging.F("policy", cfg.params.AccPolicy),
	)
	sum, err := tracker.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("interrupted", logging.F("epochs", sum.Epochs))
		} else {
			return fmt.Errorf("run tracker: %w", err)
		}
	}

	if cfg.outDir != "" {
		if err := telemetry.WriteSeries(cfg.outDir, recorder.Series()); err != nil {
			return fmt.Errorf("write series: %w", err)
		}
		logger.Info("wrote result series", logging.F("dir", cfg.outDir))
	}
	return nil
}

func selectSource(cfg cliConfig) (source.Source, error) {
	switch cfg.backend {
	case "file":
		if cfg.input == "" {
			return nil, fmt.Errorf("file backend needs -input")
		}
		return source.OpenFile(cfg.input, cfg.params.SampleWidth)
	case "synth":
		code, err := cfg.params.CodeTable()
		if err != nil {
			return nil, err
		}
		return source.NewSynth(source.SynthConfig{
			SampFreq: cfg.params.SampFreq,
			CarrFreq: cfg.params.CarrFreqBasis,
			CodeFreq: cfg.params.CodeFreqBasis,
			NoiseRMS: cfg.synthNoise,
			Seed:     cfg.synthSeed,
		}, code), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (file|synth)", cfg.backend)
	}
}

type cliConfig struct {
	params      config.Parameters
	backend     string
	input       string
	outDir      string
	saveConfig  string
	logLevel    string
	logJSON     bool
	debug       bool
	reportEvery int
	synthNoise  float64
	synthSeed   int64
}

// saveParams persists the effective parameters as indented JSON, so a
// run can be reproduced from the file it leaves behind.
func saveParams(path string, p config.Parameters) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// parseConfig layers the command line over the environment over the
// optional parameter file: file values become flag defaults, so flags
// always win.
func parseConfig(args []string, lookup func(string) (string, bool)) (cliConfig, error) {
	// Peek at -config first; its contents seed the flag defaults.
	configPath := envString(lookup, "TRACKSIM_CONFIG", "")
	for i, a := range args {
		if a == "-config" || a == "--config" {
			if i+1 < len(args) {
				configPath = args[i+1]
			}
		}
	}
	params := config.Defaults()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return cliConfig{}, err
		}
		params = loaded
	}

	cfg := cliConfig{params: params}
	fs := flag.NewFlagSet("tracksim", flag.ContinueOnError)
	fs.String("config", configPath, "Parameter file (YAML or JSON)")
	fs.StringVar(&cfg.backend, "backend", envString(lookup, "TRACKSIM_BACKEND", "synth"), "Sample backend (file|synth)")
	fs.StringVar(&cfg.input, "input", envString(lookup, "TRACKSIM_INPUT", ""), "Raw sample file for the file backend")
	fs.StringVar(&cfg.outDir, "out", envString(lookup, "TRACKSIM_OUT", ""), "Directory for result series (empty disables)")
	fs.StringVar(&cfg.saveConfig, "save-config", envString(lookup, "TRACKSIM_SAVE_CONFIG", ""), "Write the effective parameters as JSON to this path")
	fs.StringVar(&cfg.logLevel, "log-level", envString(lookup, "TRACKSIM_LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")
	fs.BoolVar(&cfg.logJSON, "log-json", false, "Emit logs as JSON lines")
	fs.BoolVar(&cfg.debug, "debug", false, "Enable first-epoch spectrum diagnostic")
	fs.IntVar(&cfg.reportEvery, "report-every", envInt(lookup, "TRACKSIM_REPORT_EVERY", 100), "Log every Nth epoch record")
	fs.Float64Var(&cfg.synthNoise, "synth-noise", 4, "Synthetic backend noise RMS in counts")
	fs.Int64Var(&cfg.synthSeed, "synth-seed", 1, "Synthetic backend noise seed")

	fs.IntVar(&cfg.params.PRN, "prn", envInt(lookup, "TRACKSIM_PRN", params.PRN), "PRN of the tracked satellite (1-32)")
	fs.IntVar(&cfg.params.CodePeriods, "periods", envInt(lookup, "TRACKSIM_PERIODS", params.CodePeriods), "Number of code periods to track")
	fs.Int64Var(&cfg.params.SeekOffset, "seek", params.SeekOffset, "Sample offset to skip before tracking")
	fs.Float64Var(&cfg.params.SampFreq, "samp-freq", params.SampFreq, "Sampling frequency in Hz")
	fs.Float64Var(&cfg.params.CarrFreq, "carr-freq", params.CarrFreq, "Initial carrier frequency in Hz")
	fs.Float64Var(&cfg.params.CodeFreq, "code-freq", params.CodeFreq, "Initial code frequency in Hz")
	fs.StringVar(&cfg.params.Correlator, "correlator", envString(lookup, "TRACKSIM_CORRELATOR", params.Correlator), "Correlator backend (scalar|batch)")
	fs.StringVar(&cfg.params.AccPolicy, "policy", envString(lookup, "TRACKSIM_POLICY", params.AccPolicy), "Accumulation policy (exact|saturate)")
	fs.StringVar(&cfg.params.CarrierTable, "carrier-table", params.CarrierTable, "Carrier lookup table (sign|sine)")
	fs.BoolVar(&cfg.params.OpenLoop, "open-loop", params.OpenLoop, "Hold NCOs at basis frequencies")

	if err := fs.Parse(args); err != nil {
		return cliConfig{}, err
	}
	// Flags that set an initial frequency also move its basis unless
	// the parameter file pinned one explicitly.
	if cfg.params.CarrFreqBasis == params.CarrFreqBasis && cfg.params.CarrFreq != params.CarrFreq {
		cfg.params.CarrFreqBasis = cfg.params.CarrFreq
	}
	if cfg.params.CodeFreqBasis == params.CodeFreqBasis && cfg.params.CodeFreq != params.CodeFreq {
		cfg.params.CodeFreqBasis = cfg.params.CodeFreq
	}
	return cfg, nil
}

func envString(lookup func(string) (string, bool), key, def string) string {
	if val, ok := lookup(key); ok {
		return val
	}
	return def
}

func envInt(lookup func(string) (string, bool), key string, def int) int {
	if val, ok := lookup(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}
