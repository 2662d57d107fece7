package main

import (
	"github.com/2x3systems/neurograph/libneuro"
	"github.com/2x3systems/neurograph/neuro"
	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Config holds the parameters of a run, read from a toml file and/or the command line.
// Flags given on the command line take precedence over the file.
type Config struct {
	DataDir    string  `toml:"data"`
	OutDir     string  `toml:"out"`
	Region     string  `toml:"region"`
	Mouse      int     `toml:"mouse"`
	Method     int     `toml:"method"`
	Penalty    float64 `toml:"penalty"`
	Mem        string  `toml:"mem"`
	FixedSteps uint64  `toml:"fixed_steps"`
	ThermSteps uint64  `toml:"therm_steps"`
	BatchSteps uint64  `toml:"batch_steps"`
	Seed       int64   `toml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		DataDir:    "data",
		OutDir:     "out",
		Region:     "HP",
		Method:     int(neuro.MethodCoSpike),
		Penalty:    0.01,
		Mem:        "2GB",
		ThermSteps: neuro.DefaultThermSteps,
		BatchSteps: neuro.DefaultBatchSteps,
	}
}

// BindFlags registers a flag for every field of cfg, using cfg's current values as defaults.
func (cfg *Config) BindFlags(flags *pflag.FlagSet) {
	flags.StringVar(&cfg.DataDir, "data", cfg.DataDir, "directory holding the <region>mousesP<part>.dat summaries")
	flags.StringVar(&cfg.OutDir, "out", cfg.OutDir, "directory for report files")
	flags.StringVar(&cfg.Region, "region", cfg.Region, "brain region")
	flags.IntVar(&cfg.Mouse, "mouse", cfg.Mouse, "mouse ID")
	flags.IntVar(&cfg.Method, "method", cfg.Method, "pair scoring method (1, 2 or 3)")
	flags.Float64Var(&cfg.Penalty, "penalty", cfg.Penalty, "penalty constant λ")
	flags.StringVar(&cfg.Mem, "mem", cfg.Mem, "memory available for storing graphs (e.g. 512MB, 2GiB)")
	flags.Uint64Var(&cfg.FixedSteps, "fixed-steps", cfg.FixedSteps, "if set, the number of MC steps (overrides --mem)")
	flags.Uint64Var(&cfg.ThermSteps, "therm-steps", cfg.ThermSteps, "thermalization steps")
	flags.Uint64Var(&cfg.BatchSteps, "batch-steps", cfg.BatchSteps, "MC steps per batch")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed (0 selects the default seed)")
}

// Resolve returns cfg overlaid on the toml file at pathname (if any): fields whose flag was set on the
// command line keep their value from cfg, all others come from the file.
func (cfg *Config) Resolve(flags *pflag.FlagSet, pathname string) (Config, error) {
	if pathname == "" {
		return *cfg, nil
	}

	out := *cfg
	if _, err := toml.DecodeFile(pathname, &out); err != nil {
		return Config{}, errors.Wrapf(err, "reading config %q", pathname)
	}

	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "data":
			out.DataDir = cfg.DataDir
		case "out":
			out.OutDir = cfg.OutDir
		case "region":
			out.Region = cfg.Region
		case "mouse":
			out.Mouse = cfg.Mouse
		case "method":
			out.Method = cfg.Method
		case "penalty":
			out.Penalty = cfg.Penalty
		case "mem":
			out.Mem = cfg.Mem
		case "fixed-steps":
			out.FixedSteps = cfg.FixedSteps
		case "therm-steps":
			out.ThermSteps = cfg.ThermSteps
		case "batch-steps":
			out.BatchSteps = cfg.BatchSteps
		case "seed":
			out.Seed = cfg.Seed
		}
	})
	return out, nil
}

// ChainConfig converts cfg into a validated neuro.ChainConfig.
func (cfg *Config) ChainConfig() (neuro.ChainConfig, error) {
	chain := neuro.ChainConfig{
		Method:     neuro.Method(cfg.Method),
		Penalty:    cfg.Penalty,
		FixedSteps: cfg.FixedSteps,
		ThermSteps: cfg.ThermSteps,
		BatchSteps: cfg.BatchSteps,
		Seed:       cfg.Seed,
	}
	if cfg.FixedSteps == 0 {
		mem, err := humanize.ParseBytes(cfg.Mem)
		if err != nil {
			return neuro.ChainConfig{}, errors.Wrapf(err, "bad --mem %q", cfg.Mem)
		}
		chain.MemoryBytes = mem
	}
	if err := chain.Validate(); err != nil {
		return neuro.ChainConfig{}, err
	}
	return chain, nil
}

// AnalysisOpts returns the analysis options for cfg.
func (cfg *Config) AnalysisOpts() (libneuro.AnalysisOpts, error) {
	chain, err := cfg.ChainConfig()
	if err != nil {
		return libneuro.AnalysisOpts{}, err
	}

	exp := libneuro.DefaultExperimentOpts()
	exp.DataDir = cfg.DataDir
	exp.Region = cfg.Region
	exp.Mouse = cfg.Mouse

	return libneuro.AnalysisOpts{
		Experiment: exp,
		OutDir:     cfg.OutDir,
		Chain:      chain,
		Sweep:      libneuro.DefaultSweepOpts(),
	}, nil
}
