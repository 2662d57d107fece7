package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/2x3systems/neurograph/neuro"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const runToml = `
data = "/recordings"
region = "V1"
mouse = 6
method = 3
penalty = 0.25
mem = "64MB"
seed = 42
`

func parseFlags(t *testing.T, args ...string) (*Config, *pflag.FlagSet) {
	cfg := DefaultConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.BindFlags(flags)
	require.NoError(t, flags.Parse(args))
	return &cfg, flags
}

func TestResolveFlagsOverrideFile(t *testing.T) {
	pathname := filepath.Join(t.TempDir(), "run.toml")
	require.NoError(t, os.WriteFile(pathname, []byte(runToml), 0644))

	cfg, flags := parseFlags(t, "--mouse", "7", "--out", "reports")
	resolved, err := cfg.Resolve(flags, pathname)
	require.NoError(t, err)

	require.Equal(t, "/recordings", resolved.DataDir)
	require.Equal(t, "reports", resolved.OutDir)
	require.Equal(t, "V1", resolved.Region)
	require.Equal(t, 7, resolved.Mouse)
	require.Equal(t, 3, resolved.Method)
	require.Equal(t, 0.25, resolved.Penalty)
	require.Equal(t, int64(42), resolved.Seed)
	require.Equal(t, uint64(neuro.DefaultBatchSteps), resolved.BatchSteps)

	chain, err := resolved.ChainConfig()
	require.NoError(t, err)
	require.Equal(t, neuro.MethodSigned, chain.Method)
	require.Equal(t, uint64(64000000), chain.MemoryBytes)
	require.Zero(t, chain.FixedSteps)
}

func TestResolveWithoutFile(t *testing.T) {
	cfg, flags := parseFlags(t, "--fixed-steps", "5000", "--mem", "not-a-size")
	resolved, err := cfg.Resolve(flags, "")
	require.NoError(t, err)

	chain, err := resolved.ChainConfig()
	require.NoError(t, err)
	require.Equal(t, uint64(5000), chain.FixedSteps)
	require.Zero(t, chain.MemoryBytes)

	opts, err := resolved.AnalysisOpts()
	require.NoError(t, err)
	require.Equal(t, "data", opts.Experiment.DataDir)
	require.Equal(t, "HP", opts.Experiment.Region)
	require.Equal(t, 300.0, opts.Experiment.TrimSeconds)
	require.Equal(t, 10, opts.Sweep.StopAfter)
}

func TestConfigErrors(t *testing.T) {
	cfg, flags := parseFlags(t, "--mem", "lots")
	_, err := cfg.ChainConfig()
	require.Error(t, err)

	cfg, flags = parseFlags(t, "--method", "4", "--fixed-steps", "10")
	_, err = cfg.ChainConfig()
	require.ErrorIs(t, err, neuro.ErrBadMethod)

	_, err = cfg.Resolve(flags, filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	pathname := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(pathname, []byte("mouse = \"six\"\n"), 0644))
	_, err = cfg.Resolve(flags, pathname)
	require.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"best", "penalty"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		require.Equal(t, name, cmd.Name())
		require.NotNil(t, cmd.Flags().Lookup("config"))
		require.NotNil(t, cmd.Flags().Lookup("mem"))
	}
}
