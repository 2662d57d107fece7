package main

import (
	"os"

	"github.com/2x3systems/neurograph/libneuro"
	"github.com/dustin/go-humanize"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "neurograph",
		Short: "Estimate neuronal interaction graphs via Markov Chain Monte Carlo",
		Long: `neurograph estimates, for each recorded mouse and brain region, the graph of neuronal
interactions that best represents the observed spike trains.

  best     finds the posterior mode for a given scoring method and penalty
  penalty  sweeps the penalty for every scoring method to help choose one`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd("best", "Find the most representative graph of a mouse", runBest))
	root.AddCommand(newRunCmd("penalty", "Sweep the penalty constant for each scoring method", runPenalty))
	return root
}

func newRunCmd(use, short string, run func(cfg Config) error) *cobra.Command {
	cfg := DefaultConfig()
	var configFile string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := cfg.Resolve(cmd.Flags(), configFile)
			if err != nil {
				return err
			}
			return run(resolved)
		},
	}
	cfg.BindFlags(cmd.Flags())
	cmd.Flags().StringVar(&configFile, "config", "", "toml file with run parameters; flags override it")
	return cmd
}

func runBest(cfg Config) error {
	opts, err := cfg.AnalysisOpts()
	if err != nil {
		return err
	}
	if err = os.MkdirAll(opts.OutDir, 0755); err != nil {
		return err
	}
	logBudget(cfg)

	results, err := libneuro.BestGraph(opts)
	if err != nil {
		return err
	}
	klog.Infof("mouse %d %s: %d parts analysed", cfg.Mouse, cfg.Region, len(results))
	return nil
}

func runPenalty(cfg Config) error {
	opts, err := cfg.AnalysisOpts()
	if err != nil {
		return err
	}
	if err = os.MkdirAll(opts.OutDir, 0755); err != nil {
		return err
	}
	logBudget(cfg)

	curves, err := libneuro.PenaltyAnalysis(opts)
	if err != nil {
		return err
	}
	for _, curve := range curves {
		klog.V(1).Infof("%v: %d penalties", curve.Method, curve.Len())
	}
	return nil
}

func logBudget(cfg Config) {
	if cfg.FixedSteps > 0 {
		klog.Infof("step budget: %s fixed MC steps", humanize.Comma(int64(cfg.FixedSteps)))
	} else {
		klog.Infof("step budget: %s of graph storage", cfg.Mem)
	}
}
