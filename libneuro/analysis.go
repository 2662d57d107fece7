package libneuro

import (
	"io"
	"os"
	"path/filepath"

	"github.com/2x3systems/neurograph/neuro"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// AnalysisOpts specifies an analysis of one mouse over the experiment parts.
type AnalysisOpts struct {
	Experiment ExperimentOpts    // Part is set per part
	Parts      []int             // defaults to ExperimentParts
	OutDir     string            // where report files are written
	Chain      neuro.ChainConfig // chain parameters; a sweep overrides Method and Penalty
	Sweep      SweepOpts         // used by PenaltyAnalysis only; Chain and OnPoint are set per run
}

func (opts *AnalysisOpts) parts() []int {
	if len(opts.Parts) > 0 {
		return opts.Parts
	}
	return ExperimentParts
}

// loadPart loads one experiment part, returning nil (and no error) if the recording is too short.
func (opts *AnalysisOpts) loadPart(part int) (*neuro.Dataset, error) {
	expOpts := opts.Experiment
	expOpts.Part = part

	ds, err := LoadExperiment(expOpts)
	if errors.Is(err, neuro.ErrInsufficientData) {
		klog.Warningf("mouse %d %s part %d: insufficient data, skipping", expOpts.Mouse, expOpts.Region, part)
		return nil, nil
	}
	return ds, err
}

func (opts *AnalysisOpts) outPath(name string) string {
	return filepath.Join(opts.OutDir, name)
}

func appendFile(pathname string) (*os.File, error) {
	return os.OpenFile(pathname, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// withFile opens pathname with open, calls fn and closes the file, returning the first error.
func withFile(pathname string, open func(string) (*os.File, error), fn func(w io.Writer) error) error {
	file, err := open(pathname)
	if err != nil {
		return err
	}
	err = fn(file)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	return err
}

// BestGraph estimates the posterior mode graph of each experiment part of the selected mouse.
//
// The run report of each part is appended to its output file and the mode's adjacency matrix
// replaces the adjacency file.  Parts with insufficient data are skipped.
func BestGraph(opts AnalysisOpts) ([]neuro.ChainResult, error) {
	var results []neuro.ChainResult

	for _, part := range opts.parts() {
		ds, err := opts.loadPart(part)
		if err != nil {
			return nil, err
		}
		if ds == nil {
			continue
		}

		res, err := RunChain(opts.Chain, ds.Trains)
		if err != nil {
			return nil, errors.Wrapf(err, "mouse %d %s part %d", ds.Mouse, ds.Region, ds.Part)
		}
		results = append(results, res)

		names := NewReportNames(ds, opts.Chain.Method)
		err = withFile(opts.outPath(names.Run), appendFile, func(w io.Writer) error {
			return WriteRunReport(w, ds, opts.Chain, res)
		})
		if err != nil {
			return nil, err
		}
		err = withFile(opts.outPath(names.Adjacency), os.Create, func(w io.Writer) error {
			return WriteAdjacencyMatrix(w, res.Space, res.ModeGraph, ds.Labels())
		})
		if err != nil {
			return nil, err
		}
		klog.Infof("mouse %d %s part %d %v: mode p=%.5f, %d edges", ds.Mouse, ds.Region, ds.Part, opts.Chain.Method,
			res.ModeProbability, res.Space.EdgeCount(res.ModeGraph))
	}
	return results, nil
}

// PenaltyAnalysis sweeps the penalty for every method of opts.Sweep over each experiment part.
//
// For each (part, method) the three penalty curve files are rewritten point by point as the sweep
// progresses and every chain's run report is appended to the run file.
func PenaltyAnalysis(opts AnalysisOpts) ([]*PenaltyCurve, error) {
	cache, err := NewCouplingCache()
	if err != nil {
		return nil, err
	}
	defer cache.Close()

	methods := opts.Sweep.Methods
	if len(methods) == 0 {
		methods = neuro.AllMethods
	}

	var curves []*PenaltyCurve
	for _, part := range opts.parts() {
		ds, err := opts.loadPart(part)
		if err != nil {
			return nil, err
		}
		if ds == nil {
			continue
		}

		for _, method := range methods {
			curve, err := opts.sweepMethod(ds, method, cache)
			if err != nil {
				return nil, errors.Wrapf(err, "mouse %d %s part %d %v", ds.Mouse, ds.Region, ds.Part, method)
			}
			curves = append(curves, curve)
		}
	}

	hits, misses := cache.Stats()
	klog.V(1).Infof("coupling cache: %d hits, %d misses", hits, misses)
	return curves, nil
}

func (opts *AnalysisOpts) sweepMethod(ds *neuro.Dataset, method neuro.Method, cache *CouplingCache) (*PenaltyCurve, error) {
	names := NewReportNames(ds, method)

	var files [3]*os.File
	defer func() {
		for _, file := range files {
			if file != nil {
				file.Close()
			}
		}
	}()
	for i := range files {
		var err error
		if files[i], err = os.Create(opts.outPath(names.Curves[i])); err != nil {
			return nil, err
		}
	}
	runFile, err := appendFile(opts.outPath(names.Run))
	if err != nil {
		return nil, err
	}
	defer runFile.Close()

	sweepOpts := opts.Sweep
	sweepOpts.Chain = opts.Chain
	sweepOpts.Methods = []neuro.Method{method}
	sweepOpts.OnPoint = func(pt *SweepPoint) error {
		for i, file := range files {
			if err := WritePenaltyPoint(file, pt, CurveValue(i)); err != nil {
				return err
			}
		}
		cfg := opts.Chain
		cfg.Method = pt.Method
		cfg.Penalty = pt.Penalty
		return WriteRunReport(runFile, ds, cfg, pt.Result)
	}

	klog.Infof("mouse %d %s part %d: sweeping %v", ds.Mouse, ds.Region, ds.Part, method)
	curves, err := Sweep(ds.Trains, sweepOpts, cache)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		if err = file.Sync(); err != nil {
			return nil, err
		}
	}
	return curves[0], nil
}
