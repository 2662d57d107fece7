package libneuro

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/2x3systems/neurograph/neuro"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// ExperimentParts are the recorded parts of the experiment: before (1) and after (3) the mice
// get in touch with the geometric objects.
var ExperimentParts = []int{1, 3}

// ExperimentOpts selects one recording and says how to bin it.
type ExperimentOpts struct {
	DataDir     string    // directory holding the per-region summary files
	Region      string    // brain region, e.g. "HP"
	Part        int       // experiment part
	Mouse       int       // mouse ID
	Bins        BinParams // spike sampling
	TrimSeconds float64   // recording time dropped at each end
	MinBins     int       // recordings with this many bins or fewer are skipped
}

// DefaultExperimentOpts drops the first and last ~5 minutes and requires more than ~16 minutes of data.
func DefaultExperimentOpts() ExperimentOpts {
	return ExperimentOpts{
		Bins:        DefaultBinParams,
		TrimSeconds: 300,
		MinBins:     1000,
	}
}

// SummaryPath returns the summary filename for a region and experiment part.
func SummaryPath(dataDir, region string, part int) string {
	return filepath.Join(dataDir, fmt.Sprintf("%smousesP%d.dat", region, part))
}

// LoadExperiment reads the summary for opts.Region and opts.Part, then reads and bins the spikes of every
// neuron of opts.Mouse.
//
// Returns neuro.ErrInsufficientData if the trimmed recording is too short to analyse.
func LoadExperiment(opts ExperimentOpts) (*neuro.Dataset, error) {
	pathname := SummaryPath(opts.DataDir, opts.Region, opts.Part)
	file, err := os.Open(pathname)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	summary, err := ParseSummary(pathname, file)
	if err != nil {
		return nil, err
	}

	rec := summary.Find(opts.Mouse)
	if rec == nil {
		return nil, errors.Wrapf(neuro.ErrMouseNotFound, "mouse %d in %s", opts.Mouse, pathname)
	}

	start := rec.TMin + opts.TrimSeconds
	end := rec.TMax - opts.TrimSeconds
	numBins := int((end - start) / opts.Bins.Stride)
	if numBins <= opts.MinBins {
		return nil, errors.Wrapf(neuro.ErrInsufficientData, "mouse %d %s part %d has %d bins", opts.Mouse, opts.Region, opts.Part, numBins)
	}

	ds := &neuro.Dataset{
		Mouse:   opts.Mouse,
		Region:  opts.Region,
		Part:    opts.Part,
		NumBins: numBins,
		Trains:  make([]neuro.SpikeTrain, 0, len(rec.Neurons)),
	}
	for _, ref := range rec.Neurons {
		tr, err := LoadSpikeTrain(ref.Label, ref.Path, start, numBins, opts.Bins)
		if err != nil {
			return nil, err
		}
		ds.Trains = append(ds.Trains, tr)
	}

	klog.V(2).Infof("mouse %d %s part %d: %d neurons, %d bins from %gs", ds.Mouse, ds.Region, ds.Part, len(ds.Trains), numBins, start)
	return ds, nil
}
