package neuro

import (
	"fmt"

	"github.com/pkg/errors"
)

const (

	// Jij is the unit coupling weight applied to every pair interaction sum.
	Jij = 1.0

	// DefaultThermSteps is the number of discarded warm-up steps before sampling.
	DefaultThermSteps = 100000

	// DefaultBatchSteps is the number of steps per sampling batch.
	DefaultBatchSteps = 100000
)

// Method selects how a pair of binary spike vectors is scored into a coupling.
type Method int8

const (
	MethodCoSpike   Method = 1 // +1 per bin where both neurons spike
	MethodAgreement Method = 2 // +1 per bin where both neurons agree
	MethodSigned    Method = 3 // +1 both spike, -1 exactly one spikes, 0 neither
)

// AllMethods lists the scoring methods in the order a sweep visits them.
var AllMethods = []Method{MethodCoSpike, MethodAgreement, MethodSigned}

func (m Method) IsValid() bool {
	return m >= MethodCoSpike && m <= MethodSigned
}

func (m Method) String() string {
	return fmt.Sprintf("Met%d", int(m))
}

// ChainConfig is the immutable parameter record for a single Markov chain run.
type ChainConfig struct {
	Method      Method  // pair scoring rule used to build couplings
	Penalty     float64 // λ, discourages edge presence (scaled by the bin count)
	FixedSteps  uint64  // if non-zero, the sampling step budget
	MemoryBytes uint64  // if FixedSteps is 0, the budget is derived from this bound
	ThermSteps  uint64  // thermalization steps (store untouched)
	BatchSteps  uint64  // sampling steps per batch
	Seed        int64   // 0 selects a fixed default seed
}

// DefaultChainConfig returns a config with the default batch sizes and method 1.
func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		Method:     MethodCoSpike,
		ThermSteps: DefaultThermSteps,
		BatchSteps: DefaultBatchSteps,
	}
}

// Validate checks that cfg describes a runnable chain.
func (cfg *ChainConfig) Validate() error {
	if !cfg.Method.IsValid() {
		return errors.Wrapf(ErrBadMethod, "got %d", cfg.Method)
	}
	if cfg.Penalty != cfg.Penalty {
		return errors.Wrap(ErrBadPenalty, "penalty is NaN")
	}
	if cfg.FixedSteps == 0 && cfg.MemoryBytes == 0 {
		return ErrNoStepBudget
	}
	if cfg.BatchSteps == 0 {
		return ErrBadBatchSize
	}
	return nil
}

// SpikeTrain is the binned presence vector of one neuron: Bins[t] is 1 if the neuron spiked in bin t.
type SpikeTrain struct {
	Label string
	Bins  []uint8
}

// Dataset is one recording selected for analysis.
type Dataset struct {
	Mouse   int
	Region  string
	Part    int
	NumBins int
	Trains  []SpikeTrain
}

// Labels returns the neuron labels in vertex order.
func (ds *Dataset) Labels() []string {
	labels := make([]string, len(ds.Trains))
	for i := range ds.Trains {
		labels[i] = ds.Trains[i].Label
	}
	return labels
}

// ChainResult summarizes a finished chain.
type ChainResult struct {
	Space           EdgeSpace
	ModeGraph       GraphKey  // most visited graph (posterior mode estimate)
	ModeCount       uint64    // visit counter of ModeGraph
	TotalSteps      uint64    // sampling steps taken
	TotalVisits     uint64    // sum of all counters: TotalSteps + 1 for the starting record
	MaxSteps        uint64    // step budget the chain was given
	DistinctGraphs  uint32    // number of distinct graphs visited
	Accepted        uint64    // accepted proposals during sampling
	ModeProbability float64   // ModeCount / TotalVisits
	LogPosterior    float64   // unnormalized log posterior of ModeGraph (penalty included)
	LogLikelihood   float64   // same without the penalty term
	EdgeFrequency   []float64 // per slot, fraction of visits spent with the edge present
}

// PrintOpts specifies what is printed when a graph is rendered.
type PrintOpts struct {
	Label  string // Prefix label
	Vector bool   // If set, prints the packed key as a '0'/'1' vector
	Matrix bool   // If set, prints the square adjacency matrix
}

// DefaultPrintOpts{}
var DefaultPrintOpts = PrintOpts{
	Vector: true,
	Matrix: true,
}
