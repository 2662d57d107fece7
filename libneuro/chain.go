package libneuro

import (
	"math/rand"

	"github.com/2x3systems/neurograph/libneuro/freqstore"
	"github.com/2x3systems/neurograph/neuro"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// storeStream is the stream ID used to derive the store's seed from the chain seed.
const storeStream = 1

// Chain is a Metropolis Markov chain over the undirected graphs on a fixed set of neurons
// whose limit distribution is the posterior P(g|X).
//
// Each sampled state is recorded in a freqstore.Store so that only distinct graphs are kept,
// and the most visited one is the posterior mode estimate.
//
// A Chain is not safe for concurrent use.
type Chain struct {
	cfg       neuro.ChainConfig
	space     neuro.EdgeSpace
	numBins   int
	couplings Couplings
	rng       *rand.Rand
	kernel    *Kernel
	store     *freqstore.Store
	cur       neuro.GraphKey // current state; owned by store once sampling starts
	maxSteps  uint64
	steps     uint64
	accepted  uint64
}

// NewChain validates cfg, draws the starting graph and computes the couplings once.
//
// If src is nil, couplings are computed directly from trains.
func NewChain(cfg neuro.ChainConfig, trains []neuro.SpikeTrain, src CouplingSource) (*Chain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	numBins, err := CheckTrains(trains)
	if err != nil {
		return nil, err
	}
	space, err := neuro.NewEdgeSpace(len(trains))
	if err != nil {
		return nil, err
	}

	if src == nil {
		src = DirectCouplings{}
	}
	couplings, err := src.Couplings(cfg.Method, trains)
	if err != nil {
		return nil, err
	}
	if len(couplings) != space.NumEdges {
		return nil, errors.Wrapf(neuro.ErrCouplingsMismatch, "got %d couplings for %d edges", len(couplings), space.NumEdges)
	}

	ch := &Chain{
		cfg:       cfg,
		space:     space,
		numBins:   numBins,
		couplings: couplings,
		rng:       rngFromSeed(cfg.Seed),
		store:     freqstore.New(deriveSeed(cfg.Seed, storeStream)),
	}
	ch.kernel = NewKernel(couplings, cfg.Penalty, numBins, ch.rng)

	ch.maxSteps, err = StepBudget(cfg, space)
	if err != nil {
		return nil, err
	}

	ch.cur = space.InitRandom(ch.rng)
	return ch, nil
}

// StepBudget returns the number of sampling steps a chain is allowed.
//
// It is cfg.FixedSteps if set, otherwise the memory bound divided by the footprint of one stored
// graph, since in the worst case every step stores a new graph.
func StepBudget(cfg neuro.ChainConfig, space neuro.EdgeSpace) (uint64, error) {
	if cfg.FixedSteps > 0 {
		return cfg.FixedSteps, nil
	}
	steps := cfg.MemoryBytes / freqstore.EntryFootprint(space.KeyLen())
	if steps == 0 {
		return 0, errors.Wrapf(neuro.ErrNoStepBudget, "memory bound of %s holds no graphs", humanize.Bytes(cfg.MemoryBytes))
	}
	return steps, nil
}

func (ch *Chain) Space() neuro.EdgeSpace {
	return ch.space
}

func (ch *Chain) Couplings() Couplings {
	return ch.couplings
}

func (ch *Chain) MaxSteps() uint64 {
	return ch.maxSteps
}

// Current returns the current state of the chain.
func (ch *Chain) Current() neuro.GraphKey {
	return ch.cur
}

// Thermalize runs the warm-up steps without recording any state.
// The resulting graph becomes the starting state of the sampling phase.
func (ch *Chain) Thermalize() {
	for i := uint64(0); i < ch.cfg.ThermSteps; i++ {
		idx := ch.space.SampleEdge(ch.rng, ch.cur)
		if ch.kernel.Accept(idx) {
			ch.cur = ch.space.Flip(ch.cur, idx)
		}
	}
}

// sampleBatch runs n steps, recording the chain's state after every one of them.
//
// An accepted candidate is searched in the store: if found, the stored key becomes the current state
// (the candidate is dropped); otherwise the candidate is inserted. A rejected step searches the current
// state again so that its counter reflects the time the chain spent there.
func (ch *Chain) sampleBatch(n uint64) {
	for i := uint64(0); i < n; i++ {
		idx := ch.space.SampleEdge(ch.rng, ch.cur)
		if ch.kernel.Accept(idx) {
			ch.accepted++
			next := ch.space.Flip(ch.cur, idx)
			if stored, found := ch.store.Search(next); found {
				ch.cur = stored
			} else {
				ch.cur = ch.store.Insert(next)
			}
		} else if _, found := ch.store.Search(ch.cur); !found {
			panic("libneuro: current chain state is missing from the store")
		}
	}
	ch.steps += n
}

// Run thermalizes, samples in batches until the step budget is spent and returns the posterior mode.
//
// Run tears down the store and so may only be called once.
func (ch *Chain) Run() neuro.ChainResult {
	klog.V(2).Infof("chain %v λ=%g: %d neurons, %d edges, %d bins, budget %s steps",
		ch.cfg.Method, ch.cfg.Penalty, ch.space.NumVertex, ch.space.NumEdges, ch.numBins, humanize.Comma(int64(ch.maxSteps)))

	ch.Thermalize()

	ch.cur = ch.store.Insert(ch.cur)
	for ch.steps < ch.maxSteps {
		ch.sampleBatch(ch.cfg.BatchSteps)
		klog.V(3).Infof("chain %v λ=%g: %s steps, %d distinct graphs",
			ch.cfg.Method, ch.cfg.Penalty, humanize.Comma(int64(ch.steps)), ch.store.Count())
	}

	res := ch.finalize()
	ch.store.Close()
	return res
}

func (ch *Chain) finalize() neuro.ChainResult {
	mode, _ := ch.store.MaxEntry()
	visits := ch.store.TotalVisits()

	res := neuro.ChainResult{
		Space:          ch.space,
		ModeGraph:      mode.Key,
		ModeCount:      mode.Count,
		TotalSteps:     ch.steps,
		TotalVisits:    visits,
		MaxSteps:       ch.maxSteps,
		DistinctGraphs: uint32(ch.store.Count()),
		Accepted:       ch.accepted,
		LogPosterior:   ch.kernel.LogPosterior(ch.space, mode.Key),
		LogLikelihood:  ch.kernel.LogLikelihood(ch.space, mode.Key),
		EdgeFrequency:  make([]float64, ch.space.NumEdges),
	}
	if visits > 0 {
		res.ModeProbability = float64(mode.Count) / float64(visits)
	}

	ch.store.ForEach(func(e freqstore.Entry) bool {
		for s := 0; s < ch.space.NumEdges; s++ {
			if ch.space.HasEdge(e.Key, s) {
				res.EdgeFrequency[s] += float64(e.Count)
			}
		}
		return true
	})
	for s := range res.EdgeFrequency {
		res.EdgeFrequency[s] /= float64(visits)
	}

	klog.V(2).Infof("chain %v λ=%g: mode visited %d/%d (p=%.5f), %d distinct graphs, %d accepted",
		ch.cfg.Method, ch.cfg.Penalty, res.ModeCount, res.TotalVisits, res.ModeProbability, res.DistinctGraphs, res.Accepted)
	return res
}

// RunChain runs a complete chain over trains using cfg.
func RunChain(cfg neuro.ChainConfig, trains []neuro.SpikeTrain) (neuro.ChainResult, error) {
	ch, err := NewChain(cfg, trains, nil)
	if err != nil {
		return neuro.ChainResult{}, err
	}
	return ch.Run(), nil
}
