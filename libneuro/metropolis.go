package libneuro

import (
	"math"

	"github.com/2x3systems/neurograph/neuro"
)

// Kernel decides whether a proposed single edge flip is accepted (Metropolis et al. 1953).
//
// Proposals pick every slot with equal probability whatever its current value, so the
// proposal kernel is symmetric and the acceptance probability is min(1, P(g'|X)/P(g|X)).
// Under the Ising-like posterior with a uniform per-edge penalty λ that ratio is
// exp(c - λT) for adding the edge with coupling c and exp(λT - c) for removing it.
type Kernel struct {
	couplings   Couplings
	penaltyTerm float64 // λT
	rng         neuro.Rand
}

// NewKernel returns a kernel over the given couplings, penalty λ and bin count T.
func NewKernel(couplings Couplings, penalty float64, numBins int, rng neuro.Rand) *Kernel {
	return &Kernel{
		couplings:   couplings,
		penaltyTerm: penalty * float64(numBins),
		rng:         rng,
	}
}

// Exponent returns the log acceptance ratio of the move idx.
func (k *Kernel) Exponent(idx neuro.EdgeIdx) float64 {
	if idx < 0 {
		return k.penaltyTerm - k.couplings[-idx-1]
	}
	return k.couplings[idx-1] - k.penaltyTerm
}

// Accept draws u ~ Unif[0,1) and accepts iff exp(Exponent(idx)) > u.
//
// An exponent >= 0 always accepts since exp >= 1 > u; that includes exp overflowing to +Inf.
func (k *Kernel) Accept(idx neuro.EdgeIdx) bool {
	u := k.rng.Float64()
	return math.Exp(k.Exponent(idx)) > u
}

// LogPosterior returns the unnormalized log posterior of key, sum of (c_s - λT) over its edges.
func (k *Kernel) LogPosterior(es neuro.EdgeSpace, key neuro.GraphKey) float64 {
	return k.LogLikelihood(es, key) - float64(es.EdgeCount(key))*k.penaltyTerm
}

// LogLikelihood returns the sum of couplings over the edges of key (no penalty).
func (k *Kernel) LogLikelihood(es neuro.EdgeSpace, key neuro.GraphKey) float64 {
	sum := 0.0
	for s := 0; s < es.NumEdges; s++ {
		if es.HasEdge(key, s) {
			sum += k.couplings[s]
		}
	}
	return sum
}
