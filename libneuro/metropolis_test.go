package libneuro_test

import (
	"math"
	"testing"

	"github.com/2x3systems/neurograph/libneuro"
	"github.com/2x3systems/neurograph/neuro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand always returns the same variate.
type fixedRand float64

func (u fixedRand) Float64() float64 { return float64(u) }

const almostOne = fixedRand(1 - 1e-12)

func TestAcceptNonNegativeExponent(t *testing.T) {
	couplings := libneuro.Couplings{10, 2, 5}
	k := libneuro.NewKernel(couplings, 0.1, 50, almostOne) // λT = 5

	// add: c - λT
	assert.Equal(t, 5.0, k.Exponent(neuro.AddEdge(0)))
	assert.Equal(t, -3.0, k.Exponent(neuro.AddEdge(1)))
	assert.Equal(t, 0.0, k.Exponent(neuro.AddEdge(2)))
	// remove: λT - c
	assert.Equal(t, -5.0, k.Exponent(neuro.RemoveEdge(0)))
	assert.Equal(t, 3.0, k.Exponent(neuro.RemoveEdge(1)))

	for _, idx := range []neuro.EdgeIdx{neuro.AddEdge(0), neuro.AddEdge(2), neuro.RemoveEdge(1), neuro.RemoveEdge(2)} {
		require.GreaterOrEqual(t, k.Exponent(idx), 0.0)
		require.True(t, k.Accept(idx), "idx %d", idx)
	}
	require.False(t, k.Accept(neuro.AddEdge(1)))
	require.False(t, k.Accept(neuro.RemoveEdge(0)))
}

func TestAcceptOverflow(t *testing.T) {
	couplings := libneuro.Couplings{1e6, -1e6}
	k := libneuro.NewKernel(couplings, 0, 100, almostOne)

	require.True(t, math.IsInf(math.Exp(k.Exponent(neuro.AddEdge(0))), 1))
	require.True(t, k.Accept(neuro.AddEdge(0)))
	require.True(t, k.Accept(neuro.RemoveEdge(1)))

	// exp underflows to 0, which never beats u, even u = 0
	k = libneuro.NewKernel(couplings, 0, 100, fixedRand(0))
	require.False(t, k.Accept(neuro.RemoveEdge(0)))
	require.False(t, k.Accept(neuro.AddEdge(1)))
}

func TestAcceptRate(t *testing.T) {
	couplings := libneuro.Couplings{3}
	n, hits := 20000, 0
	rng := newRand(5)
	k := libneuro.NewKernel(couplings, 0.1, 40, rng) // exponent ln-ratio of adding = -1
	for i := 0; i < n; i++ {
		if k.Accept(neuro.AddEdge(0)) {
			hits++
		}
	}
	assert.InDelta(t, math.Exp(-1), float64(hits)/float64(n), 0.02)
}

func TestLogPosterior(t *testing.T) {
	es, _ := neuro.NewEdgeSpace(3)
	couplings := libneuro.Couplings{4, 1, 7}
	k := libneuro.NewKernel(couplings, 0.5, 4, almostOne) // λT = 2

	g, _ := es.FromBits("101")
	assert.Equal(t, 11.0, k.LogLikelihood(es, g))
	assert.Equal(t, 7.0, k.LogPosterior(es, g))
	assert.Equal(t, 0.0, k.LogPosterior(es, es.EmptyKey()))
}
