package neuro_test

import (
	"math/rand"
	"testing"

	"github.com/2x3systems/neurograph/neuro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotIndexing(t *testing.T) {
	es, err := neuro.NewEdgeSpace(6)
	require.NoError(t, err)
	require.Equal(t, 15, es.NumEdges)
	require.Equal(t, 2, es.KeyLen())

	// Row-major order of the lower triangle: (1,0) (2,0) (2,1) (3,0) ...
	slot := 0
	for i := 1; i < es.NumVertex; i++ {
		for j := 0; j < i; j++ {
			assert.Equal(t, slot, es.Slot(i, j))
			assert.Equal(t, slot, es.Slot(j, i))
			pi, pj := es.Pair(slot)
			assert.Equal(t, i, pi)
			assert.Equal(t, j, pj)
			slot++
		}
	}

	_, err = neuro.NewEdgeSpace(1)
	require.ErrorIs(t, err, neuro.ErrBadVertexCount)
}

func TestFlipRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, Nv := range []int{2, 4, 5, 9, 23} {
		es, err := neuro.NewEdgeSpace(Nv)
		require.NoError(t, err)

		for trial := 0; trial < 20; trial++ {
			k := es.InitRandom(rng)
			require.NoError(t, es.CheckKey(k))

			for s := 0; s < es.NumEdges; s++ {
				var idx neuro.EdgeIdx
				if es.HasEdge(k, s) {
					idx = neuro.RemoveEdge(s)
				} else {
					idx = neuro.AddEdge(s)
				}
				k2 := es.Flip(k, idx)
				require.NotEqual(t, k, k2)
				require.Equal(t, !es.HasEdge(k, s), es.HasEdge(k2, s))
				require.Equal(t, k, es.Flip(k2, idx.Complement()), "slot %d", s)
			}
		}
	}
}

func TestFlipCopies(t *testing.T) {
	es, _ := neuro.NewEdgeSpace(4)
	k := es.EmptyKey()
	k2 := es.Flip(k, neuro.AddEdge(3))

	assert.Equal(t, "000000", es.Bits(k))
	assert.Equal(t, "000100", es.Bits(k2))
	assert.Equal(t, 1, es.EdgeCount(k2))

	// Setting an already-set slot is a no-op on the value
	assert.Equal(t, k2, es.Flip(k2, neuro.AddEdge(3)))
}

func TestSampleEdge(t *testing.T) {
	es, _ := neuro.NewEdgeSpace(5)
	rng := rand.New(rand.NewSource(99))
	k := es.InitRandom(rng)

	hits := make([]int, es.NumEdges)
	const draws = 50000
	for i := 0; i < draws; i++ {
		idx := es.SampleEdge(rng, k)
		require.NoError(t, es.CheckEdgeIdx(idx))
		s := idx.Slot()
		require.Equal(t, es.HasEdge(k, s), !idx.IsAdd())
		hits[s]++
	}

	expect := float64(draws) / float64(es.NumEdges)
	for s, n := range hits {
		assert.InDelta(t, expect, float64(n), 0.1*expect, "slot %d", s)
	}
}

func TestBitsEncoding(t *testing.T) {
	es, _ := neuro.NewEdgeSpace(5)
	vec := "1001000011"
	k, err := es.FromBits(vec)
	require.NoError(t, err)
	require.Equal(t, vec, es.Bits(k))
	require.Equal(t, 4, es.EdgeCount(k))

	// Lexicographic key order follows the slot vector order
	k0, _ := es.FromBits("0111111111")
	k1, _ := es.FromBits("1000000000")
	require.True(t, k0 < k1)

	_, err = es.FromBits("10x1000011")
	require.ErrorIs(t, err, neuro.ErrBadEncoding)
	_, err = es.FromBits("1")
	require.ErrorIs(t, err, neuro.ErrBadEncoding)

	require.ErrorIs(t, es.CheckKey(neuro.GraphKey([]byte{0, 0xFF})), neuro.ErrBadEncoding)
	require.ErrorIs(t, es.CheckEdgeIdx(0), neuro.ErrBadEdgeIdx)
	require.ErrorIs(t, es.CheckEdgeIdx(neuro.RemoveEdge(10)), neuro.ErrBadEdgeIdx)
}

func TestChainConfigValidate(t *testing.T) {
	cfg := neuro.DefaultChainConfig()
	require.ErrorIs(t, cfg.Validate(), neuro.ErrNoStepBudget)

	cfg.FixedSteps = 1000
	require.NoError(t, cfg.Validate())

	cfg.Method = 4
	require.ErrorIs(t, cfg.Validate(), neuro.ErrBadMethod)
}
