package libneuro_test

import (
	"testing"

	"github.com/2x3systems/neurograph/libneuro"
	"github.com/2x3systems/neurograph/neuro"
	"github.com/stretchr/testify/require"
)

func train(label string, bins string) neuro.SpikeTrain {
	tr := neuro.SpikeTrain{
		Label: label,
		Bins:  make([]uint8, len(bins)),
	}
	for i := range bins {
		tr.Bins[i] = bins[i] - '0'
	}
	return tr
}

func TestCouplingMethods(t *testing.T) {
	trains := []neuro.SpikeTrain{
		train("a", "110010"),
		train("b", "100110"),
		train("c", "000000"),
	}

	// slot order: (b,a) (c,a) (c,b)
	expect := map[neuro.Method]libneuro.Couplings{
		neuro.MethodCoSpike:   {2, 0, 0},
		neuro.MethodAgreement: {4, 3, 3},
		neuro.MethodSigned:    {0, -3, -3},
	}

	for method, want := range expect {
		got, err := libneuro.ComputeCouplings(method, trains)
		require.NoError(t, err)
		require.Equal(t, want, got, "method %v", method)
	}
}

func TestCouplingOrderMatchesSlots(t *testing.T) {
	// Neuron i spikes in the first i bins, so the co-spike count of (i,j) is min(i,j) = j.
	trains := make([]neuro.SpikeTrain, 6)
	for i := range trains {
		bins := make([]uint8, 8)
		for t := 0; t < i; t++ {
			bins[t] = 1
		}
		trains[i] = neuro.SpikeTrain{Bins: bins}
	}

	got, err := libneuro.ComputeCouplings(neuro.MethodCoSpike, trains)
	require.NoError(t, err)

	es, _ := neuro.NewEdgeSpace(len(trains))
	require.Len(t, got, es.NumEdges)
	for s := range got {
		_, j := es.Pair(s)
		require.Equal(t, float64(j), got[s], "slot %d", s)
	}
}

func TestCouplingErrors(t *testing.T) {
	_, err := libneuro.ComputeCouplings(neuro.MethodCoSpike, []neuro.SpikeTrain{train("a", "1")})
	require.ErrorIs(t, err, neuro.ErrTooFewNeurons)

	_, err = libneuro.ComputeCouplings(neuro.MethodCoSpike, []neuro.SpikeTrain{train("a", "101"), train("b", "10")})
	require.ErrorIs(t, err, neuro.ErrBinCountMismatch)

	_, err = libneuro.ComputeCouplings(neuro.MethodCoSpike, []neuro.SpikeTrain{train("a", "101"), train("b", "102")})
	require.ErrorIs(t, err, neuro.ErrBadBinValue)

	_, err = libneuro.ComputeCouplings(0, []neuro.SpikeTrain{train("a", "101"), train("b", "100")})
	require.ErrorIs(t, err, neuro.ErrBadMethod)
}
