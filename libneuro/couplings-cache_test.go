package libneuro_test

import (
	"testing"

	"github.com/2x3systems/neurograph/libneuro"
	"github.com/2x3systems/neurograph/neuro"
	"github.com/stretchr/testify/require"
)

func TestCouplingCache(t *testing.T) {
	cache, err := libneuro.NewCouplingCache()
	require.NoError(t, err)
	defer cache.Close()

	trains := coSpikingTrains()
	want, err := libneuro.ComputeCouplings(neuro.MethodSigned, trains)
	require.NoError(t, err)

	got, err := cache.Couplings(neuro.MethodSigned, trains)
	require.NoError(t, err)
	require.Equal(t, want, got)

	got, err = cache.Couplings(neuro.MethodSigned, coSpikingTrains())
	require.NoError(t, err)
	require.Equal(t, want, got)

	hits, misses := cache.Stats()
	require.Equal(t, 1, hits)
	require.Equal(t, 1, misses)

	got, err = cache.Couplings(neuro.MethodCoSpike, trains)
	require.NoError(t, err)
	require.Equal(t, libneuro.Couplings{40, 10, 10, 5, 5, 10}, got)

	trains[3].Bins[0] = 1
	_, err = cache.Couplings(neuro.MethodCoSpike, trains)
	require.NoError(t, err)
	hits, misses = cache.Stats()
	require.Equal(t, 1, hits)
	require.Equal(t, 3, misses)

	_, err = cache.Couplings(neuro.MethodCoSpike, trains[:1])
	require.ErrorIs(t, err, neuro.ErrTooFewNeurons)

	cache.Close()
	_, err = cache.Couplings(neuro.MethodCoSpike, trains)
	require.ErrorIs(t, err, neuro.ErrCacheClosed)
}

func TestCachedChainMatchesDirect(t *testing.T) {
	cache, err := libneuro.NewCouplingCache()
	require.NoError(t, err)
	defer cache.Close()

	cfg := neuro.ChainConfig{
		Method:     neuro.MethodAgreement,
		Penalty:    0.6,
		FixedSteps: 3000,
		ThermSteps: 100,
		BatchSteps: 1000,
		Seed:       21,
	}
	trains := randomTrains(4, 6, 120, 0.4)

	direct, err := libneuro.RunChain(cfg, trains)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		ch, err := libneuro.NewChain(cfg, trains, cache)
		require.NoError(t, err)
		require.Equal(t, direct, ch.Run())
	}
	hits, _ := cache.Stats()
	require.Equal(t, 1, hits)
}

func TestFingerprint(t *testing.T) {
	a := coSpikingTrains()
	b := coSpikingTrains()
	require.Equal(t, libneuro.Fingerprint(a), libneuro.Fingerprint(b))

	b[0].Label = "m0"
	require.NotEqual(t, libneuro.Fingerprint(a), libneuro.Fingerprint(b))

	// Moving a bin from one neuron to the next must change the fingerprint
	c := []neuro.SpikeTrain{train("x", "01"), train("y", "1")}
	d := []neuro.SpikeTrain{train("x", "0"), train("y", "11")}
	require.NotEqual(t, libneuro.Fingerprint(c), libneuro.Fingerprint(d))
}

func TestCouplingEncoding(t *testing.T) {
	C := libneuro.Couplings{0, -3, 41, 0.125, -0.5}
	enc := C.AppendEncoding([]byte{0xFF})
	require.Len(t, enc, 1+8*len(C))

	var D libneuro.Couplings
	require.NoError(t, D.InitFromEncoding(enc[1:]))
	require.Equal(t, C, D)

	require.Error(t, D.InitFromEncoding(enc[:7]))
}
