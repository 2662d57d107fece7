package libneuro

import (
	"github.com/2x3systems/neurograph/neuro"
	"github.com/pkg/errors"
)

// Couplings holds one interaction energy per edge slot, in edge slot order.
type Couplings []float64

// CouplingSource produces the couplings for a set of spike trains under a given method.
type CouplingSource interface {
	Couplings(method neuro.Method, trains []neuro.SpikeTrain) (Couplings, error)
}

// DirectCouplings computes couplings on every call.
type DirectCouplings struct{}

func (DirectCouplings) Couplings(method neuro.Method, trains []neuro.SpikeTrain) (Couplings, error) {
	return ComputeCouplings(method, trains)
}

// CheckTrains returns the common bin count of trains or an error if they can't be scored.
func CheckTrains(trains []neuro.SpikeTrain) (int, error) {
	if len(trains) < 2 {
		return 0, errors.Wrapf(neuro.ErrTooFewNeurons, "got %d", len(trains))
	}
	numBins := len(trains[0].Bins)
	for i := range trains {
		tr := &trains[i]
		if len(tr.Bins) != numBins {
			return 0, errors.Wrapf(neuro.ErrBinCountMismatch, "neuron %q has %d bins, expected %d", tr.Label, len(tr.Bins), numBins)
		}
		for t, b := range tr.Bins {
			if b > 1 {
				return 0, errors.Wrapf(neuro.ErrBadBinValue, "neuron %q bin %d is %d", tr.Label, t, b)
			}
		}
	}
	return numBins, nil
}

// ComputeCouplings scores every neuron pair.
//
// Pairs are visited in the same order as the edge slots (rows i = 1..N-1, columns j < i),
// so couplings[s] is the energy of the edge in slot s.
func ComputeCouplings(method neuro.Method, trains []neuro.SpikeTrain) (Couplings, error) {
	if !method.IsValid() {
		return nil, errors.Wrapf(neuro.ErrBadMethod, "got %d", method)
	}
	numBins, err := CheckTrains(trains)
	if err != nil {
		return nil, err
	}

	Nv := len(trains)
	out := make(Couplings, 0, Nv*(Nv-1)/2)
	for i := 1; i < Nv; i++ {
		Xi := trains[i].Bins
		for j := 0; j < i; j++ {
			Xj := trains[j].Bins
			sum := 0
			for t := 0; t < numBins; t++ {
				sum += scorePair(method, Xi[t], Xj[t])
			}
			out = append(out, neuro.Jij*float64(sum))
		}
	}
	return out, nil
}

func scorePair(method neuro.Method, a, b uint8) int {
	switch method {
	case neuro.MethodCoSpike:
		return int(a & b)
	case neuro.MethodAgreement:
		if a == b {
			return 1
		}
		return 0
	default:
		if a != b {
			return -1
		}
		return int(a)
	}
}
