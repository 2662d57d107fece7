package libneuro

import (
	"github.com/2x3systems/neurograph/neuro"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// PenaltyRange is the half-open penalty interval [Start, End) visited in increments of Step.
type PenaltyRange struct {
	Start float64
	End   float64
	Step  float64
}

// Penalty returns the i-th penalty of the range.
func (pr PenaltyRange) Penalty(i int) float64 {
	return pr.Start + float64(i)*pr.Step
}

// Len returns the number of penalties in the range.
func (pr PenaltyRange) Len() int {
	if pr.Step <= 0 {
		return 0
	}
	n := 0
	for pr.Penalty(n) < pr.End {
		n++
	}
	return n
}

// DefaultPenaltyRanges are the ranges over which each scoring method's posterior goes from
// "every edge" to "no edge" on the recorded data sets.
var DefaultPenaltyRanges = map[neuro.Method]PenaltyRange{
	neuro.MethodCoSpike:   {Start: 0.00001, End: 0.1, Step: 0.0001},
	neuro.MethodAgreement: {Start: 0.6, End: 1.0, Step: 0.001},
	neuro.MethodSigned:    {Start: 0.2, End: 1.0, Step: 0.001},
}

// SweepPoint is the outcome of one chain of a penalty sweep.
type SweepPoint struct {
	Method          neuro.Method
	Penalty         float64
	LogPosterior    float64 // penalty included
	LogLikelihood   float64 // penalty excluded
	ModeProbability float64 // empirical probability of the mode
	Result          neuro.ChainResult
}

// PenaltyCurve holds the sweep points of one method, ordered by penalty.
type PenaltyCurve struct {
	Method neuro.Method
	points *redblacktree.Tree
}

func newPenaltyCurve(method neuro.Method) *PenaltyCurve {
	return &PenaltyCurve{
		Method: method,
		points: redblacktree.NewWith(utils.Float64Comparator),
	}
}

func (curve *PenaltyCurve) put(pt *SweepPoint) {
	curve.points.Put(pt.Penalty, pt)
}

func (curve *PenaltyCurve) Len() int {
	return curve.points.Size()
}

// Points returns the curve's points in increasing penalty order.
func (curve *PenaltyCurve) Points() []*SweepPoint {
	pts := make([]*SweepPoint, 0, curve.points.Size())
	itr := curve.points.Iterator()
	for itr.Next() {
		pts = append(pts, itr.Value().(*SweepPoint))
	}
	return pts
}

// Get returns the point at the given penalty, if present.
func (curve *PenaltyCurve) Get(penalty float64) (*SweepPoint, bool) {
	val, found := curve.points.Get(penalty)
	if !found {
		return nil, false
	}
	return val.(*SweepPoint), true
}

// SweepOpts specifies a penalty sweep.
type SweepOpts struct {
	Chain     neuro.ChainConfig             // Method and Penalty are set per point
	Methods   []neuro.Method                // methods to sweep, in order
	Ranges    map[neuro.Method]PenaltyRange // missing methods use DefaultPenaltyRanges
	StopAfter int                           // stop a method after more than this many points ...
	StopBelow float64                       // ... whose LogPosterior is below this value
	OnPoint   func(pt *SweepPoint) error    // if set, called after each point in sweep order
}

// DefaultSweepOpts sweeps every method over its default range.
func DefaultSweepOpts() SweepOpts {
	return SweepOpts{
		Chain:     neuro.DefaultChainConfig(),
		Methods:   neuro.AllMethods,
		Ranges:    DefaultPenaltyRanges,
		StopAfter: 10,
		StopBelow: 1e-7,
	}
}

// sweepStream offsets the stream IDs used to derive per point seeds.
const sweepStream = 1 << 32

// Sweep runs one chain per (method, penalty) and returns one curve per method.
//
// Once more than StopAfter points of a method have a LogPosterior below StopBelow, the posterior mode
// is (nearly) the empty graph and the rest of that method's range is skipped.
func Sweep(trains []neuro.SpikeTrain, opts SweepOpts, src CouplingSource) ([]*PenaltyCurve, error) {
	if src == nil {
		src = DirectCouplings{}
	}

	curves := make([]*PenaltyCurve, 0, len(opts.Methods))
	for _, method := range opts.Methods {
		pr, ok := opts.Ranges[method]
		if !ok {
			pr, ok = DefaultPenaltyRanges[method]
		}
		if !ok {
			return nil, errors.Wrapf(neuro.ErrBadMethod, "no penalty range for %v", method)
		}
		if pr.Step <= 0 {
			return nil, errors.Wrapf(neuro.ErrBadPenalty, "%v step is %g", method, pr.Step)
		}

		curve := newPenaltyCurve(method)
		lowCount := 0
		for i := 0; ; i++ {
			penalty := pr.Penalty(i)
			if !(penalty < pr.End) {
				break
			}

			cfg := opts.Chain
			cfg.Method = method
			cfg.Penalty = penalty
			cfg.Seed = deriveSeed(opts.Chain.Seed, sweepStream+uint64(method)<<24+uint64(i))

			ch, err := NewChain(cfg, trains, src)
			if err != nil {
				return nil, err
			}
			res := ch.Run()

			pt := &SweepPoint{
				Method:          method,
				Penalty:         penalty,
				LogPosterior:    res.LogPosterior,
				LogLikelihood:   res.LogLikelihood,
				ModeProbability: res.ModeProbability,
				Result:          res,
			}
			curve.put(pt)

			if opts.OnPoint != nil {
				if err = opts.OnPoint(pt); err != nil {
					return nil, err
				}
			}

			if pt.LogPosterior < opts.StopBelow {
				lowCount++
				if lowCount > opts.StopAfter {
					klog.V(2).Infof("sweep %v: stopping at λ=%g after %d low points", method, penalty, lowCount)
					break
				}
			}
		}
		klog.V(1).Infof("sweep %v: %d points", method, curve.Len())
		curves = append(curves, curve)
	}
	return curves, nil
}
