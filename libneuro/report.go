package libneuro

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/2x3systems/neurograph/neuro"
	"github.com/pkg/errors"
)

// ReportNames are the output filenames of one (mouse, region, part, method) run.
type ReportNames struct {
	Run       string    // general run information; appended to by every run
	Adjacency string    // adjacency matrix of the posterior mode
	Curves    [3]string // penalty vs: log posterior, log likelihood, mode probability
}

// NewReportNames returns the report filenames for the given recording and method.
func NewReportNames(ds *neuro.Dataset, method neuro.Method) ReportNames {
	suffix := fmt.Sprintf("M%d%sp%d%v.dat", ds.Mouse, ds.Region, ds.Part, method)
	return ReportNames{
		Run:       "output" + suffix,
		Adjacency: "adj" + suffix,
		Curves: [3]string{
			"penal1" + suffix,
			"penal2" + suffix,
			"penal3" + suffix,
		},
	}
}

// WriteAdjacencyMatrix prints the symmetric adjacency matrix of key, with the neuron labels heading
// every row and column.
func WriteAdjacencyMatrix(w io.Writer, es neuro.EdgeSpace, key neuro.GraphKey, labels []string) error {
	if len(labels) != es.NumVertex {
		return errors.Errorf("got %d labels for %d neurons", len(labels), es.NumVertex)
	}
	out := bufio.NewWriter(w)

	out.WriteString("    ")
	for _, label := range labels {
		fmt.Fprintf(out, " %s ", label)
	}
	out.WriteByte('\n')

	for i, label := range labels {
		out.WriteString(label)
		out.WriteByte(' ')
		for j := range labels {
			c := byte('0')
			if i != j && es.HasEdge(key, es.Slot(i, j)) {
				c = '1'
			}
			fmt.Fprintf(out, "  %c  ", c)
		}
		out.WriteByte('\n')
	}
	return out.Flush()
}

// WriteGraph prints key as specified by opts.
func WriteGraph(w io.Writer, es neuro.EdgeSpace, key neuro.GraphKey, labels []string, opts neuro.PrintOpts) error {
	if opts.Label != "" {
		if _, err := fmt.Fprintf(w, "%s\n", opts.Label); err != nil {
			return err
		}
	}
	if opts.Vector {
		if _, err := fmt.Fprintf(w, "%s\n", es.Bits(key)); err != nil {
			return err
		}
	}
	if opts.Matrix {
		return WriteAdjacencyMatrix(w, es, key, labels)
	}
	return nil
}

// WriteRunReport appends the summary of a finished chain over ds.
func WriteRunReport(w io.Writer, ds *neuro.Dataset, cfg neuro.ChainConfig, res neuro.ChainResult) error {
	labels := ds.Labels()
	out := bufio.NewWriter(w)

	fmt.Fprintf(out, "** Mouse %d - %s - part %d **\n", ds.Mouse, ds.Region, ds.Part)
	fmt.Fprintf(out, "\nNumber of neurons: %d", len(labels))
	fmt.Fprintf(out, "\nNeurons labels: %s", strings.Join(labels, " "))
	fmt.Fprintf(out, "\nScoring method: %d", int(cfg.Method))
	fmt.Fprintf(out, "\nMC steps: %d", res.TotalSteps)
	fmt.Fprintf(out, "\nMaximum allowed MC steps: %d", res.MaxSteps)
	fmt.Fprintf(out, "\nTotal graphs counted: %d", res.TotalVisits)
	fmt.Fprintf(out, "\nPenalty constant: %.5f", cfg.Penalty)
	fmt.Fprintf(out, "\nDistinct graphs: %d", res.DistinctGraphs)
	fmt.Fprintf(out, "\nAccepted graphs: %d", res.Accepted)
	fmt.Fprintf(out, "\nMost representative graph counter = %d", res.ModeCount)
	fmt.Fprintf(out, "\nMost representative graph probability = %.5f", res.ModeProbability)
	fmt.Fprintf(out, "\nLog posterior (penalty included) = %.10f", res.LogPosterior)
	fmt.Fprintf(out, "\nLog posterior (penalty excluded) = %.10f", res.LogLikelihood)
	out.WriteString("\nMost representative graph (vectorial form):\n")
	out.WriteString(res.Space.Bits(res.ModeGraph))
	out.WriteString("\nMost representative graph (adjacency matrix):\n")
	if err := WriteAdjacencyMatrix(out, res.Space, res.ModeGraph, labels); err != nil {
		return err
	}
	out.WriteString("\n\n")
	return out.Flush()
}

// CurveValue selects which value of a sweep point a penalty curve file lists.
type CurveValue int

const (
	CurveLogPosterior CurveValue = iota
	CurveLogLikelihood
	CurveModeProbability
)

func (pt *SweepPoint) Value(which CurveValue) float64 {
	switch which {
	case CurveLogPosterior:
		return pt.LogPosterior
	case CurveLogLikelihood:
		return pt.LogLikelihood
	default:
		return pt.ModeProbability
	}
}

// WritePenaltyPoint writes one "penalty value" line.
func WritePenaltyPoint(w io.Writer, pt *SweepPoint, which CurveValue) error {
	_, err := fmt.Fprintf(w, "%.7f  %.10f\n", pt.Penalty, pt.Value(which))
	return err
}

// WritePenaltyCurve writes every point of curve in increasing penalty order.
func WritePenaltyCurve(w io.Writer, curve *PenaltyCurve, which CurveValue) error {
	out := bufio.NewWriter(w)
	for _, pt := range curve.Points() {
		if err := WritePenaltyPoint(out, pt, which); err != nil {
			return err
		}
	}
	return out.Flush()
}

// WritePenaltyCurves writes the three curve files of curve, one per CurveValue.
func WritePenaltyCurves(w [3]io.Writer, curve *PenaltyCurve) error {
	for which := range w {
		if err := WritePenaltyCurve(w[which], curve, CurveValue(which)); err != nil {
			return err
		}
	}
	return nil
}
