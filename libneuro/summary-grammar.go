package libneuro

import (
	"io"

	"github.com/2x3systems/neurograph/neuro"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// SummaryFile is a dataset summary: one record per recorded mouse.
//
//	6 3 102.5 4380.0
//	T1E1 data/HP/m6/t1e1.txt
//	T1E2 data/HP/m6/t1e2.txt
//	T2E1 "data/HP/m6/t2 e1.txt"
//
// Labels and paths that start with a digit or contain spaces must be quoted.
type SummaryFile struct {
	Records []*SummaryRecord `@@*`
}

type SummaryRecord struct {
	Pos        lexer.Position
	Mouse      int          `@Number`
	NumNeurons int          `@Number`
	TMin       float64      `@Number`
	TMax       float64      `@Number`
	Neurons    []*NeuronRef `@@*`
}

type NeuronRef struct {
	Label string `@(Word | String)`
	Path  string `@(Word | String)`
}

var summaryLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Number", Pattern: `[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Word", Pattern: `[^\s"#]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var parseSummary = participle.MustBuild[SummaryFile](
	participle.Lexer(summaryLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
)

// ParseSummary reads a dataset summary and checks that each record lists as many neurons as it declares.
func ParseSummary(filename string, r io.Reader) (*SummaryFile, error) {
	summary, err := parseSummary.Parse(filename, r)
	if err != nil {
		return nil, errors.Wrap(neuro.ErrBadSummary, err.Error())
	}

	for _, rec := range summary.Records {
		if rec.NumNeurons != len(rec.Neurons) {
			return nil, errors.Wrapf(neuro.ErrBadSummary, "%v: mouse %d declares %d neurons but lists %d", rec.Pos, rec.Mouse, rec.NumNeurons, len(rec.Neurons))
		}
		if rec.TMax < rec.TMin {
			return nil, errors.Wrapf(neuro.ErrBadSummary, "%v: mouse %d ends (%g) before it starts (%g)", rec.Pos, rec.Mouse, rec.TMax, rec.TMin)
		}
	}
	return summary, nil
}

// Find returns the first record for the given mouse.
func (summary *SummaryFile) Find(mouse int) *SummaryRecord {
	for _, rec := range summary.Records {
		if rec.Mouse == mouse {
			return rec
		}
	}
	return nil
}
