package libneuro

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/2x3systems/neurograph/neuro"
	"github.com/pkg/errors"
)

// BinParams specifies how spike times are sampled into bins.
//
// Bin j looks at the window [start + j*Stride, start + j*Stride + Window).
type BinParams struct {
	Window float64 // seconds
	Stride float64 // seconds between the starts of consecutive bins
}

// DefaultBinParams looks at one 10 ms window every second.
var DefaultBinParams = BinParams{
	Window: 0.01,
	Stride: 1.0,
}

// ReadSpikeTimes reads whitespace separated, non-decreasing spike times (in seconds).
func ReadSpikeTimes(r io.Reader) ([]float64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	var times []float64
	for scanner.Scan() {
		tok := scanner.Text()
		t, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, errors.Wrapf(neuro.ErrBadSpikeTimes, "value #%d %q", len(times)+1, tok)
		}
		if n := len(times); n > 0 && t < times[n-1] {
			return nil, errors.Wrapf(neuro.ErrBadSpikeTimes, "value #%d (%g) is less than its predecessor", n+1, t)
		}
		times = append(times, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return times, nil
}

// BinSpikeTimes returns numBins presence flags: bin j is 1 iff a spike falls in its window.
//
// If the spike times run out before the start of a bin, the recording is considered truncated.
func BinSpikeTimes(times []float64, start float64, numBins int, params BinParams) ([]uint8, error) {
	bins := make([]uint8, numBins)

	idx := 0
	for j := 0; j < numBins; j++ {
		t0 := start + float64(j)*params.Stride
		for idx < len(times) && times[idx] < t0 {
			idx++
		}
		if idx == len(times) {
			return nil, errors.Wrapf(neuro.ErrTruncatedSpikes, "no spikes at or after %gs (bin %d of %d)", t0, j+1, numBins)
		}
		if times[idx] < t0+params.Window {
			bins[j] = 1
		}
	}
	return bins, nil
}

// LoadSpikeTrain reads the spike time file at pathname and bins it.
func LoadSpikeTrain(label, pathname string, start float64, numBins int, params BinParams) (neuro.SpikeTrain, error) {
	file, err := os.Open(pathname)
	if err != nil {
		return neuro.SpikeTrain{}, err
	}
	defer file.Close()

	times, err := ReadSpikeTimes(file)
	if err == nil {
		var bins []uint8
		bins, err = BinSpikeTimes(times, start, numBins, params)
		if err == nil {
			return neuro.SpikeTrain{
				Label: label,
				Bins:  bins,
			}, nil
		}
	}
	return neuro.SpikeTrain{}, errors.Wrapf(err, "neuron %q (%s)", label, pathname)
}
