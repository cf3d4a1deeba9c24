package aggregate

import (
	"CamarillaBacktester/internal/model"

	"github.com/markcheno/go-talib"
)

const (
	histogramBins = 10
	histogramMax  = 100.0
	// minSpread is the std-dev below which a distribution is treated as flat.
	minSpread = 0.01
)

// Histogram bins the probabilities of entries into ten equal bins over
// [0, 100], the last bin closed on both ends. It returns nil for fewer than
// two entries or a near-constant distribution.
func Histogram(entries []model.ProbabilityEntry) *model.HistogramData {
	if len(entries) < 2 {
		return nil
	}
	values := make([]float64, len(entries))
	for i, e := range entries {
		values[i] = e.Probability
	}
	// population std-dev over the whole sample
	std := talib.StdDev(values, len(values), 1.0)
	if std[len(std)-1] < minSpread {
		return nil
	}

	width := histogramMax / histogramBins
	h := &model.HistogramData{
		Counts:   make([]int, histogramBins),
		BinEdges: make([]float64, histogramBins+1),
	}
	for i := range h.BinEdges {
		h.BinEdges[i] = float64(i) * width
	}
	for _, v := range values {
		if v < 0 || v > histogramMax {
			continue
		}
		idx := int(v / width)
		if idx >= histogramBins {
			idx = histogramBins - 1
		}
		h.Counts[idx]++
	}
	return h
}
