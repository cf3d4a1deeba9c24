package scanner

import (
	"fmt"
	"strings"

	"CamarillaBacktester/internal/calculator"
	"CamarillaBacktester/internal/model"
)

// outcomeWindow is how many bars at each end of the outcome month are averaged.
const outcomeWindow = 5

// ClassifyOutcome labels how price moved through the pivot zones during the
// outcome month. It always reports the ending zone, and adds either a
// "Stays in" or a transition label when both zones are determinable.
func ClassifyOutcome(bars []model.OHLCV, pivots *model.PivotSet) model.OutcomeSet {
	if len(bars) == 0 {
		return model.OutcomeSet{}
	}
	n := outcomeWindow
	if len(bars) < n {
		n = len(bars)
	}
	startZone := calculator.Zone(meanClose(bars[:n]), pivots)
	endZone := calculator.Zone(meanClose(bars[len(bars)-n:]), pivots)

	out := model.NewOutcomeSet("Ends in " + endZone)
	if undetermined(startZone) || undetermined(endZone) {
		return out
	}
	if startZone == endZone {
		out.Add("Stays in " + startZone)
	} else {
		out.Add(fmt.Sprintf("%s %s %s", startZone, model.PathSeparator, endZone))
	}
	return out
}

func undetermined(zone string) bool {
	return strings.Contains(zone, "Unknown") || strings.Contains(zone, "Invalid")
}

func meanClose(bars []model.OHLCV) float64 {
	sum := 0.0
	for _, b := range bars {
		sum += b.Close
	}
	return sum / float64(len(bars))
}
