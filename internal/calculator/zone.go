package calculator

import (
	"fmt"
	"sort"

	"CamarillaBacktester/internal/model"
)

// Zone labels that do not name a band.
const (
	ZoneInvalidPivots = "Invalid Pivots"
	ZoneNoPivots      = "No Pivots"
	ZoneUnknown       = "Unknown Zone"
)

// Zone names the band price falls in relative to the levels of pivots.
//
// Levels are ordered highest first. A band is closed on its upper level, so a
// price equal to a level belongs to the band beneath it.
func Zone(price float64, pivots *model.PivotSet) string {
	if pivots == nil {
		return ZoneInvalidPivots
	}
	levels := pivots.Levels()
	if len(levels) == 0 {
		return ZoneNoPivots
	}
	sort.SliceStable(levels, func(i, j int) bool { return levels[i].Value > levels[j].Value })

	top := levels[0]
	if price > top.Value {
		return fmt.Sprintf("Above %s", top.Label)
	}
	for i := 0; i+1 < len(levels); i++ {
		upper, lower := levels[i], levels[i+1]
		if lower.Value < price && price <= upper.Value {
			return fmt.Sprintf("%s-%s Zone", lower.Label, upper.Label)
		}
	}
	bottom := levels[len(levels)-1]
	if price <= bottom.Value {
		return fmt.Sprintf("Below %s", bottom.Label)
	}
	// NaN prices end up here.
	return ZoneUnknown
}
