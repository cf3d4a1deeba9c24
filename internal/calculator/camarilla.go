package calculator

import "CamarillaBacktester/internal/model"

// camarillaFactor scales the bar range for levels 1-4.
const camarillaFactor = 1.1

// Camarilla computes the Camarilla pivot levels from one bar. Open is unused.
// R5 falls back to close when low is not positive, which makes S5 equal close too.
func Camarilla(bar model.OHLCV) model.PivotSet {
	h, l, c := bar.High, bar.Low, bar.Close
	rng := h - l

	ps := model.PivotSet{
		P:  (h + l + c) / 3,
		R1: c + camarillaFactor*rng/12,
		S1: c - camarillaFactor*rng/12,
		R2: c + camarillaFactor*rng/6,
		S2: c - camarillaFactor*rng/6,
		R3: c + camarillaFactor*rng/4,
		S3: c - camarillaFactor*rng/4,
		R4: c + camarillaFactor*rng/2,
		S4: c - camarillaFactor*rng/2,
	}
	ps.R5 = c
	if l > 0 {
		ps.R5 = (h / l) * c
	}
	ps.S5 = c - (ps.R5 - c)
	return ps
}
