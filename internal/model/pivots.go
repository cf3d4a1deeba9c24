package model

import (
	"math"
	"strings"
)

// PivotLabel names one Camarilla level.
type PivotLabel string

const (
	PivotP  PivotLabel = "P"
	PivotR1 PivotLabel = "R1"
	PivotR2 PivotLabel = "R2"
	PivotR3 PivotLabel = "R3"
	PivotR4 PivotLabel = "R4"
	PivotR5 PivotLabel = "R5"
	PivotS1 PivotLabel = "S1"
	PivotS2 PivotLabel = "S2"
	PivotS3 PivotLabel = "S3"
	PivotS4 PivotLabel = "S4"
	PivotS5 PivotLabel = "S5"
)

// PivotLabels lists every level in the order the levels are derived. Zone
// classification relies on this order to break ties between equal values.
var PivotLabels = []PivotLabel{
	PivotP,
	PivotR1, PivotS1,
	PivotR2, PivotS2,
	PivotR3, PivotS3,
	PivotR4, PivotS4,
	PivotR5, PivotS5,
}

// ParsePivotLabel matches s case-insensitively against the known labels.
func ParsePivotLabel(s string) (PivotLabel, bool) {
	u := PivotLabel(strings.ToUpper(s))
	for _, l := range PivotLabels {
		if l == u {
			return l, true
		}
	}
	return "", false
}

// PivotSet holds the Camarilla levels computed from a single bar.
type PivotSet struct {
	P  float64 `json:"P"`
	R1 float64 `json:"R1"`
	R2 float64 `json:"R2"`
	R3 float64 `json:"R3"`
	R4 float64 `json:"R4"`
	R5 float64 `json:"R5"`
	S1 float64 `json:"S1"`
	S2 float64 `json:"S2"`
	S3 float64 `json:"S3"`
	S4 float64 `json:"S4"`
	S5 float64 `json:"S5"`
}

// Level returns the value for label. ok is false for unknown labels and for
// values that are not finite numbers.
func (p *PivotSet) Level(label PivotLabel) (v float64, ok bool) {
	if p == nil {
		return 0, false
	}
	switch label {
	case PivotP:
		v = p.P
	case PivotR1:
		v = p.R1
	case PivotR2:
		v = p.R2
	case PivotR3:
		v = p.R3
	case PivotR4:
		v = p.R4
	case PivotR5:
		v = p.R5
	case PivotS1:
		v = p.S1
	case PivotS2:
		v = p.S2
	case PivotS3:
		v = p.S3
	case PivotS4:
		v = p.S4
	case PivotS5:
		v = p.S5
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// PivotLevel pairs a label with its value.
type PivotLevel struct {
	Label PivotLabel
	Value float64
}

// Levels returns the defined levels in PivotLabels order.
func (p *PivotSet) Levels() []PivotLevel {
	if p == nil {
		return nil
	}
	out := make([]PivotLevel, 0, len(PivotLabels))
	for _, l := range PivotLabels {
		if v, ok := p.Level(l); ok {
			out = append(out, PivotLevel{Label: l, Value: v})
		}
	}
	return out
}
