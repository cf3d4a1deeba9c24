package model

import (
	"fmt"
	"strings"
)

// PricePoint selects which extreme of a month a condition inspects.
type PricePoint string

const (
	PriceHigh PricePoint = "high"
	PriceLow  PricePoint = "low"
)

// Operator is the comparison applied between a price point and a pivot.
type Operator string

const (
	OpTouched Operator = "touched"
	OpAbove   Operator = "above"
	OpBelow   Operator = "below"
)

// Condition is one atomic "price vs. pivot" test.
type Condition struct {
	Price PricePoint `json:"price_point"`
	Op    Operator   `json:"operator"`
	Pivot PivotLabel `json:"pivot"`
}

func (c Condition) String() string {
	price := string(c.Price)
	if price != "" {
		price = strings.ToUpper(price[:1]) + price[1:]
	}
	return fmt.Sprintf("%s %s %s", price, c.Op, c.Pivot)
}

// MonthRule holds the conditions that must all hold for the month at Offset.
type MonthRule struct {
	Offset     int         `json:"offset"`
	Conditions []Condition `json:"conditions"`
}

func (r MonthRule) String() string {
	parts := make([]string, len(r.Conditions))
	for i, c := range r.Conditions {
		parts[i] = c.String()
	}
	return fmt.Sprintf("Month %d: %s", r.Offset, strings.Join(parts, " and "))
}

// Pattern is a parsed pattern expression, rules sorted by ascending offset.
type Pattern struct {
	Rules []MonthRule `json:"rules"`
}

// MinOffset returns the smallest rule offset, or 0 for an empty pattern.
func (p Pattern) MinOffset() int {
	if len(p.Rules) == 0 {
		return 0
	}
	m := p.Rules[0].Offset
	for _, r := range p.Rules[1:] {
		if r.Offset < m {
			m = r.Offset
		}
	}
	return m
}

// MaxOffset returns the largest rule offset, or 0 for an empty pattern.
func (p Pattern) MaxOffset() int {
	if len(p.Rules) == 0 {
		return 0
	}
	m := p.Rules[0].Offset
	for _, r := range p.Rules[1:] {
		if r.Offset > m {
			m = r.Offset
		}
	}
	return m
}

// String renders the canonical pattern text.
func (p Pattern) String() string {
	parts := make([]string, len(p.Rules))
	for i, r := range p.Rules {
		parts[i] = r.String()
	}
	return strings.Join(parts, "; ")
}

// MonthContext is what a condition is evaluated against: one month's
// extremes and the pivots that gate it.
type MonthContext struct {
	High   float64
	Low    float64
	Pivots *PivotSet
}

// Price returns the extreme selected by pp.
func (m MonthContext) Price(pp PricePoint) (float64, bool) {
	switch pp {
	case PriceHigh:
		return m.High, true
	case PriceLow:
		return m.Low, true
	}
	return 0, false
}
