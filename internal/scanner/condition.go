package scanner

import "CamarillaBacktester/internal/model"

// EvaluateCondition tests one condition against a month. A pivot that is
// missing or not a finite number never satisfies a condition.
func EvaluateCondition(mc model.MonthContext, c model.Condition) bool {
	pivot, ok := mc.Pivots.Level(c.Pivot)
	if !ok {
		return false
	}
	price, ok := mc.Price(c.Price)
	if !ok {
		return false
	}
	switch c.Op {
	case model.OpTouched:
		if c.Price == model.PriceHigh {
			return price >= pivot
		}
		return price <= pivot
	case model.OpAbove:
		return price > pivot
	case model.OpBelow:
		return price < pivot
	}
	return false
}

// evaluateRule reports whether every condition of rule holds for mc.
func evaluateRule(mc model.MonthContext, rule model.MonthRule) bool {
	for _, c := range rule.Conditions {
		if !EvaluateCondition(mc, c) {
			return false
		}
	}
	return true
}
