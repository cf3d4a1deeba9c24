// Package pattern compiles the month pattern language into a model.Pattern.
//
//	pattern   = clause { ";" clause }
//	clause    = "Month" int ":" condition { "and" condition }
//	condition = ("High" | "Low") ("touched" | "above" | "below") pivot
//	pivot     = "P" | "R1".."R5" | "S1".."S5"
//
// Keywords are case-insensitive except the "and" conjunction, which must be
// lower case.
package pattern

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"CamarillaBacktester/internal/model"
)

var (
	ErrEmptyPattern = errors.New("pattern has no month clauses")
	ErrMissingColon = errors.New("invalid month definition, missing ':'")
	ErrBadOffset    = errors.New("could not parse month offset")
	ErrBadCondition = errors.New("invalid condition format")
)

// conjunction separates conditions inside a clause.
const conjunction = "and"

// MaxOffset bounds the absolute month offset of a clause (a century).
const MaxOffset = 1200

// SyntaxError reports the fragment of the pattern that failed to parse.
type SyntaxError struct {
	Fragment string
	Err      error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v: '%s'", e.Err, e.Fragment)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Parse compiles text into a pattern whose rules are stably sorted by offset.
// Either the whole pattern parses or an error is returned.
func Parse(text string) (model.Pattern, error) {
	var rules []model.MonthRule
	for _, part := range strings.Split(text, ";") {
		clause := strings.TrimSpace(part)
		if clause == "" {
			continue
		}
		rule, err := parseClause(clause)
		if err != nil {
			return model.Pattern{}, err
		}
		rules = append(rules, rule)
	}
	if len(rules) == 0 {
		return model.Pattern{}, &SyntaxError{Fragment: strings.TrimSpace(text), Err: ErrEmptyPattern}
	}
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Offset < rules[j].Offset })
	return model.Pattern{Rules: rules}, nil
}

func parseClause(clause string) (model.MonthRule, error) {
	toks := tokenize(clause)
	colon := -1
	for i, t := range toks {
		if t.kind == tokColon {
			colon = i
			break
		}
	}
	if colon < 0 {
		return model.MonthRule{}, &SyntaxError{Fragment: clause, Err: ErrMissingColon}
	}

	offset, err := parseOffset(toks[:colon])
	if err != nil {
		return model.MonthRule{}, err
	}

	rule := model.MonthRule{Offset: offset}
	body := toks[colon+1:]
	start := 0
	for i := 0; i <= len(body); i++ {
		if i < len(body) && !(body[i].kind == tokWord && body[i].text == conjunction) {
			continue
		}
		cond, err := parseCondition(body[start:i])
		if err != nil {
			return model.MonthRule{}, err
		}
		rule.Conditions = append(rule.Conditions, cond)
		start = i + 1
	}
	return rule, nil
}

func parseOffset(head []token) (int, error) {
	bad := &SyntaxError{Fragment: joinTokens(head), Err: ErrBadOffset}
	if len(head) != 2 || !strings.EqualFold(head[0].text, "month") {
		return 0, bad
	}
	n, err := strconv.Atoi(head[1].text)
	if err != nil || n < -MaxOffset || n > MaxOffset {
		return 0, bad
	}
	return n, nil
}

func parseCondition(toks []token) (model.Condition, error) {
	bad := &SyntaxError{Fragment: joinTokens(toks), Err: ErrBadCondition}
	if len(toks) != 3 {
		return model.Condition{}, bad
	}
	for _, t := range toks {
		if t.kind != tokWord {
			return model.Condition{}, bad
		}
	}

	var c model.Condition
	switch strings.ToLower(toks[0].text) {
	case "high":
		c.Price = model.PriceHigh
	case "low":
		c.Price = model.PriceLow
	default:
		return model.Condition{}, bad
	}
	switch strings.ToLower(toks[1].text) {
	case "touched":
		c.Op = model.OpTouched
	case "above":
		c.Op = model.OpAbove
	case "below":
		c.Op = model.OpBelow
	default:
		return model.Condition{}, bad
	}
	label, ok := model.ParsePivotLabel(toks[2].text)
	if !ok {
		return model.Condition{}, bad
	}
	c.Pivot = label
	return c, nil
}
