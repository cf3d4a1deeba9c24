package pattern

import (
	"errors"
	"reflect"
	"testing"

	"CamarillaBacktester/internal/model"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []model.MonthRule
	}{
		{
			name:  "single condition",
			input: "Month 0: High touched R3",
			want: []model.MonthRule{
				{Offset: 0, Conditions: []model.Condition{{Price: model.PriceHigh, Op: model.OpTouched, Pivot: model.PivotR3}}},
			},
		},
		{
			name:  "conjunction and case-insensitive keywords",
			input: "month -1: LOW Below s2 and high ABOVE p",
			want: []model.MonthRule{
				{Offset: -1, Conditions: []model.Condition{
					{Price: model.PriceLow, Op: model.OpBelow, Pivot: model.PivotS2},
					{Price: model.PriceHigh, Op: model.OpAbove, Pivot: model.PivotP},
				}},
			},
		},
		{
			name:  "clauses sorted by offset",
			input: "Month 2: High above R5; Month -3: Low touched S5;Month 0: Low above P",
			want: []model.MonthRule{
				{Offset: -3, Conditions: []model.Condition{{Price: model.PriceLow, Op: model.OpTouched, Pivot: model.PivotS5}}},
				{Offset: 0, Conditions: []model.Condition{{Price: model.PriceLow, Op: model.OpAbove, Pivot: model.PivotP}}},
				{Offset: 2, Conditions: []model.Condition{{Price: model.PriceHigh, Op: model.OpAbove, Pivot: model.PivotR5}}},
			},
		},
		{
			name:  "duplicate offsets kept in input order",
			input: "Month 0: High touched R1; Month 0: Low below S1",
			want: []model.MonthRule{
				{Offset: 0, Conditions: []model.Condition{{Price: model.PriceHigh, Op: model.OpTouched, Pivot: model.PivotR1}}},
				{Offset: 0, Conditions: []model.Condition{{Price: model.PriceLow, Op: model.OpBelow, Pivot: model.PivotS1}}},
			},
		},
		{
			name:  "extra whitespace and empty clauses",
			input: "  ;Month   1 :   High   touched   R4 ;; ",
			want: []model.MonthRule{
				{Offset: 1, Conditions: []model.Condition{{Price: model.PriceHigh, Op: model.OpTouched, Pivot: model.PivotR4}}},
			},
		},
	}
	for _, tt := range tests {
		got, err := Parse(tt.input)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if !reflect.DeepEqual(got.Rules, tt.want) {
			t.Errorf("%s: expected %+v, got %+v", tt.name, tt.want, got.Rules)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		input    string
		want     error
		fragment string
	}{
		{"Month 1 High touched R1", ErrMissingColon, "Month 1 High touched R1"},
		{"Month x: High touched R1", ErrBadOffset, "Month x"},
		{"Mnth 1: High touched R1", ErrBadOffset, "Mnth 1"},
		{"Month -9223372036854775808: High touched R1", ErrBadOffset, "Month -9223372036854775808"},
		{"Month 1201: High touched R1", ErrBadOffset, "Month 1201"},
		{"Month 99999999999999999999: High touched R1", ErrBadOffset, "Month 99999999999999999999"},
		{": High touched R1", ErrBadOffset, ""},
		{"Month 1: High touched R6", ErrBadCondition, "High touched R6"},
		{"Month 1: Close above P", ErrBadCondition, "Close above P"},
		{"Month 1: High crossed P", ErrBadCondition, "High crossed P"},
		{"Month 1: High touched R1 AND Low below S1", ErrBadCondition, "High touched R1 AND Low below S1"},
		{"Month 1: High touched R1 and", ErrBadCondition, ""},
		{"Month 1:", ErrBadCondition, ""},
		{"Month 1: High touched R1 or Low below S1", ErrBadCondition, "High touched R1 or Low below S1"},
		{"Month 0: High touched R1; Month 1: Low below", ErrBadCondition, "Low below"},
		{"", ErrEmptyPattern, ""},
		{" ; ;", ErrEmptyPattern, "; ;"},
	}
	for _, tt := range tests {
		got, err := Parse(tt.input)
		if err == nil {
			t.Errorf("%q: expected error, got pattern %v", tt.input, got)
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("%q: expected %v, got %v", tt.input, tt.want, err)
		}
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("%q: expected *SyntaxError, got %T", tt.input, err)
		} else if se.Fragment != tt.fragment {
			t.Errorf("%q: expected fragment %q, got %q", tt.input, tt.fragment, se.Fragment)
		}
		if len(got.Rules) != 0 {
			t.Errorf("%q: partial pattern returned: %v", tt.input, got)
		}
	}
}

func TestParse_RoundTrip(t *testing.T) {
	inputs := []string{
		"Month 0: High touched R3",
		"Month 1: low below s1 and High above R2; Month -2: Low touched S4",
		"Month 0: High touched R1; Month 0: Low below P",
	}
	for _, in := range inputs {
		p, err := Parse(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		again, err := Parse(p.String())
		if err != nil {
			t.Fatalf("canonical form %q does not parse: %v", p.String(), err)
		}
		if !reflect.DeepEqual(p, again) {
			t.Errorf("round trip changed pattern: %v -> %v", p, again)
		}
	}
}

func TestPatternString(t *testing.T) {
	p, err := Parse("Month 1: low below s1 and High above R2; Month -2: Low touched S4")
	if err != nil {
		t.Fatal(err)
	}
	want := "Month -2: Low touched S4; Month 1: Low below S1 and High above R2"
	if p.String() != want {
		t.Errorf("expected %q, got %q", want, p.String())
	}
	if p.MinOffset() != -2 || p.MaxOffset() != 1 {
		t.Errorf("expected offsets [-2,1], got [%d,%d]", p.MinOffset(), p.MaxOffset())
	}
}
