package model

import (
	"encoding/json"
	"strings"
	"time"
)

// PathSeparator joins the start and end zone of a transition label.
const PathSeparator = "->"

// IsPathLabel reports whether label describes a zone-to-zone transition.
func IsPathLabel(label string) bool {
	return strings.Contains(label, PathSeparator)
}

// OutcomeSet is a small insertion-ordered set of outcome labels.
type OutcomeSet struct {
	labels []string
}

// NewOutcomeSet builds a set from labels, dropping duplicates.
func NewOutcomeSet(labels ...string) OutcomeSet {
	var s OutcomeSet
	for _, l := range labels {
		s.Add(l)
	}
	return s
}

// Add inserts label if it is not already present.
func (s *OutcomeSet) Add(label string) {
	if s.Has(label) {
		return
	}
	s.labels = append(s.labels, label)
}

func (s OutcomeSet) Has(label string) bool {
	for _, l := range s.labels {
		if l == label {
			return true
		}
	}
	return false
}

func (s OutcomeSet) Len() int { return len(s.labels) }

// Labels returns a copy of the labels in insertion order.
func (s OutcomeSet) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// HasPath reports whether any label is a transition.
func (s OutcomeSet) HasPath() bool {
	for _, l := range s.labels {
		if IsPathLabel(l) {
			return true
		}
	}
	return false
}

func (s OutcomeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Labels())
}

func (s *OutcomeSet) UnmarshalJSON(data []byte) error {
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return err
	}
	*s = NewOutcomeSet(labels...)
	return nil
}

// Match is one successful alignment of a pattern and the outcome that followed.
type Match struct {
	Ticker      string     `json:"ticker,omitempty"`
	PremiseDate time.Time  `json:"premise_date"`
	OutcomeDate time.Time  `json:"outcome_date"`
	Outcomes    OutcomeSet `json:"outcomes"`
}
