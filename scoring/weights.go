// Package scoring fuses the per-modality analysis results into composite
// scores and derives findings, recommendations, risks and strengths from
// fixed threshold tables.
package scoring

import (
	"fmt"
	"math"
	"sort"
)

// Sub-score keys shared by the weight tables, the rule tables and the
// PerModality map of a Composite.
const (
	KeyParticipantA        = "participant_a"
	KeyParticipantB        = "participant_b"
	KeyBalance             = "conversation_balance"
	KeyCompletion          = "turn_completion"
	KeyTiming              = "response_timing"
	KeyVocabulary          = "vocabulary"
	KeyProximity           = "proximity"
	KeyMovementSynchrony   = "movement_synchrony"
	KeyActivityMatch       = "activity_match"
	KeyInteractionPatterns = "interaction_patterns"
	KeySynchrony           = "synchrony"
	KeyResponsiveness      = "responsiveness"
)

// weightTolerance bounds how far a table may drift from summing to one.
const weightTolerance = 1e-9

// Table maps sub-score keys to weights.
type Table map[string]float64

// Sum adds the weights in key order so the result is reproducible.
func (t Table) Sum() float64 {
	s := 0.0
	for _, k := range t.keys() {
		s += t[k]
	}
	return s
}

// Apply returns the weighted sum of the scores named by the table. Keys
// missing from scores contribute zero.
func (t Table) Apply(scores Scores) float64 {
	s := 0.0
	for _, k := range t.keys() {
		s += t[k] * scores[k]
	}
	return clamp01(s)
}

func (t Table) keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Weights holds every fixed-weight aggregation step.
type Weights struct {
	Patterns    Table `json:"patterns" yaml:"patterns"`
	Synchrony   Table `json:"synchrony" yaml:"synchrony"`
	Interaction Table `json:"interaction" yaml:"interaction"`
	Overall     Table `json:"overall" yaml:"overall"`
}

// DefaultWeights returns the built-in weight tables.
func DefaultWeights() Weights {
	return Weights{
		Patterns: Table{
			KeyBalance:    0.35,
			KeyCompletion: 0.30,
			KeyTiming:     0.20,
			KeyVocabulary: 0.15,
		},
		Synchrony: Table{
			KeyProximity:         0.4,
			KeyMovementSynchrony: 0.4,
			KeyActivityMatch:     0.2,
		},
		Interaction: Table{
			KeyInteractionPatterns: 0.5,
			KeySynchrony:           0.3,
			KeyResponsiveness:      0.2,
		},
		Overall: Table{
			KeyParticipantA:        0.25,
			KeyParticipantB:        0.25,
			KeyInteractionPatterns: 0.3,
			KeySynchrony:           0.2,
		},
	}
}

// Validate checks that every table is non-empty, has no negative weight and
// sums to one.
func (w Weights) Validate() error {
	tables := []struct {
		name string
		t    Table
	}{
		{"patterns", w.Patterns},
		{"synchrony", w.Synchrony},
		{"interaction", w.Interaction},
		{"overall", w.Overall},
	}
	for _, tb := range tables {
		if len(tb.t) == 0 {
			return fmt.Errorf("weights %s: empty table", tb.name)
		}
		for k, v := range tb.t {
			if v < 0 || math.IsNaN(v) {
				return fmt.Errorf("weights %s: invalid weight %v for %q", tb.name, v, k)
			}
		}
		if s := tb.t.Sum(); math.Abs(s-1) > weightTolerance {
			return fmt.Errorf("weights %s: sum is %v, want 1", tb.name, s)
		}
	}
	return nil
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
