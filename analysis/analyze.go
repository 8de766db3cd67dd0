// Package analysis runs the full interaction analysis of one session:
// segmentation, turn metrics, language statistics, motion and scoring.
// It performs no I/O and is safe to call from many goroutines at once.
package analysis

import (
	"github.com/maastricht-university/edmo-interaction/language"
	"github.com/maastricht-university/edmo-interaction/motion"
	"github.com/maastricht-university/edmo-interaction/scoring"
	"github.com/maastricht-university/edmo-interaction/speech"
	"github.com/maastricht-university/edmo-interaction/tracking"
	"github.com/maastricht-university/edmo-interaction/turns"
)

// Input is one session's raw data. It is read, never modified.
type Input struct {
	Words    []speech.Word
	Tracks   []tracking.Track
	Profiles map[int]scoring.Profile
}

// Options tunes each stage. The zero value uses every default.
type Options struct {
	Turns    turns.Options
	Motion   motion.Options
	Language language.Options
	Scoring  scoring.Options
}

// Dominance names the speaker holding the largest turn share and by how
// much that share exceeds an even split. Speaker is 0 without turns.
type Dominance struct {
	Speaker int     `json:"speaker"`
	Excess  float64 `json:"excess"`
}

// Report is the flat output record of a session.
type Report struct {
	scoring.Composite
	Speakers    []int          `json:"speakers"`
	Turns       []turns.Turn   `json:"turns"`
	TurnMetrics turns.Metrics  `json:"turn_metrics"`
	Dominance   Dominance      `json:"dominance"`
	Motion      motion.Result  `json:"motion"`
	Language    language.Stats `json:"language"`
}

// Analyze never fails: missing or malformed data degrades each stage to its
// neutral default and is reflected in the data-quality score.
func Analyze(in Input, opts Options) Report {
	ts := turns.Segment(in.Words, opts.Turns)
	metrics := turns.Aggregate(ts)
	lang := language.NewAnalyzer(opts.Language).Analyze(language.FromTurns(ts))
	mot := motion.Analyze(in.Tracks, opts.Motion)
	quality := scoring.AssessQuality(in.Words, in.Tracks)

	var dom Dominance
	dom.Speaker, dom.Excess = turns.Dominance(metrics.TurnDistribution)

	composite := scoring.Score(scoring.Input{
		Turns:    ts,
		Metrics:  metrics,
		Language: lang,
		Motion:   mot,
		Profiles: in.Profiles,
		Quality:  quality,
	}, opts.Scoring)

	return Report{
		Composite:   composite,
		Speakers:    speech.Speakers(in.Words),
		Turns:       ts,
		TurnMetrics: metrics,
		Dominance:   dom,
		Motion:      mot,
		Language:    lang,
	}
}
