// Package turns collapses a diarized word stream into conversation turns and
// aggregates turn-taking statistics over them.
package turns

import (
	"strings"

	"github.com/maastricht-university/edmo-interaction/speech"
)

// Type classifies how a turn relates to the one before it.
type Type string

const (
	Initiation   Type = "INITIATION"
	Response     Type = "RESPONSE"
	Continuation Type = "CONTINUATION"
	Interruption Type = "INTERRUPTION"
)

// Turn is a maximal run of same-speaker words. Gap is nil for the first
// turn of a session; a negative Gap is the overlap with the previous turn.
// PreviousSpeaker and NextSpeaker are 0 when there is no such turn.
type Turn struct {
	SpeakerID       int      `json:"speaker_id"`
	Start           float64  `json:"start"`
	End             float64  `json:"end"`
	Duration        float64  `json:"duration"`
	Text            string   `json:"text"`
	WordCount       int      `json:"word_count"`
	Type            Type     `json:"turn_type"`
	PreviousSpeaker int      `json:"previous_speaker,omitempty"`
	NextSpeaker     int      `json:"next_speaker,omitempty"`
	Gap             *float64 `json:"gap_duration,omitempty"`
}

// GapValue returns the gap, or 0 for the first turn.
func (t Turn) GapValue() float64 {
	if t.Gap == nil {
		return 0
	}
	return *t.Gap
}

// Options tunes segmentation. The zero value merges every same-speaker run.
type Options struct {
	// MaxPause splits a same-speaker run when the silence between two of its
	// words exceeds it (seconds). Zero disables splitting.
	MaxPause float64
}

type accumulator struct {
	speaker int
	start   float64
	end     float64
	words   []string
}

// Segment builds turns from words in time order. The input is copied and
// sorted; words failing speech.Word.Valid are dropped.
func Segment(words []speech.Word, opts Options) []Turn {
	sorted := make([]speech.Word, 0, len(words))
	for _, w := range words {
		if w.Valid() {
			sorted = append(sorted, w)
		}
	}
	if len(sorted) == 0 {
		return []Turn{}
	}
	speech.SortByStart(sorted)

	out := make([]Turn, 0, 16)
	var open *accumulator
	for _, w := range sorted {
		if open != nil && w.SpeakerTag == open.speaker && !pauseExceeded(opts, open.end, w.Start) {
			if w.End > open.end {
				open.end = w.End
			}
			open.words = append(open.words, strings.TrimSpace(w.Text))
			continue
		}
		if open != nil {
			out = closeTurn(out, open)
		}
		open = &accumulator{speaker: w.SpeakerTag, start: w.Start, end: w.End, words: []string{strings.TrimSpace(w.Text)}}
	}
	return closeTurn(out, open)
}

func pauseExceeded(opts Options, openEnd, nextStart float64) bool {
	return opts.MaxPause > 0 && nextStart-openEnd > opts.MaxPause
}

func closeTurn(out []Turn, a *accumulator) []Turn {
	t := Turn{
		SpeakerID: a.speaker,
		Start:     a.start,
		End:       a.end,
		Duration:  a.end - a.start,
		Text:      strings.Join(a.words, " "),
		WordCount: len(a.words),
	}
	if len(out) == 0 {
		t.Type = Initiation
		return append(out, t)
	}
	prev := &out[len(out)-1]
	prev.NextSpeaker = t.SpeakerID
	t.Type, t.Gap = classify(*prev, t.SpeakerID, t.Start)
	t.PreviousSpeaker = prev.SpeakerID
	return append(out, t)
}

// classify applies the turn-type rule against the previously closed turn.
func classify(prev Turn, speaker int, start float64) (Type, *float64) {
	gap := start - prev.End
	switch {
	case gap < 0:
		return Interruption, &gap
	case speaker == prev.SpeakerID:
		return Continuation, &gap
	default:
		return Response, &gap
	}
}

// GroupBySpeaker indexes turns by speaker, preserving time order. The result
// is built once and should be treated as read-only.
func GroupBySpeaker(turns []Turn) map[int][]Turn {
	out := make(map[int][]Turn, 2)
	for _, t := range turns {
		out[t.SpeakerID] = append(out[t.SpeakerID], t)
	}
	return out
}
