// Package speech holds the diarized word stream produced by the upstream
// transcription provider and the decoders that normalize its payloads.
package speech

import (
	"sort"
	"strings"
)

// Word is a single recognized word. SpeakerTag identifies a diarized voice
// within one session only.
type Word struct {
	Text       string  `json:"word"`
	Start      float64 `json:"start_time"`
	End        float64 `json:"end_time"`
	SpeakerTag int     `json:"speaker_tag"`
	Confidence float64 `json:"confidence"`
}

// Valid reports whether the word carries text, a positive speaker tag and
// a non-inverted time span.
func (w Word) Valid() bool {
	return strings.TrimSpace(w.Text) != "" && w.SpeakerTag > 0 && w.End >= w.Start
}

// Alternative is one candidate transcription of a fragment.
type Alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
	Words      []Word  `json:"words"`
}

// Fragment is one transcript result. Only the first alternative is used.
type Fragment struct {
	Alternatives []Alternative `json:"alternatives"`
}

// Flatten collects the words of the best alternative of every fragment and
// sorts them by start time. Input fragments are not modified.
func Flatten(fragments []Fragment) []Word {
	n := 0
	for _, f := range fragments {
		if len(f.Alternatives) > 0 {
			n += len(f.Alternatives[0].Words)
		}
	}
	out := make([]Word, 0, n)
	for _, f := range fragments {
		if len(f.Alternatives) == 0 {
			continue
		}
		out = append(out, f.Alternatives[0].Words...)
	}
	SortByStart(out)
	return out
}

// SortByStart orders words by start time, keeping input order for ties.
func SortByStart(words []Word) {
	sort.SliceStable(words, func(i, j int) bool { return words[i].Start < words[j].Start })
}

// Speakers returns the distinct speaker tags of valid words in ascending
// order, the same speakers turn segmentation sees.
func Speakers(words []Word) []int {
	seen := make(map[int]struct{}, 2)
	for _, w := range words {
		if w.Valid() {
			seen[w.SpeakerTag] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}
