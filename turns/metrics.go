package turns

import (
	"math"
	"sort"
)

// Interruptions counts INTERRUPTION turns by who interrupted and who was cut off.
type Interruptions struct {
	Total       int         `json:"total"`
	ByInitiator map[int]int `json:"by_initiator"`
	ByTarget    map[int]int `json:"by_target"`
}

// Metrics is the turn-taking summary of a session.
type Metrics struct {
	TotalTurns         int           `json:"total_turns"`
	AverageTurnLength  float64       `json:"average_turn_length"`
	TurnDistribution   map[int]int   `json:"turn_distribution"`
	TurnInitiation     map[int]int   `json:"turn_initiation"`
	TurnResponse       map[int]int   `json:"turn_response"`
	AverageGapTime     float64       `json:"average_gap_time"`
	AverageOverlapTime float64       `json:"average_overlap_time"`
	GapCount           int           `json:"gap_count"`
	OverlapCount       int           `json:"overlap_count"`
	Interruptions      Interruptions `json:"interruptions"`
	SuccessfulTurns    int           `json:"successful_turns"`
	FailedTurns        int           `json:"failed_turns"`
	TurnCompletionRate float64       `json:"turn_completion_rate"`
}

// Aggregate computes turn-taking metrics. INITIATION and CONTINUATION turns
// count as initiations, RESPONSE turns as responses. Every non-initial turn
// contributes to exactly one of the gap or overlap averages.
func Aggregate(turns []Turn) Metrics {
	m := Metrics{
		TurnDistribution: map[int]int{},
		TurnInitiation:   map[int]int{},
		TurnResponse:     map[int]int{},
		Interruptions:    Interruptions{ByInitiator: map[int]int{}, ByTarget: map[int]int{}},
	}
	if len(turns) == 0 {
		return m
	}

	var totalLen, gapSum, overlapSum float64
	for _, t := range turns {
		m.TotalTurns++
		totalLen += t.Duration
		m.TurnDistribution[t.SpeakerID]++

		switch t.Type {
		case Initiation, Continuation:
			m.TurnInitiation[t.SpeakerID]++
		case Response:
			m.TurnResponse[t.SpeakerID]++
		}

		if t.Gap != nil {
			if g := *t.Gap; g >= 0 {
				gapSum += g
				m.GapCount++
			} else {
				overlapSum += -g
				m.OverlapCount++
			}
		}

		if t.Type == Interruption {
			m.FailedTurns++
			m.Interruptions.Total++
			m.Interruptions.ByInitiator[t.SpeakerID]++
			if t.PreviousSpeaker != 0 {
				m.Interruptions.ByTarget[t.PreviousSpeaker]++
			}
		} else {
			m.SuccessfulTurns++
		}
	}

	m.AverageTurnLength = totalLen / float64(m.TotalTurns)
	if m.GapCount > 0 {
		m.AverageGapTime = gapSum / float64(m.GapCount)
	}
	if m.OverlapCount > 0 {
		m.AverageOverlapTime = overlapSum / float64(m.OverlapCount)
	}
	m.TurnCompletionRate = float64(m.SuccessfulTurns) / float64(m.TotalTurns)
	return m
}

// Balance measures how evenly turns are spread: 1 − meanAbsDeviation/ideal,
// where ideal = 1/speakerCount and speakerCount is at least expected.
// Returns 0 without turns.
func Balance(distribution map[int]int, expected int) float64 {
	total := 0
	for _, n := range distribution {
		total += n
	}
	speakers := len(distribution)
	if expected > speakers {
		speakers = expected
	}
	if total == 0 || speakers == 0 {
		return 0
	}

	ideal := 1 / float64(speakers)
	dev := 0.0
	for _, n := range distribution {
		dev += math.Abs(float64(n)/float64(total) - ideal)
	}
	// absent speakers hold a zero share
	dev += float64(speakers-len(distribution)) * ideal
	mad := dev / float64(speakers)
	return clamp01(1 - mad/ideal)
}

// Dominance returns the speaker with the largest turn share and how far that
// share exceeds the uniform share. Ties go to the lowest speaker id.
func Dominance(distribution map[int]int) (speaker int, excess float64) {
	total := 0
	ids := make([]int, 0, len(distribution))
	for id, n := range distribution {
		total += n
		ids = append(ids, id)
	}
	if total == 0 {
		return 0, 0
	}
	sort.Ints(ids)
	best := ids[0]
	for _, id := range ids[1:] {
		if distribution[id] > distribution[best] {
			best = id
		}
	}
	share := float64(distribution[best]) / float64(total)
	return best, share - 1/float64(len(ids))
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
