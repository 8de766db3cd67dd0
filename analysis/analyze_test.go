package analysis

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/edmo-interaction/motion"
	"github.com/maastricht-university/edmo-interaction/scoring"
	"github.com/maastricht-university/edmo-interaction/speech"
	"github.com/maastricht-university/edmo-interaction/tracking"
	"github.com/maastricht-university/edmo-interaction/turns"
)

func box(x, y float64) tracking.Box {
	return tracking.Box{Left: x - 0.05, Top: y - 0.05, Right: x + 0.05, Bottom: y + 0.05}
}

func session() Input {
	words := []speech.Word{
		{Text: "hi", Start: 0, End: 1, SpeakerTag: 1, Confidence: 0.9},
		{Text: "wait", Start: 0.5, End: 0.8, SpeakerTag: 2, Confidence: 0.8},
		{Text: "what", Start: 1.5, End: 1.8, SpeakerTag: 1, Confidence: 0.9},
		{Text: "is", Start: 1.8, End: 1.9, SpeakerTag: 1, Confidence: 0.9},
		{Text: "this?", Start: 1.9, End: 2.2, SpeakerTag: 1, Confidence: 0.9},
		{Text: "great", Start: 2.6, End: 3, SpeakerTag: 2, Confidence: 0.95},
		{Text: "job", Start: 3, End: 3.3, SpeakerTag: 2, Confidence: 0.95},
	}
	tracks := []tracking.Track{
		{ID: "a", Frames: []tracking.Frame{
			{Time: 4, Box: box(0.2, 0.5), Confidence: 1},
			{Time: 5, Box: box(0.5, 0.5), Confidence: 1},
		}},
		{ID: "b", Frames: []tracking.Frame{
			{Time: 4, Box: box(0.8, 0.5), Confidence: 1},
			{Time: 5, Box: box(0.5, 0.5), Confidence: 1},
		}},
	}
	return Input{Words: words, Tracks: tracks}
}

func TestAnalyzeSession(t *testing.T) {
	r := Analyze(session(), Options{})

	require.Len(t, r.Turns, 4)
	assert.Equal(t, turns.Initiation, r.Turns[0].Type)
	assert.Equal(t, turns.Interruption, r.Turns[1].Type)
	assert.InDelta(t, -0.5, r.Turns[1].GapValue(), 1e-9)
	assert.Equal(t, []int{1, 2}, r.Speakers)

	assert.Equal(t, 4, r.TurnMetrics.TotalTurns)
	// two turns each: the tie goes to the lower tag
	assert.Equal(t, Dominance{Speaker: 1}, r.Dominance)
	assert.Equal(t, 1, r.TurnMetrics.Interruptions.Total)
	assert.Equal(t, 1, r.Language.Types.Questions)
	assert.Equal(t, 1, r.Language.Types.PraiseEncouragement)

	require.NotEmpty(t, r.Motion.InteractionEvents)
	assert.Equal(t, motion.Contact, r.Motion.InteractionEvents[0].Type)
	assert.InDelta(t, 5, r.Motion.InteractionEvents[0].Time, 1e-9)
	assert.Equal(t, 1, r.Motion.EventCounts[motion.Contact])

	assert.Equal(t, scoring.QualityHigh, r.Quality.Level)
	assert.True(t, r.Participants[0].Present)
	assert.True(t, r.Participants[1].Present)
	assert.GreaterOrEqual(t, r.Overall, 0.0)
	assert.LessOrEqual(t, r.Overall, 1.0)
}

func TestAnalyzeDegenerateInput(t *testing.T) {
	r := Analyze(Input{}, Options{})
	assert.NotNil(t, r.Turns)
	assert.Empty(t, r.Turns)
	assert.Zero(t, r.TurnMetrics.TotalTurns)
	assert.Empty(t, r.Speakers)
	assert.Zero(t, r.Dominance.Speaker)
	assert.Zero(t, r.TurnMetrics.AverageGapTime)
	assert.Zero(t, r.Motion.ProximityScore)
	assert.Equal(t, motion.Low, r.Motion.ActivityLevel)
	assert.Equal(t, scoring.QualityLow, r.Quality.Level)
	assert.NotEmpty(t, r.Findings)

	single := session()
	single.Tracks = single.Tracks[:1]
	r = Analyze(single, Options{})
	assert.Zero(t, r.Motion.SyncScore)
	assert.Empty(t, r.Motion.SynchronyEvents)
	assert.InDelta(t, 0.75, r.Quality.Score, 1e-9)
}

func TestSpeakersIgnoreInvalidWords(t *testing.T) {
	in := session()
	in.Words = append(in.Words,
		speech.Word{Text: "  ", Start: 4, End: 4.2, SpeakerTag: 3},
		speech.Word{Text: "late", Start: 5, End: 4.5, SpeakerTag: 4},
	)
	r := Analyze(in, Options{})
	assert.Equal(t, []int{1, 2}, r.Speakers)
	assert.Len(t, r.Turns, 4)
	for spk := range r.TurnMetrics.TurnDistribution {
		assert.Contains(t, r.Speakers, spk)
	}
}

func TestDominantSpeaker(t *testing.T) {
	in := session()
	in.Words = append(in.Words, speech.Word{Text: "right", Start: 4, End: 4.3, SpeakerTag: 1, Confidence: 0.9})
	r := Analyze(in, Options{})
	require.Len(t, r.Turns, 5)
	assert.Equal(t, 1, r.Dominance.Speaker)
	assert.InDelta(t, 3.0/5-0.5, r.Dominance.Excess, 1e-9)
}

func TestReportJSONIsFlat(t *testing.T) {
	b, err := json.Marshal(Analyze(session(), Options{}))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, k := range []string{
		"overall_score", "interaction_score", "per_modality", "findings", "recommendations",
		"risk_factors", "strengths", "data_quality", "turns", "turn_metrics", "dominance", "motion", "language",
	} {
		assert.Contains(t, m, k)
	}
	mot := m["motion"].(map[string]any)
	assert.Equal(t, "high", mot["activity_level"])
}

func TestAnalyzeIsDeterministicAcrossGoroutines(t *testing.T) {
	in := session()
	want, err := json.Marshal(Analyze(in, Options{}))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = json.Marshal(Analyze(in, Options{}))
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.JSONEq(t, string(want), string(got))
	}
}
