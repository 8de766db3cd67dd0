package scoring

import (
	"math"

	"github.com/maastricht-university/edmo-interaction/speech"
	"github.com/maastricht-university/edmo-interaction/tracking"
)

// QualityLevel grades input completeness.
type QualityLevel string

const (
	QualityHigh   QualityLevel = "high"
	QualityMedium QualityLevel = "medium"
	QualityLow    QualityLevel = "low"
)

// Quality describes how complete the session inputs were. It never blocks
// scoring; consumers use it to discount results.
type Quality struct {
	Score       float64      `json:"score"`
	Level       QualityLevel `json:"level"`
	SpeechWords int          `json:"speech_words"`
	ValidWords  int          `json:"valid_words"`
	Tracks      int          `json:"tracks"`
	Frames      int          `json:"frames"`
	ValidFrames int          `json:"valid_frames"`
}

// AssessQuality weighs speech and tracking completeness equally. Tracking
// completeness is the valid frame share scaled by how many of the two
// expected people were seen.
func AssessQuality(words []speech.Word, tracks []tracking.Track) Quality {
	q := Quality{SpeechWords: len(words)}
	for _, w := range words {
		if w.Valid() {
			q.ValidWords++
		}
	}
	c := tracking.Count(tracks)
	q.Tracks, q.Frames, q.ValidFrames = c.Tracks, c.Frames, c.ValidFrames

	var speechPart, trackPart float64
	if q.SpeechWords > 0 {
		speechPart = float64(q.ValidWords) / float64(q.SpeechWords)
	}
	if q.Frames > 0 {
		seen := math.Min(float64(q.Tracks), 2) / 2
		trackPart = float64(q.ValidFrames) / float64(q.Frames) * seen
	}
	q.Score = clamp01(0.5*speechPart + 0.5*trackPart)

	switch {
	case q.Score >= 0.75:
		q.Level = QualityHigh
	case q.Score >= 0.4:
		q.Level = QualityMedium
	default:
		q.Level = QualityLow
	}
	return q
}
