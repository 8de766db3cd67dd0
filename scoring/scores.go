package scoring

import (
	"math"
	"sort"

	"github.com/maastricht-university/edmo-interaction/language"
	"github.com/maastricht-university/edmo-interaction/motion"
	"github.com/maastricht-university/edmo-interaction/turns"
)

// ResponseWindow is the longest gap, in seconds, that still counts as a
// prompt response to the other speaker.
const ResponseWindow = 2.0

// Average gaps at or below promptGap score full response timing, falling
// linearly to zero at slowGap.
const (
	promptGap = 1.0
	slowGap   = 5.0
)

const roleA, roleB = "a", "b"

// Scores maps sub-score keys to values in [0,1].
type Scores map[string]float64

// Participant holds the sub-scores of one conversational role.
type Participant struct {
	Role           string  `json:"role"`
	SpeakerID      int     `json:"speaker_id"`
	Present        bool    `json:"present"`
	Engagement     float64 `json:"engagement"`
	Responsiveness float64 `json:"responsiveness"`
	Supportiveness float64 `json:"supportiveness"`
	Regulation     float64 `json:"regulation"`
	Score          float64 `json:"score"`
}

// Input is everything the scorer reads. All fields are treated as read-only.
type Input struct {
	Turns    []turns.Turn
	Metrics  turns.Metrics
	Language language.Stats
	Motion   motion.Result
	Profiles map[int]Profile
	Quality  Quality
}

// Options configures Score. Zero values take the built-in tables, and so
// do Weights that fail Validate.
type Options struct {
	ResponseWindow float64
	Weights        *Weights
	Rules          []Rule
	Risks          []RiskRule
	Strengths      []StrengthRule
}

func (o Options) withDefaults() Options {
	if o.ResponseWindow <= 0 {
		o.ResponseWindow = ResponseWindow
	}
	if o.Weights == nil || o.Weights.Validate() != nil {
		w := DefaultWeights()
		o.Weights = &w
	}
	if o.Rules == nil {
		o.Rules = DefaultRules()
	}
	if o.Risks == nil {
		o.Risks = DefaultRisks()
	}
	if o.Strengths == nil {
		o.Strengths = DefaultStrengths()
	}
	return o
}

// Composite is the scored summary of a session.
type Composite struct {
	Overall         float64       `json:"overall_score"`
	Interaction     float64       `json:"interaction_score"`
	PerModality     Scores        `json:"per_modality"`
	Participants    []Participant `json:"participants"`
	Findings        []string      `json:"findings"`
	Recommendations []string      `json:"recommendations"`
	RiskFactors     []Risk        `json:"risk_factors"`
	Strengths       []string      `json:"strengths"`
	Quality         Quality       `json:"data_quality"`
}

// Score computes every sub-score, the interaction and overall scores and the
// rule-derived texts. Weights that fail Weights.Validate are replaced by
// DefaultWeights.
func Score(in Input, opts Options) Composite {
	opts = opts.withDefaults()
	w := *opts.Weights

	ids := roles(in.Metrics.TurnDistribution)
	groups := turns.GroupBySpeaker(in.Turns)
	pa := participant(roleA, ids[0], in, groups, opts)
	pb := participant(roleB, ids[1], in, groups, opts)

	s := Scores{
		KeyParticipantA:      pa.Score,
		KeyParticipantB:      pb.Score,
		KeyBalance:           turns.Balance(in.Metrics.TurnDistribution, 2),
		KeyCompletion:        clamp01(in.Metrics.TurnCompletionRate),
		KeyTiming:            responseTiming(in.Metrics),
		KeyVocabulary:        vocabulary(in.Language),
		KeyProximity:         clamp01(in.Motion.ProximityScore),
		KeyMovementSynchrony: clamp01(in.Motion.SyncScore),
		KeyActivityMatch:     activityMatch(in.Motion.Participants),
		KeyResponsiveness:    (pa.Responsiveness + pb.Responsiveness) / 2,
	}
	for _, p := range []Participant{pa, pb} {
		s["engagement_"+p.Role] = p.Engagement
		s["responsiveness_"+p.Role] = p.Responsiveness
		s["supportiveness_"+p.Role] = p.Supportiveness
		s["regulation_"+p.Role] = p.Regulation
	}
	s[KeyInteractionPatterns] = w.Patterns.Apply(s)
	s[KeySynchrony] = w.Synchrony.Apply(s)

	c := Composite{
		Overall:      w.Overall.Apply(s),
		Interaction:  w.Interaction.Apply(s),
		PerModality:  s,
		Participants: []Participant{pa, pb},
		Quality:      in.Quality,
	}
	c.Findings, c.Recommendations = evaluateRules(opts.Rules, s)
	c.RiskFactors = evaluateRisks(opts.Risks, s)
	c.Strengths = evaluateStrengths(opts.Strengths, s)
	if in.Quality.Level == QualityLow {
		c.Findings = append(c.Findings, lowQualityFinding)
	}
	return c
}

// roles picks the two lowest speaker tags; absent roles are 0.
func roles(distribution map[int]int) [2]int {
	ids := make([]int, 0, len(distribution))
	for id, n := range distribution {
		if id > 0 && n > 0 {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	var out [2]int
	copy(out[:], ids)
	return out
}

func participant(role string, id int, in Input, groups map[int][]turns.Turn, opts Options) Participant {
	p := Participant{Role: role, SpeakerID: id}
	own := groups[id]
	if id == 0 || len(own) == 0 {
		p.Engagement, p.Responsiveness, p.Supportiveness, p.Regulation, p.Score = neutral, neutral, neutral, neutral, neutral
		return p
	}
	p.Present = true
	prof := in.Profiles[id]

	participation := 0.0
	if in.Metrics.TotalTurns > 0 {
		participation = math.Min(1, float64(len(own))/(float64(in.Metrics.TotalTurns)/2))
	}
	p.Engagement = clamp01(0.5*participation + 0.5*indicator(prof.Engagement))

	p.Responsiveness = responsiveness(own, opts.ResponseWindow)

	expressive := 0.0
	if ls, ok := in.Language.Speakers[id]; ok && ls.UtteranceCount > 0 {
		n := ls.Types.PraiseEncouragement + ls.Types.EmotionalExpressions
		expressive = math.Min(1, 2*float64(n)/float64(ls.UtteranceCount))
	}
	p.Supportiveness = clamp01(0.5*expressive + 0.5*indicator(prof.Supportiveness))

	restraint := 1 - float64(in.Metrics.Interruptions.ByInitiator[id])/float64(len(own))
	p.Regulation = clamp01(0.5*clamp01(restraint) + 0.5*indicator(prof.Stability))

	p.Score = (p.Engagement + p.Responsiveness + p.Supportiveness + p.Regulation) / 4
	return p
}

// responsiveness is the share of turns taken over from the other speaker
// that start within the response window.
func responsiveness(own []turns.Turn, window float64) float64 {
	handovers, prompt := 0, 0
	for _, t := range own {
		if t.Gap == nil || t.PreviousSpeaker == 0 || t.PreviousSpeaker == t.SpeakerID {
			continue
		}
		handovers++
		if g := *t.Gap; g >= 0 && g <= window {
			prompt++
		}
	}
	if handovers == 0 {
		return neutral
	}
	return float64(prompt) / float64(handovers)
}

func responseTiming(m turns.Metrics) float64 {
	if m.GapCount == 0 {
		return neutral
	}
	g := m.AverageGapTime
	if g <= promptGap {
		return 1
	}
	return clamp01((slowGap - g) / (slowGap - promptGap))
}

func vocabulary(st language.Stats) float64 {
	sum, n := 0.0, 0
	for _, s := range st.Speakers {
		if s.UtteranceCount > 0 {
			sum += s.VocabularyDiversity
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return clamp01(sum / float64(n))
}

func activityMatch(ps []motion.PersonActivity) float64 {
	if len(ps) < 2 {
		return 0
	}
	diff := math.Abs(float64(ps[0].Activity.Level - ps[1].Activity.Level))
	return clamp01(1 - diff/float64(motion.High-motion.Low))
}
