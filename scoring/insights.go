package scoring

// Rule is one entry of the insight table. When a rule fires its finding is
// appended, and its recommendation too when non-empty.
type Rule struct {
	Name           string
	When           func(Scores) bool
	Finding        string
	Recommendation string
}

// Severity grades a risk factor.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

// RiskRule flags Key when its score falls below the threshold.
type RiskRule struct {
	Key      string
	Below    float64
	Severity Severity
	Message  string
}

// StrengthRule reports Key when its score exceeds the threshold.
type StrengthRule struct {
	Key     string
	Above   float64
	Message string
}

// Risk is a fired RiskRule together with the observed score.
type Risk struct {
	Key      string   `json:"key"`
	Score    float64  `json:"score"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

const lowQualityFinding = "Input data quality is low; treat these scores with caution."

func below(key string, v float64) func(Scores) bool {
	return func(s Scores) bool { return s[key] < v }
}

func above(key string, v float64) func(Scores) bool {
	return func(s Scores) bool { return s[key] > v }
}

// DefaultRules is the built-in insight table, evaluated in order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "high_engagement",
			When: func(s Scores) bool {
				return s["engagement_a"] > 0.8 && s["engagement_b"] > 0.8
			},
			Finding: "Both participants were highly engaged throughout the session.",
		},
		{
			Name: "low_engagement",
			When: func(s Scores) bool {
				return s["engagement_a"] < 0.4 || s["engagement_b"] < 0.4
			},
			Finding:        "One participant showed limited engagement.",
			Recommendation: "Invite the quieter participant in with open questions and shared tasks.",
		},
		{
			Name:           "dominance",
			When:           below(KeyBalance, 0.3),
			Finding:        "One party dominates the conversation.",
			Recommendation: "Encourage balanced turn-taking by pausing to let the partner respond.",
		},
		{
			Name:    "balanced_turns",
			When:    above(KeyBalance, 0.8),
			Finding: "Turn-taking was well balanced between the participants.",
		},
		{
			Name:           "frequent_interruptions",
			When:           below(KeyCompletion, 0.7),
			Finding:        "Frequent interruptions cut turns short.",
			Recommendation: "Practice waiting for the partner to finish before speaking.",
		},
		{
			Name:           "slow_responses",
			When:           below(KeyTiming, 0.4),
			Finding:        "Responses often followed long pauses.",
			Recommendation: "Use prompts or visual cues to keep the exchange flowing.",
		},
		{
			Name:    "movement_synchrony",
			When:    above(KeyMovementSynchrony, 0.6),
			Finding: "Participants frequently moved in synchrony.",
		},
		{
			Name:           "distance",
			When:           below(KeyProximity, 0.3),
			Finding:        "Participants stayed far apart for most of the session.",
			Recommendation: "Arrange the workspace so both participants can reach the robot together.",
		},
		{
			Name:           "activity_mismatch",
			When:           below(KeyActivityMatch, 0.5),
			Finding:        "Activity levels differed strongly between the participants.",
			Recommendation: "Offer roles that keep both participants physically involved.",
		},
		{
			Name:           "repetitive_vocabulary",
			When:           below(KeyVocabulary, 0.3),
			Finding:        "Vocabulary was narrow or repetitive.",
			Recommendation: "Model richer descriptive language during the activity.",
		},
	}
}

// DefaultRisks is the built-in risk table.
func DefaultRisks() []RiskRule {
	return []RiskRule{
		{Key: "responsiveness_a", Below: 0.5, Severity: SeverityModerate, Message: "Participant A rarely responds promptly to the partner."},
		{Key: "responsiveness_b", Below: 0.5, Severity: SeverityModerate, Message: "Participant B rarely responds promptly to the partner."},
		{Key: KeyBalance, Below: 0.3, Severity: SeverityHigh, Message: "The conversation is dominated by one participant."},
		{Key: KeyCompletion, Below: 0.5, Severity: SeverityHigh, Message: "Most turns were interrupted."},
		{Key: "regulation_a", Below: 0.4, Severity: SeverityModerate, Message: "Participant A shows signs of poor self-regulation."},
		{Key: "regulation_b", Below: 0.4, Severity: SeverityModerate, Message: "Participant B shows signs of poor self-regulation."},
		{Key: KeyProximity, Below: 0.2, Severity: SeverityLow, Message: "Participants rarely shared physical space."},
		{Key: KeyMovementSynchrony, Below: 0.1, Severity: SeverityLow, Message: "Almost no coordinated movement was observed."},
	}
}

// DefaultStrengths is the built-in strength table.
func DefaultStrengths() []StrengthRule {
	return []StrengthRule{
		{Key: "engagement_a", Above: 0.8, Message: "Participant A was highly engaged."},
		{Key: "engagement_b", Above: 0.8, Message: "Participant B was highly engaged."},
		{Key: "supportiveness_a", Above: 0.7, Message: "Participant A was encouraging and expressive."},
		{Key: "supportiveness_b", Above: 0.7, Message: "Participant B was encouraging and expressive."},
		{Key: KeyBalance, Above: 0.8, Message: "Balanced turn-taking."},
		{Key: KeyCompletion, Above: 0.9, Message: "Turns were rarely interrupted."},
		{Key: KeyTiming, Above: 0.8, Message: "Prompt responses between turns."},
		{Key: KeyMovementSynchrony, Above: 0.6, Message: "Well coordinated movement."},
		{Key: KeyProximity, Above: 0.7, Message: "Participants worked close together."},
	}
}

func evaluateRules(rules []Rule, s Scores) (findings, recommendations []string) {
	findings, recommendations = []string{}, []string{}
	for _, r := range rules {
		if r.When == nil || !r.When(s) {
			continue
		}
		if r.Finding != "" {
			findings = append(findings, r.Finding)
		}
		if r.Recommendation != "" {
			recommendations = append(recommendations, r.Recommendation)
		}
	}
	return findings, recommendations
}

func evaluateRisks(rules []RiskRule, s Scores) []Risk {
	out := []Risk{}
	for _, r := range rules {
		v, ok := s[r.Key]
		if ok && v < r.Below {
			out = append(out, Risk{Key: r.Key, Score: v, Severity: r.Severity, Message: r.Message})
		}
	}
	return out
}

func evaluateStrengths(rules []StrengthRule, s Scores) []string {
	out := []string{}
	for _, r := range rules {
		if v, ok := s[r.Key]; ok && v > r.Above {
			out = append(out, r.Message)
		}
	}
	return out
}
