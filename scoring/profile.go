package scoring

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// neutral stands in for any missing or undefined indicator.
const neutral = 0.5

// Profile is an externally supplied per-speaker summary. Each indicator is
// in [0,1]; nil means unknown and scores as neutral.
type Profile struct {
	Engagement     *float64 `json:"engagement,omitempty" yaml:"engagement,omitempty"`
	Stability      *float64 `json:"stability,omitempty" yaml:"stability,omitempty"`
	Supportiveness *float64 `json:"supportiveness,omitempty" yaml:"supportiveness,omitempty"`
}

// NewProfile builds a fully populated profile.
func NewProfile(engagement, stability, supportiveness float64) Profile {
	return Profile{Engagement: &engagement, Stability: &stability, Supportiveness: &supportiveness}
}

func indicator(v *float64) float64 {
	if v == nil {
		return neutral
	}
	return clamp01(*v)
}

// LoadProfiles decodes a speaker-tag keyed profile document. JSON is a
// subset of YAML, so both encodings are accepted.
func LoadProfiles(r io.Reader) (map[int]Profile, error) {
	raw := map[string]Profile{}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("profiles decode: %w", err)
	}
	out := make(map[int]Profile, len(raw))
	for k, p := range raw {
		tag, err := strconv.Atoi(k)
		if err != nil || tag <= 0 {
			return nil, fmt.Errorf("profiles decode: invalid speaker tag %q", k)
		}
		out[tag] = p
	}
	return out, nil
}
