package orchestrator

import (
	"time"

	"github.com/maastricht-university/edmo-interaction/analysis"
)

// Speech payload formats accepted by Session.SpeechFormat.
const (
	FormatEDMO       = "edmo"
	FormatGoogle     = "google"
	FormatTranscribe = "transcribe"
)

// Session names the inputs of one recorded session. Speech comes from
// SpeechPath, or from the ASR service when only AudioPath is set.
type Session struct {
	Label        string `json:"label,omitempty" yaml:"label"`
	SpeechPath   string `json:"speech,omitempty" yaml:"speech"`
	SpeechFormat string `json:"speech_format,omitempty" yaml:"speech_format"`
	TracksPath   string `json:"tracks,omitempty" yaml:"tracks"`
	ProfilesPath string `json:"profiles,omitempty" yaml:"profiles"`
	AudioPath    string `json:"audio,omitempty" yaml:"audio"`
}

// Bundle is what gets persisted and published for a session.
type Bundle struct {
	SessionID   string    `json:"session_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Inputs      Session   `json:"inputs"`

	// ProfileSource is "file", "emotion" or "none".
	ProfileSource string          `json:"profile_source"`
	Report        analysis.Report `json:"report"`
	Charts        []string        `json:"charts,omitempty"`
}

// Result locates the artifacts written for a session.
type Result struct {
	SessionID  string
	Dir        string
	ReportPath string
	YAMLPath   string
	Bundle     *Bundle
}
