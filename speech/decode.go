package speech

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/maastricht-university/edmo-interaction/timeutil"
)

// wire shapes of the transcription JSON. Times go through timeutil so both
// "1.5s" and {"seconds":1,"nanos":5e8} are accepted.
type wireWord struct {
	Word       string              `json:"word"`
	StartTime  *timeutil.Timestamp `json:"startTime"`
	EndTime    *timeutil.Timestamp `json:"endTime"`
	SpeakerTag int                 `json:"speakerTag"`
	Confidence float64             `json:"confidence"`
}

type wireAlternative struct {
	Transcript string     `json:"transcript"`
	Confidence float64    `json:"confidence"`
	Words      []wireWord `json:"words"`
}

type wireFragment struct {
	Alternatives []wireAlternative `json:"alternatives"`
}

type wireEnvelope struct {
	Results []wireFragment `json:"results"`
}

// Decode reads a transcription payload: either a bare array of fragments or
// an object with a "results" array.
func Decode(r io.Reader) ([]Fragment, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("speech read: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	var wire []wireFragment
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, fmt.Errorf("speech decode: %w", err)
		}
	} else {
		var env wireEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("speech decode: %w", err)
		}
		wire = env.Results
	}

	out := make([]Fragment, 0, len(wire))
	for i, wf := range wire {
		f := Fragment{Alternatives: make([]Alternative, 0, len(wf.Alternatives))}
		for _, wa := range wf.Alternatives {
			alt := Alternative{Transcript: wa.Transcript, Confidence: wa.Confidence, Words: make([]Word, 0, len(wa.Words))}
			for j, ww := range wa.Words {
				if ww.StartTime == nil || ww.EndTime == nil {
					return nil, fmt.Errorf("speech decode: fragment %d word %d: %w",
						i, j, &timeutil.ParseError{Value: ww.Word, Reason: "missing startTime or endTime"})
				}
				alt.Words = append(alt.Words, Word{
					Text:       ww.Word,
					Start:      ww.StartTime.Seconds(),
					End:        ww.EndTime.Seconds(),
					SpeakerTag: ww.SpeakerTag,
					Confidence: ww.Confidence,
				})
			}
			f.Alternatives = append(f.Alternatives, alt)
		}
		out = append(out, f)
	}
	return out, nil
}
