package tracking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/maastricht-university/edmo-interaction/timeutil"
)

var missingBox = Box{Left: math.NaN(), Top: math.NaN(), Right: math.NaN(), Bottom: math.NaN()}

type wireFrame struct {
	Time       *timeutil.Timestamp `json:"time"`
	Box        *Box                `json:"box"`
	Confidence float64             `json:"confidence"`
}

type wireTrack struct {
	ID     string      `json:"id"`
	Frames []wireFrame `json:"frames"`
}

type wireEnvelope struct {
	Tracks []wireTrack `json:"tracks"`
}

// Decode reads {"tracks":[{"id":…,"frames":[{"time":…,"box":{…}}]}]}.
// Frame times accept every shape timeutil.Parse does; a frame without a time
// fails the decode. A frame without a box is kept with an invalid box so it
// is dropped by Clean and still counted against data quality.
func Decode(r io.Reader) ([]Track, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("tracking read: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var env wireEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("tracking decode: %w", err)
	}

	out := make([]Track, 0, len(env.Tracks))
	for i, wt := range env.Tracks {
		t := Track{ID: wt.ID, Frames: make([]Frame, 0, len(wt.Frames))}
		if t.ID == "" {
			t.ID = fmt.Sprintf("person_%d", i)
		}
		for j, wf := range wt.Frames {
			if wf.Time == nil {
				return nil, fmt.Errorf("tracking decode: track %s frame %d: %w",
					t.ID, j, &timeutil.ParseError{Value: nil, Reason: "missing time"})
			}
			box := missingBox
			if wf.Box != nil {
				box = *wf.Box
			}
			t.Frames = append(t.Frames, Frame{Time: wf.Time.Seconds(), Box: box, Confidence: wf.Confidence})
		}
		out = append(out, t)
	}
	return out, nil
}
