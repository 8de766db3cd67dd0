package motion

import "github.com/maastricht-university/edmo-interaction/tracking"

// MovementKind buckets a step by displacement magnitude.
type MovementKind string

const (
	Static  MovementKind = "static"
	Gesture MovementKind = "gesture"
	Move    MovementKind = "move"
)

// Step is the displacement of a box center between consecutive frames,
// stamped with the later frame's time.
type Step struct {
	Time      float64        `json:"time"`
	Vector    tracking.Point `json:"vector"`
	Magnitude float64        `json:"magnitude"`
	Kind      MovementKind   `json:"kind"`
}

// Steps computes the movement vectors of a time-ordered track.
func Steps(t tracking.Track, opts Options) []Step {
	opts = opts.withDefaults()
	if len(t.Frames) < 2 {
		return nil
	}
	out := make([]Step, 0, len(t.Frames)-1)
	prev := t.Frames[0].Box.Center()
	for _, f := range t.Frames[1:] {
		c := f.Box.Center()
		v := c.Sub(prev)
		mag := v.Norm()
		out = append(out, Step{Time: f.Time, Vector: v, Magnitude: mag, Kind: kindOf(mag, opts)})
		prev = c
	}
	return out
}

func kindOf(mag float64, opts Options) MovementKind {
	switch {
	case mag < opts.MovementThreshold:
		return Static
	case mag > opts.MoveThreshold:
		return Move
	default:
		return Gesture
	}
}
