package motion

import (
	"math"

	"github.com/maastricht-university/edmo-interaction/tracking"
)

// ProximityPoint is the normalized distance between two people at a time.
type ProximityPoint struct {
	Time     float64 `json:"time"`
	Distance float64 `json:"distance"`
}

// InteractionType labels a step of the proximity timeline.
type InteractionType string

const (
	Approach         InteractionType = "approach"
	Retreat          InteractionType = "retreat"
	ParallelMovement InteractionType = "parallel_movement"
	Contact          InteractionType = "contact"
)

// InteractionEvent classifies the change in distance between two matched
// frame pairs.
type InteractionEvent struct {
	Time      float64         `json:"time"`
	Type      InteractionType `json:"type"`
	Duration  float64         `json:"duration"`
	Intensity float64         `json:"intensity"`
}

type framePair struct {
	a, b tracking.Frame
}

func (p framePair) time() float64 { return (p.a.Time + p.b.Time) / 2 }

// matchFrames pairs frames by index when the tracks are aligned, otherwise by
// nearest timestamp within tolerance. Pairs keep time order and each frame
// is used at most once.
func matchFrames(a, b []tracking.Frame, tol float64) []framePair {
	if aligned(a, b, tol) {
		out := make([]framePair, len(a))
		for i := range a {
			out[i] = framePair{a: a[i], b: b[i]}
		}
		return out
	}

	out := make([]framePair, 0, min(len(a), len(b)))
	next := 0
	for _, fa := range a {
		for next < len(b) && b[next].Time < fa.Time-tol {
			next++
		}
		best, bestDiff := -1, math.Inf(1)
		for k := next; k < len(b) && b[k].Time <= fa.Time+tol; k++ {
			if d := math.Abs(b[k].Time - fa.Time); d < bestDiff {
				best, bestDiff = k, d
			}
		}
		if best >= 0 {
			out = append(out, framePair{a: fa, b: b[best]})
			next = best + 1
		}
	}
	return out
}

func aligned(a, b []tracking.Frame, tol float64) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	for i := range a {
		if math.Abs(a[i].Time-b[i].Time) > tol {
			return false
		}
	}
	return true
}

// Distance is the Euclidean distance between box centers divided by the
// unit-square diagonal, clamped to [0,1].
func Distance(a, b tracking.Box) float64 {
	d := a.Center().Sub(b.Center()).Norm() / math.Sqrt2
	return clamp01(d)
}

func timeline(pairs []framePair) []ProximityPoint {
	out := make([]ProximityPoint, len(pairs))
	for i, p := range pairs {
		out[i] = ProximityPoint{Time: p.time(), Distance: Distance(p.a.Box, p.b.Box)}
	}
	return out
}

// interactionEvents walks the timeline step by step. Contact overrides the
// direction of the change. The first point has no change to classify and
// only yields an event, of zero duration, when it is already a contact.
func interactionEvents(points []ProximityPoint, opts Options) []InteractionEvent {
	out := make([]InteractionEvent, 0, len(points))
	if len(points) == 0 {
		return out
	}
	if first := points[0]; first.Distance < opts.ContactDistance {
		out = append(out, InteractionEvent{
			Time:      first.Time,
			Type:      Contact,
			Intensity: 1 - first.Distance/opts.ContactDistance,
		})
	}
	for i := 1; i < len(points); i++ {
		cur, prev := points[i], points[i-1]
		delta := cur.Distance - prev.Distance
		ev := InteractionEvent{Time: cur.Time, Duration: cur.Time - prev.Time, Intensity: math.Abs(delta)}
		switch {
		case cur.Distance < opts.ContactDistance:
			ev.Type = Contact
			ev.Intensity = 1 - cur.Distance/opts.ContactDistance
		case delta < -opts.ApproachDelta:
			ev.Type = Approach
		case delta > opts.ApproachDelta:
			ev.Type = Retreat
		default:
			ev.Type = ParallelMovement
		}
		out = append(out, ev)
	}
	return out
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
