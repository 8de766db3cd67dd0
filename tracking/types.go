// Package tracking holds per-person bounding-box tracks from the video
// perception provider. Coordinates are normalized to [0,1].
package tracking

import (
	"math"
	"sort"
)

// edgeTolerance allows for detector boxes that spill slightly past the frame.
const edgeTolerance = 0.05

// Box is an axis-aligned bounding box in normalized coordinates.
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Point is a normalized 2D position or displacement.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p − q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Norm returns the Euclidean length of p.
func (p Point) Norm() float64 { return math.Hypot(p.X, p.Y) }

// Center of the box.
func (b Box) Center() Point {
	return Point{X: (b.Left + b.Right) / 2, Y: (b.Top + b.Bottom) / 2}
}

// Area of the box; zero for inverted boxes.
func (b Box) Area() float64 {
	w, h := b.Right-b.Left, b.Bottom-b.Top
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Valid reports whether the box is finite, non-inverted and inside the unit
// square give or take edgeTolerance.
func (b Box) Valid() bool {
	for _, v := range [...]float64{b.Left, b.Top, b.Right, b.Bottom} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < -edgeTolerance || v > 1+edgeTolerance {
			return false
		}
	}
	return b.Right >= b.Left && b.Bottom >= b.Top
}

// Frame is one detection of a person at a point in time.
type Frame struct {
	Time       float64 `json:"time"`
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"`
}

// Track is the time-ordered detections of one person.
type Track struct {
	ID     string  `json:"id"`
	Frames []Frame `json:"frames"`
}

// Clean returns a copy of the track with invalid frames dropped, sorted by
// time. Frames sharing a timestamp keep the first occurrence.
func (t Track) Clean() Track {
	frames := make([]Frame, 0, len(t.Frames))
	for _, f := range t.Frames {
		if f.Box.Valid() && !math.IsNaN(f.Time) && !math.IsInf(f.Time, 0) {
			frames = append(frames, f)
		}
	}
	sort.SliceStable(frames, func(i, j int) bool { return frames[i].Time < frames[j].Time })
	out := frames[:0]
	for i, f := range frames {
		if i > 0 && f.Time == out[len(out)-1].Time {
			continue
		}
		out = append(out, f)
	}
	return Track{ID: t.ID, Frames: out}
}

// Usable returns the cleaned tracks that have at least two frames, ordered
// by id so participant roles are stable.
func Usable(tracks []Track) []Track {
	out := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if c := t.Clean(); len(c.Frames) >= 2 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Counts summarizes input completeness for data-quality scoring.
type Counts struct {
	Tracks      int `json:"tracks"`
	Frames      int `json:"frames"`
	ValidFrames int `json:"valid_frames"`
}

// Count tallies tracks with any frames and how many frames pass validation.
func Count(tracks []Track) Counts {
	var c Counts
	for _, t := range tracks {
		if len(t.Frames) == 0 {
			continue
		}
		c.Tracks++
		c.Frames += len(t.Frames)
		c.ValidFrames += len(t.Clean().Frames)
	}
	return c
}
