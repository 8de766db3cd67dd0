package motion

import (
	"math"
	"sort"

	"github.com/maastricht-university/edmo-interaction/tracking"
)

// SynchronyType distinguishes aligned from opposed movement.
type SynchronyType string

const (
	Synchronized SynchronyType = "synchronized"
	Mirrored     SynchronyType = "mirrored"
)

// SynchronyEvent marks a pair of steps moving together or in mirror image.
// Time is the midpoint of the two step times.
type SynchronyEvent struct {
	Time       float64       `json:"time"`
	Type       SynchronyType `json:"type"`
	Similarity float64       `json:"similarity"`
}

// Synchrony compares every pair of steps within the sync window. Steps below
// the movement threshold are ignored. The result does not depend on which
// track is passed first, except for the order of equal-time events.
func Synchrony(a, b []Step, opts Options) (events []SynchronyEvent, score float64) {
	opts = opts.withDefaults()
	events = []SynchronyEvent{}

	// Window membership compares |ta-tb|, which rounds the same in both
	// argument orders; lo and the loop bound only limit the scan.
	lo := 0
	for _, sa := range a {
		for lo < len(b) && sa.Time-b[lo].Time > opts.SyncWindow {
			lo++
		}
		if sa.Magnitude < opts.MovementThreshold {
			continue
		}
		for k := lo; k < len(b) && b[k].Time-sa.Time <= opts.SyncWindow; k++ {
			sb := b[k]
			if sb.Magnitude < opts.MovementThreshold || math.Abs(sa.Time-sb.Time) > opts.SyncWindow {
				continue
			}
			sim := cosine(sa.Vector, sa.Magnitude, sb.Vector, sb.Magnitude)
			var typ SynchronyType
			switch {
			case sim > opts.SyncSimilarity:
				typ = Synchronized
			case sim < -opts.SyncSimilarity:
				typ = Mirrored
			default:
				continue
			}
			events = append(events, SynchronyEvent{Time: (sa.Time + sb.Time) / 2, Type: typ, Similarity: sim})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Time != events[j].Time {
			return events[i].Time < events[j].Time
		}
		return events[i].Type < events[j].Type
	})

	denom := max(len(a), len(b), 1)
	return events, clamp01(float64(len(events)) / float64(denom))
}

func cosine(u tracking.Point, un float64, v tracking.Point, vn float64) float64 {
	if un == 0 || vn == 0 {
		return 0
	}
	return (u.X*v.X + u.Y*v.Y) / (un * vn)
}
