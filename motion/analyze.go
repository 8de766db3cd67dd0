package motion

import (
	"math"

	"github.com/maastricht-university/edmo-interaction/tracking"
)

// PersonActivity ties an activity summary to a track id.
type PersonActivity struct {
	ID       string   `json:"id"`
	Activity Activity `json:"activity"`
}

// Result is the proximity and synchrony summary of a session.
type Result struct {
	ProximityScore    float64                 `json:"proximity_score"`
	AverageDistance   float64                 `json:"average_distance"`
	ClosestApproach   float64                 `json:"closest_approach"`
	Timeline          []ProximityPoint        `json:"timeline"`
	SyncScore         float64                 `json:"sync_score"`
	SynchronyEvents   []SynchronyEvent        `json:"synchrony_events"`
	InteractionEvents []InteractionEvent      `json:"interaction_events"`
	EventCounts       map[InteractionType]int `json:"event_counts"`
	ActivityLevel     Level                   `json:"activity_level"`
	Participants      []PersonActivity        `json:"participants"`
}

// Default is the result for sessions without two usable tracks: zero
// proximity and synchrony, low activity, empty event lists.
func Default() Result {
	return Result{
		Timeline:          []ProximityPoint{},
		SynchronyEvents:   []SynchronyEvent{},
		InteractionEvents: []InteractionEvent{},
		EventCounts:       map[InteractionType]int{},
		ActivityLevel:     Low,
		Participants:      []PersonActivity{},
	}
}

// Analyze compares the first two usable tracks (ordered by id). Invalid
// frames are dropped first; with fewer than two usable tracks the Default
// result is returned, carrying the activity of any single usable track.
func Analyze(tracks []tracking.Track, opts Options) Result {
	opts = opts.withDefaults()
	usable := tracking.Usable(tracks)

	res := Default()
	for _, t := range usable {
		if len(res.Participants) == 2 {
			break
		}
		res.Participants = append(res.Participants, PersonActivity{ID: t.ID, Activity: ClassifyActivity(t, opts)})
	}
	if len(usable) < 2 {
		return res
	}
	a, b := usable[0], usable[1]

	res.Timeline = timeline(matchFrames(a.Frames, b.Frames, opts.MatchTolerance))
	if len(res.Timeline) > 0 {
		sum, closest := 0.0, math.Inf(1)
		for _, p := range res.Timeline {
			sum += p.Distance
			closest = math.Min(closest, p.Distance)
		}
		res.AverageDistance = sum / float64(len(res.Timeline))
		res.ProximityScore = clamp01(1 - res.AverageDistance)
		res.ClosestApproach = closest
	}
	res.InteractionEvents = interactionEvents(res.Timeline, opts)
	res.EventCounts = CountEvents(res.InteractionEvents)
	res.SynchronyEvents, res.SyncScore = Synchrony(Steps(a, opts), Steps(b, opts), opts)

	pa, pb := res.Participants[0].Activity, res.Participants[1].Activity
	res.ActivityLevel = classifyLevel(
		(pa.MovementSpeed+pb.MovementSpeed)/2,
		(pa.StaticRatio+pb.StaticRatio)/2,
	)
	return res
}

// CountEvents tallies interaction events by type.
func CountEvents(events []InteractionEvent) map[InteractionType]int {
	out := make(map[InteractionType]int, 4)
	for _, e := range events {
		out[e.Type]++
	}
	return out
}
