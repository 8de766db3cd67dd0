// Package motion derives proximity, movement synchrony, interaction events
// and activity levels from two person tracks.
package motion

// Fixed thresholds, in normalized units unless noted.
const (
	MovementThreshold = 0.01 // below: static
	MoveThreshold     = 0.05 // above: move; between: gesture
	SyncWindow        = 2.0  // seconds between steps compared for synchrony
	SyncSimilarity    = 0.7  // |cosine| needed for a synchrony event
	ApproachDelta     = 0.02 // distance change that counts as approach/retreat
	ContactDistance   = 0.1  // distance below which a step is contact
	MatchTolerance    = 0.5  // seconds between frames paired across tracks
)

// Options overrides the thresholds. Zero fields take the constants above.
type Options struct {
	MovementThreshold float64 `json:"movement_threshold"`
	MoveThreshold     float64 `json:"move_threshold"`
	SyncWindow        float64 `json:"sync_window"`
	SyncSimilarity    float64 `json:"sync_similarity"`
	ApproachDelta     float64 `json:"approach_delta"`
	ContactDistance   float64 `json:"contact_distance"`
	MatchTolerance    float64 `json:"match_tolerance"`
}

// DefaultOptions returns the fixed thresholds.
func DefaultOptions() Options {
	return Options{
		MovementThreshold: MovementThreshold,
		MoveThreshold:     MoveThreshold,
		SyncWindow:        SyncWindow,
		SyncSimilarity:    SyncSimilarity,
		ApproachDelta:     ApproachDelta,
		ContactDistance:   ContactDistance,
		MatchTolerance:    MatchTolerance,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MovementThreshold <= 0 {
		o.MovementThreshold = d.MovementThreshold
	}
	if o.MoveThreshold <= 0 {
		o.MoveThreshold = d.MoveThreshold
	}
	if o.SyncWindow <= 0 {
		o.SyncWindow = d.SyncWindow
	}
	if o.SyncSimilarity <= 0 {
		o.SyncSimilarity = d.SyncSimilarity
	}
	if o.ApproachDelta <= 0 {
		o.ApproachDelta = d.ApproachDelta
	}
	if o.ContactDistance <= 0 {
		o.ContactDistance = d.ContactDistance
	}
	if o.MatchTolerance <= 0 {
		o.MatchTolerance = d.MatchTolerance
	}
	return o
}
