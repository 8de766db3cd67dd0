package motion

import (
	"fmt"
	"math"

	"github.com/maastricht-university/edmo-interaction/tracking"
)

// Level is an ordinal activity level.
type Level int

const (
	Low Level = iota
	Medium
	High
)

var levelNames = [...]string{"low", "medium", "high"}

func (l Level) String() string {
	if l < Low || l > High {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Level) UnmarshalText(b []byte) error {
	for i, n := range levelNames {
		if n == string(b) {
			*l = Level(i)
			return nil
		}
	}
	return fmt.Errorf("unknown activity level %q", b)
}

// Activity describes how much one person moves.
type Activity struct {
	Level         Level   `json:"activity_level"`
	MovementSpeed float64 `json:"movement_speed"`
	ActivityArea  float64 `json:"activity_area"`
	StaticRatio   float64 `json:"static_ratio"`
}

// ClassifyActivity computes speed (mean step magnitude), the bounding area of
// visited centers and the share of static steps. Fewer than two frames is
// low activity with zero metrics.
func ClassifyActivity(t tracking.Track, opts Options) Activity {
	opts = opts.withDefaults()
	steps := Steps(t, opts)
	if len(steps) == 0 {
		return Activity{Level: Low}
	}

	var speed float64
	static := 0
	for _, s := range steps {
		speed += s.Magnitude
		if s.Kind == Static {
			static++
		}
	}
	speed /= float64(len(steps))
	staticRatio := float64(static) / float64(len(steps))

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, f := range t.Frames {
		c := f.Box.Center()
		minX, maxX = math.Min(minX, c.X), math.Max(maxX, c.X)
		minY, maxY = math.Min(minY, c.Y), math.Max(maxY, c.Y)
	}

	return Activity{
		Level:         classifyLevel(speed, staticRatio),
		MovementSpeed: speed,
		ActivityArea:  (maxX - minX) * (maxY - minY),
		StaticRatio:   staticRatio,
	}
}

func classifyLevel(speed, staticRatio float64) Level {
	switch {
	case speed < 0.02 && staticRatio > 0.7:
		return Low
	case speed > 0.08 || staticRatio < 0.3:
		return High
	default:
		return Medium
	}
}
