// Package timeutil normalizes the timestamp shapes found in transcription
// and tracking payloads into float64 seconds.
package timeutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/durationpb"
)

// ErrUnrecognized is matched by every *ParseError.
var ErrUnrecognized = errors.New("unrecognized timestamp")

// ParseError reports a timestamp value that is neither a suffixed string nor
// a seconds/nanos pair.
type ParseError struct {
	Value  any
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse time %v: %s", e.Value, e.Reason)
}

func (e *ParseError) Is(target error) bool { return target == ErrUnrecognized }

const maxNanos = 999_999_999

// Parse converts v to seconds. Accepted shapes:
//
//	"1.5s", "250ms"                 string with a unit suffix
//	{"seconds": 1, "nanos": 5e8}    map or Duration
//	*durationpb.Duration
//	float64, int, json.Number       already in seconds
//	json.RawMessage                 any of the JSON forms above
func Parse(v any) (float64, error) {
	switch t := v.(type) {
	case string:
		return parseString(t)
	case float64:
		return checkFinite(t, v)
	case float32:
		return checkFinite(float64(t), v)
	case int:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, &ParseError{Value: v, Reason: "invalid number"}
		}
		return checkFinite(f, v)
	case Duration:
		return t.pair()
	case *Duration:
		if t == nil {
			return 0, &ParseError{Value: v, Reason: "nil duration"}
		}
		return t.pair()
	case *durationpb.Duration:
		if t == nil {
			return 0, &ParseError{Value: v, Reason: "nil duration"}
		}
		return Duration{Seconds: t.GetSeconds(), Nanos: t.GetNanos()}.pair()
	case map[string]any:
		return parseMap(t)
	case json.RawMessage:
		return parseRaw(t)
	case []byte:
		return parseRaw(t)
	case nil:
		return 0, &ParseError{Value: v, Reason: "missing value"}
	default:
		return 0, &ParseError{Value: v, Reason: fmt.Sprintf("unsupported type %T", v)}
	}
}

func parseString(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, &ParseError{Value: s, Reason: "empty string"}
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, &ParseError{Value: s, Reason: "expected a number with a unit suffix"}
	}
	return d.Seconds(), nil
}

func parseMap(m map[string]any) (float64, error) {
	var d Duration
	known := 0
	for k, raw := range m {
		switch k {
		case "seconds":
			n, err := integer(raw)
			if err != nil {
				return 0, &ParseError{Value: m, Reason: "seconds: " + err.Error()}
			}
			d.Seconds = n
			known++
		case "nanos":
			n, err := integer(raw)
			if err != nil {
				return 0, &ParseError{Value: m, Reason: "nanos: " + err.Error()}
			}
			if n > maxNanos || n < -maxNanos {
				return 0, &ParseError{Value: m, Reason: "nanos out of range"}
			}
			d.Nanos = int32(n)
			known++
		}
	}
	if known == 0 {
		return 0, &ParseError{Value: m, Reason: "object has neither seconds nor nanos"}
	}
	return d.pair()
}

// integer accepts the JSON encodings protobuf uses for int64 ("12") as well
// as plain numbers.
func integer(v any) (int64, error) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return 0, errors.New("not an integer")
		}
		return int64(t), nil
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case json.Number:
		return t.Int64()
	case string:
		return json.Number(strings.TrimSpace(t)).Int64()
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func parseRaw(b []byte) (float64, error) {
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, &ParseError{Value: string(b), Reason: "invalid JSON"}
	}
	return Parse(v)
}

func checkFinite(f float64, orig any) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ParseError{Value: orig, Reason: "not finite"}
	}
	return f, nil
}

// Duration is the {seconds, nanos} pair.
type Duration struct {
	Seconds int64 `json:"seconds"`
	Nanos   int32 `json:"nanos"`
}

func (d Duration) pair() (float64, error) {
	if d.Nanos > maxNanos || d.Nanos < -maxNanos {
		return 0, &ParseError{Value: d, Reason: "nanos out of range"}
	}
	if d.Seconds != 0 && d.Nanos != 0 && (d.Seconds < 0) != (d.Nanos < 0) {
		return 0, &ParseError{Value: d, Reason: "seconds and nanos differ in sign"}
	}
	return float64(d.Seconds) + float64(d.Nanos)/1e9, nil
}

// Timestamp is a decoded time value in seconds. It unmarshals from every
// shape Parse accepts, so decoded structs are normalized at the boundary.
type Timestamp float64

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s, err := Parse(json.RawMessage(b))
	if err != nil {
		return err
	}
	*t = Timestamp(s)
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(t))
}

// Seconds returns the timestamp value.
func (t Timestamp) Seconds() float64 { return float64(t) }
