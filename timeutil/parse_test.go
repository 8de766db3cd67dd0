package timeutil

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/durationpb"
)

func TestParseAcceptedShapes(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want float64
	}{
		{"suffixed seconds", "1.500s", 1.5},
		{"suffixed millis", "250ms", 0.25},
		{"padded", "  3s ", 3},
		{"pair map", map[string]any{"seconds": float64(2), "nanos": float64(500000000)}, 2.5},
		{"seconds only", map[string]any{"seconds": "7"}, 7},
		{"nanos only", map[string]any{"nanos": float64(100000000)}, 0.1},
		{"struct pair", Duration{Seconds: 4, Nanos: 250000000}, 4.25},
		{"durationpb", durationpb.New(1500 * 1e6), 1.5},
		{"float", 0.75, 0.75},
		{"int", 9, 9},
		{"json number", json.Number("1.25"), 1.25},
		{"raw string", json.RawMessage(`"0.5s"`), 0.5},
		{"raw pair", json.RawMessage(`{"seconds":"12","nanos":300000000}`), 12.3},
		{"raw number", json.RawMessage(`3.5`), 3.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestParseRejectsMalformedShapes(t *testing.T) {
	cases := []struct {
		name string
		in   any
	}{
		{"bare numeric string", "1.5"},
		{"empty string", ""},
		{"garbage", "soon"},
		{"bool", true},
		{"nil", nil},
		{"empty object", map[string]any{"millis": 3}},
		{"fractional seconds", map[string]any{"seconds": 1.5}},
		{"nanos overflow", map[string]any{"nanos": float64(2e9)}},
		{"mixed sign", Duration{Seconds: 1, Nanos: -5}},
		{"raw array", json.RawMessage(`[1,2]`)},
		{"raw invalid", json.RawMessage(`{`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnrecognized))
			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
}

func TestTimestampUnmarshal(t *testing.T) {
	var v struct {
		Start Timestamp `json:"startTime"`
		End   Timestamp `json:"endTime"`
	}
	err := json.Unmarshal([]byte(`{"startTime":"1.2s","endTime":{"seconds":2,"nanos":100000000}}`), &v)
	require.NoError(t, err)
	assert.InDelta(t, 1.2, v.Start.Seconds(), 1e-9)
	assert.InDelta(t, 2.1, v.End.Seconds(), 1e-9)

	err = json.Unmarshal([]byte(`{"startTime":"later"}`), &v)
	assert.ErrorIs(t, err, ErrUnrecognized)
}

