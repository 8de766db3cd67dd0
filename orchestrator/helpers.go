package orchestrator

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/aws/aws-sdk-go-v2/service/transcribestreaming/types"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/maastricht-university/edmo-interaction/analysis"
	"github.com/maastricht-university/edmo-interaction/clients"
	cfg "github.com/maastricht-university/edmo-interaction/config"
	"github.com/maastricht-university/edmo-interaction/language"
	"github.com/maastricht-university/edmo-interaction/motion"
	"github.com/maastricht-university/edmo-interaction/scoring"
	"github.com/maastricht-university/edmo-interaction/speech"
	"github.com/maastricht-university/edmo-interaction/turns"
)

// analysisOptions maps the analysis config section onto stage options and
// loads the lexicon file when one is configured.
func analysisOptions(a cfg.Analysis) (analysis.Options, error) {
	opts := analysis.Options{
		Turns:    turns.Options{MaxPause: a.MaxPause},
		Motion:   motion.Options{MatchTolerance: a.MatchTolerance, SyncWindow: a.SyncWindow},
		Language: language.Options{MinKeywordFrequency: a.MinKeywordFrequency},
		Scoring:  scoring.Options{ResponseWindow: a.ResponseWindow},
	}
	if a.Lexicon != "" {
		f, err := os.Open(a.Lexicon)
		if err != nil {
			return opts, fmt.Errorf("lexicon: %w", err)
		}
		defer f.Close()
		lex, err := language.LoadLexicon(f)
		if err != nil {
			return opts, err
		}
		opts.Language.Lexicon = &lex
	}
	return opts, nil
}

func openWith[T any](path string, decode func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()
	return decode(f)
}

// decodeSpeech reads a transcript in one of the supported provider formats.
func decodeSpeech(format string, r io.Reader) ([]speech.Fragment, error) {
	switch format {
	case "", FormatEDMO:
		return speech.Decode(r)
	case FormatGoogle:
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		var resp speechpb.RecognizeResponse
		if err := (protojson.UnmarshalOptions{DiscardUnknown: true}).Unmarshal(raw, &resp); err != nil {
			return nil, fmt.Errorf("google speech decode: %w", err)
		}
		return speech.FromGoogle(resp.GetResults())
	case FormatTranscribe:
		var results []types.Result
		if err := json.NewDecoder(r).Decode(&results); err != nil {
			return nil, fmt.Errorf("transcribe decode: %w", err)
		}
		return speech.FromTranscribe(results), nil
	default:
		return nil, fmt.Errorf("unknown speech format %q", format)
	}
}

// speakerTexts joins each speaker's turns into utterances for the emotion
// service, in time order.
func speakerTexts(words []speech.Word) map[int][]string {
	out := map[int][]string{}
	for _, t := range turns.Segment(words, turns.Options{}) {
		out[t.SpeakerID] = append(out[t.SpeakerID], t.Text)
	}
	return out
}

// meanEmotions averages label scores over a speaker's utterances.
func meanEmotions(resps []*clients.EmoResp) map[string]float64 {
	out := map[string]float64{}
	if len(resps) == 0 {
		return out
	}
	for _, r := range resps {
		for _, e := range r.Emotions {
			out[e.Label] += e.Score
		}
	}
	for k := range out {
		out[k] /= float64(len(resps))
	}
	return out
}

// profileFromEmotions turns averaged emotion scores into profile
// indicators: engagement is the non-neutral share, stability the absence of
// negative affect and supportiveness the positive affect.
func profileFromEmotions(e map[string]float64) scoring.Profile {
	clamp := func(v float64) float64 {
		switch {
		case v < 0:
			return 0
		case v > 1:
			return 1
		}
		return v
	}
	return scoring.NewProfile(
		clamp(1-e["neutral"]),
		clamp(1-(e["anger"]+e["fear"]+e["sadness"])),
		clamp(e["joy"]+0.5*e["surprise"]),
	)
}

// timelineRequest plots the proximity timeline with interaction markers.
func timelineRequest(r analysis.Report, outDir string) clients.TimelineReq {
	req := clients.TimelineReq{
		Timestamps: make([]float64, 0, len(r.Motion.Timeline)),
		Distances:  make([]float64, 0, len(r.Motion.Timeline)),
		OutputDir:  outDir,
	}
	for _, p := range r.Motion.Timeline {
		req.Timestamps = append(req.Timestamps, p.Time)
		req.Distances = append(req.Distances, p.Distance)
	}
	for _, e := range r.Motion.InteractionEvents {
		req.EventTimes = append(req.EventTimes, e.Time)
		req.EventLabels = append(req.EventLabels, string(e.Type))
	}
	return req
}

var radarKeys = []string{
	scoring.KeyBalance,
	scoring.KeyCompletion,
	scoring.KeyTiming,
	scoring.KeyVocabulary,
	scoring.KeyProximity,
	scoring.KeyMovementSynchrony,
	scoring.KeyActivityMatch,
}

// radarRequest plots the per-modality sub-scores.
func radarRequest(r analysis.Report, label, outDir string) clients.RadarReq {
	req := clients.RadarReq{Label: label, OutputDir: outDir}
	for _, k := range radarKeys {
		req.Categories = append(req.Categories, k)
		req.Values = append(req.Values, r.PerModality[k])
	}
	return req
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
