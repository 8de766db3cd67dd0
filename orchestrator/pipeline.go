// Package orchestrator loads session inputs, runs the analysis and stores,
// publishes and visualizes the resulting report.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/edmo-interaction/analysis"
	"github.com/maastricht-university/edmo-interaction/clients"
	cfg "github.com/maastricht-university/edmo-interaction/config"
	"github.com/maastricht-university/edmo-interaction/metrics"
	"github.com/maastricht-university/edmo-interaction/scoring"
	"github.com/maastricht-university/edmo-interaction/speech"
	"github.com/maastricht-university/edmo-interaction/tracking"
)

// Profile sources recorded in Bundle.ProfileSource.
const (
	profilesFromFile    = "file"
	profilesFromEmotion = "emotion"
	profilesNone        = "none"
)

type Pipeline struct {
	cfg       *cfg.Root
	http      *clients.HTTP
	log       *logrus.Logger
	metrics   *metrics.Recorder
	publisher Publisher
	opts      analysis.Options
	now       func() time.Time
}

type Option func(*Pipeline)

// WithMetrics records run metrics on r.
func WithMetrics(r *metrics.Recorder) Option { return func(p *Pipeline) { p.metrics = r } }

// WithPublisher ships every persisted bundle through pub.
func WithPublisher(pub Publisher) Option { return func(p *Pipeline) { p.publisher = pub } }

// NewPipeline prepares the analysis options from c. It fails only when the
// configured lexicon cannot be loaded. A nil logger means the logrus
// standard logger.
func NewPipeline(c *cfg.Root, logger *logrus.Logger, opts ...Option) (*Pipeline, error) {
	aopts, err := analysisOptions(c.Analysis)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	p := &Pipeline{
		cfg:  c,
		http: clients.NewHTTP(cfg.DurSeconds(c.Services.Timeout)),
		log:  logger,
		opts: aopts,
		now:  time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Run analyzes one session and writes its report. Input contract violations
// (unreadable files, malformed timestamps) fail the run; optional services
// that are down only produce warnings.
func (p *Pipeline) Run(ctx context.Context, s Session) (res *Result, err error) {
	log := p.log.WithField("session", s.Label)
	defer func() {
		if err != nil {
			p.metrics.RecordSession("error")
			log.WithError(err).Error("session failed")
		} else {
			p.metrics.RecordSession("ok")
		}
	}()

	done := p.metrics.ObserveStage("load")
	words, err := p.loadSpeech(ctx, s)
	if err != nil {
		done()
		return nil, err
	}
	var tracks []tracking.Track
	if s.TracksPath != "" {
		if tracks, err = openWith(s.TracksPath, tracking.Decode); err != nil {
			done()
			return nil, fmt.Errorf("tracks %s: %w", s.TracksPath, err)
		}
	}
	profiles, source, err := p.loadProfiles(ctx, s, words, log)
	done()
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"words":    len(words),
		"tracks":   len(tracks),
		"profiles": source,
	}).Debug("inputs loaded")

	done = p.metrics.ObserveStage("analyze")
	report := analysis.Analyze(analysis.Input{Words: words, Tracks: tracks, Profiles: profiles}, p.opts)
	done()
	p.metrics.ObserveScores(report.Overall, report.Interaction, report.Quality.Score)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := p.now()
	sid, dir, err := mkSessionDir(p.cfg.Paths.Outputs, now)
	if err != nil {
		return nil, err
	}
	log = log.WithField("session_id", sid)
	b := &Bundle{
		SessionID:     sid,
		GeneratedAt:   now.UTC(),
		Inputs:        s,
		ProfileSource: source,
		Report:        report,
	}
	b.Charts = p.visualize(ctx, b, dir, log)

	done = p.metrics.ObserveStage("persist")
	res, err = persist(dir, b, p.cfg.Output.YAML)
	done()
	if err != nil {
		return nil, err
	}

	if p.publisher != nil {
		if perr := p.publisher.Publish(ctx, b); perr != nil {
			p.metrics.RecordPublish("error")
			log.WithError(perr).Warn("report not published")
		} else {
			p.metrics.RecordPublish("ok")
		}
	}

	log.WithFields(logrus.Fields{
		"turns":       len(report.Turns),
		"overall":     report.Overall,
		"interaction": report.Interaction,
		"quality":     report.Quality.Level,
		"report":      res.ReportPath,
	}).Info("session analyzed")
	return res, nil
}

func (p *Pipeline) loadSpeech(ctx context.Context, s Session) ([]speech.Word, error) {
	switch {
	case s.SpeechPath != "":
		frags, err := openWith(s.SpeechPath, func(f io.Reader) ([]speech.Fragment, error) {
			return decodeSpeech(s.SpeechFormat, f)
		})
		if err != nil {
			return nil, fmt.Errorf("speech %s: %w", s.SpeechPath, err)
		}
		return speech.Flatten(frags), nil
	case s.AudioPath != "" && p.cfg.Services.ASR.URL != "":
		frags, err := p.http.ASR(ctx, p.cfg.Services.ASR.URL, s.AudioPath)
		if err != nil {
			return nil, err
		}
		return speech.Flatten(frags), nil
	default:
		return nil, nil
	}
}

func (p *Pipeline) loadProfiles(ctx context.Context, s Session, words []speech.Word, log *logrus.Entry) (map[int]scoring.Profile, string, error) {
	if s.ProfilesPath != "" {
		prof, err := openWith(s.ProfilesPath, scoring.LoadProfiles)
		if err != nil {
			return nil, "", fmt.Errorf("profiles %s: %w", s.ProfilesPath, err)
		}
		return prof, profilesFromFile, nil
	}
	if p.cfg.Services.Emotion.URL == "" || len(words) == 0 {
		return nil, profilesNone, nil
	}

	texts := speakerTexts(words)
	out := make(map[int]scoring.Profile, len(texts))
	for _, spk := range sortedKeys(texts) {
		resps := make([]*clients.EmoResp, 0, len(texts[spk]))
		for _, t := range texts[spk] {
			emo, err := p.http.Emotion(ctx, p.cfg.Services.Emotion.URL, t)
			if err != nil {
				if ctx.Err() != nil {
					return nil, "", ctx.Err()
				}
				log.WithError(err).Warn("emotion service unavailable, scoring without profiles")
				return nil, profilesNone, nil
			}
			resps = append(resps, emo)
		}
		out[spk] = profileFromEmotions(meanEmotions(resps))
	}
	return out, profilesFromEmotion, nil
}

// visualize requests the timeline and radar charts. Failures are logged and
// skipped.
func (p *Pipeline) visualize(ctx context.Context, b *Bundle, dir string, log *logrus.Entry) []string {
	url := p.cfg.Services.Visualization.URL
	if url == "" {
		return nil
	}
	done := p.metrics.ObserveStage("visualize")
	defer done()

	outDir, _ := filepath.Abs(dir)
	var charts []string
	if len(b.Report.Motion.Timeline) > 0 {
		tl, err := p.http.GenerateTimeline(ctx, url, timelineRequest(b.Report, outDir))
		if err != nil {
			log.WithError(err).Warn("timeline chart failed")
		} else {
			charts = append(charts, tl.Path)
		}
	}
	label := b.Inputs.Label
	if label == "" {
		label = b.SessionID
	}
	rd, err := p.http.GenerateRadar(ctx, url, radarRequest(b.Report, label, outDir))
	if err != nil {
		log.WithError(err).Warn("radar chart failed")
	} else {
		charts = append(charts, rd.Path)
	}
	return charts
}
