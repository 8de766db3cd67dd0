package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Manifest lists the sessions of a batch run.
type Manifest struct {
	Sessions []Session `yaml:"sessions"`
}

// LoadManifest reads a YAML batch manifest. Relative paths are kept as
// written; they resolve against the working directory.
func LoadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var m Manifest
	if err := yaml.NewDecoder(f).Decode(&m); err != nil && err != io.EOF {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &m, nil
}

// BatchError collects the sessions that failed.
type BatchError struct {
	Failed map[int]error
	Total  int
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%d of %d sessions failed", len(e.Failed), e.Total)
}

// Batch runs sessions with at most workers in flight. Sessions are
// independent: one failure does not stop the others. Results keep the input
// order; failed sessions leave a nil entry and are reported in a
// *BatchError. Cancelling ctx stops sessions that have not started.
func (p *Pipeline) Batch(ctx context.Context, sessions []Session, workers int) ([]*Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]*Result, len(sessions))
	errs := make([]error, len(sessions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range sessions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = p.Run(gctx, s)
			return nil
		})
	}
	_ = g.Wait()

	be := &BatchError{Failed: map[int]error{}, Total: len(sessions)}
	for i, err := range errs {
		if err != nil {
			be.Failed[i] = err
		}
	}
	if len(be.Failed) > 0 {
		return results, be
	}
	return results, nil
}
