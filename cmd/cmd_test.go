package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/edmo-interaction/orchestrator"
)

const speechJSON = `[{"alternatives":[{"words":[
	{"word":"hello","startTime":"0s","endTime":"0.5s","speakerTag":1,"confidence":0.9},
	{"word":"hi","startTime":"1s","endTime":"1.4s","speakerTag":2,"confidence":0.9}]}]}]`

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func configFile(t *testing.T) (string, string) {
	dir := t.TempDir()
	outputs := filepath.Join(dir, "outputs")
	conf := write(t, dir, "config.yaml", "pipeline:\n  log_level: warn\npaths:\n  outputs: "+outputs+"\nbatch:\n  workers: 2\n")
	return conf, outputs
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "edmo "+Version))
}

func TestAnalyze(t *testing.T) {
	conf, outputs := configFile(t)
	speech := write(t, t.TempDir(), "speech.json", speechJSON)

	out, err := run(t, "--config", conf, "analyze", "--speech", speech, "--label", "pair-1")
	require.NoError(t, err)
	path := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(path, outputs))
	assert.FileExists(t, path)
}

func TestAnalyzeNeedsInput(t *testing.T) {
	conf, _ := configFile(t)
	_, err := run(t, "--config", conf, "analyze")
	assert.ErrorContains(t, err, "nothing to analyze")
}

func TestAnalyzeMissingConfig(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "analyze", "--tracks", "x.json")
	assert.Error(t, err)
}

func TestBatch(t *testing.T) {
	conf, _ := configFile(t)
	dir := t.TempDir()
	speech := write(t, dir, "speech.json", speechJSON)
	manifest := write(t, dir, "batch.yaml", "sessions:\n  - label: ok\n    speech: "+speech+
		"\n  - label: missing\n    speech: "+filepath.Join(dir, "missing.json")+"\n")

	out, err := run(t, "--config", conf, "batch", manifest)
	var be *orchestrator.BatchError
	require.ErrorAs(t, err, &be)
	assert.Len(t, be.Failed, 1)
	assert.Contains(t, be.Failed, 1)
	assert.Len(t, strings.Fields(out), 1)
}

func TestBatchEmptyManifest(t *testing.T) {
	conf, _ := configFile(t)
	manifest := write(t, t.TempDir(), "batch.yaml", "sessions: []\n")
	_, err := run(t, "--config", conf, "batch", manifest)
	assert.ErrorContains(t, err, "no sessions")
}
