package orchestrator

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// mkSessionDir creates <outputsRoot>/session_<timestamp>_<id8>. The uuid
// suffix keeps concurrent sessions started in the same second apart.
func mkSessionDir(outputsRoot string, now time.Time) (string, string, error) {
	sid := "session_" + now.Format("20060102-150405") + "_" + uuid.NewString()[:8]
	dir := filepath.Join(outputsRoot, sid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create session dir: %w", err)
	}
	return sid, dir, nil
}

// writeAtomic streams encode into a temp file next to path and renames it
// into place, so readers never see a partial report.
func writeAtomic(path string, encode func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", filepath.Base(path), err)
	}
	tmpName := tmp.Name()
	if err := encode(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	return writeAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// writeYAML goes through JSON first so the YAML keys match the JSON field
// names.
func writeYAML(path string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	clearStyle(&doc)
	return writeAtomic(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return err
		}
		return enc.Close()
	})
}

// clearStyle drops the flow style yaml.v3 keeps from the JSON source so the
// output is block YAML.
func clearStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	for _, c := range n.Content {
		clearStyle(c)
	}
}

// persist writes report.json, and report.yaml when withYAML is set, into
// dir.
func persist(dir string, b *Bundle, withYAML bool) (*Result, error) {
	res := &Result{SessionID: b.SessionID, Dir: dir, ReportPath: filepath.Join(dir, "report.json"), Bundle: b}
	if err := writeJSON(res.ReportPath, b); err != nil {
		return nil, err
	}
	if withYAML {
		res.YAMLPath = filepath.Join(dir, "report.yaml")
		if err := writeYAML(res.YAMLPath, b); err != nil {
			return nil, err
		}
	}
	return res, nil
}
