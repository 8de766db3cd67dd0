// Package clients talks to the external ASR, emotion and visualization
// services over HTTP.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type HTTP struct{ c *http.Client }

func NewHTTP(timeout time.Duration) *HTTP { return &HTTP{c: &http.Client{Timeout: timeout}} }

// postJSON sends body as JSON to url and decodes a 200 response into out.
// name prefixes every error.
func (h *HTTP) postJSON(ctx context.Context, name, url string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s encode: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return h.do(req, name, func(r io.Reader) error { return json.NewDecoder(r).Decode(out) })
}

func (h *HTTP) do(req *http.Request, name string, decode func(io.Reader) error) error {
	resp, err := h.c.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: %s", name, resp.Status, bytes.TrimSpace(body))
	}
	if err := decode(resp.Body); err != nil {
		return fmt.Errorf("%s decode: %w", name, err)
	}
	return nil
}
