package clients

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/maastricht-university/edmo-interaction/speech"
)

// ASR uploads an audio file to /transcribe and decodes the diarized
// word-level transcript it returns.
func (h *HTTP) ASR(ctx context.Context, url, audioPath string) ([]speech.Fragment, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	fd, err := os.Open(audioPath)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, err
	}
	if err = w.WriteField("diarization", "true"); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/transcribe", &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out []speech.Fragment
	err = h.do(req, "asr", func(r io.Reader) (err error) {
		out, err = speech.Decode(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
