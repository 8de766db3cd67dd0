package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestASRUploadsAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transcribe", r.URL.Path)
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "session.wav", hdr.Filename)
		assert.Equal(t, "RIFF", string(body))
		assert.Equal(t, "true", r.FormValue("diarization"))

		_, _ = io.WriteString(w, `{"results":[{"alternatives":[{"transcript":"hi","words":[
			{"word":"hi","startTime":"0s","endTime":{"seconds":1},"speakerTag":1,"confidence":0.9}]}]}]}`)
	}))
	defer srv.Close()

	audio := filepath.Join(t.TempDir(), "session.wav")
	require.NoError(t, os.WriteFile(audio, []byte("RIFF"), 0o644))

	frags, err := NewHTTP(time.Second).ASR(context.Background(), srv.URL, audio)
	require.NoError(t, err)
	require.Len(t, frags, 1)
	w := frags[0].Alternatives[0].Words[0]
	assert.Equal(t, "hi", w.Text)
	assert.Equal(t, 1.0, w.End)
	assert.Equal(t, 1, w.SpeakerTag)
}

func TestASRMalformedTimestamp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"alternatives":[{"words":[{"word":"x","startTime":true,"endTime":"1s","speakerTag":1}]}]}]`)
	}))
	defer srv.Close()

	audio := filepath.Join(t.TempDir(), "a.wav")
	require.NoError(t, os.WriteFile(audio, nil, 0o644))
	_, err := NewHTTP(time.Second).ASR(context.Background(), srv.URL, audio)
	assert.ErrorContains(t, err, "asr decode")
}

func TestASRMissingFile(t *testing.T) {
	_, err := NewHTTP(time.Second).ASR(context.Background(), "http://127.0.0.1:0", filepath.Join(t.TempDir(), "none.wav"))
	assert.Error(t, err)
}

func TestEmotion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/detect", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req EmoReq
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "great job", req.Text)
		_ = json.NewEncoder(w).Encode(EmoResp{
			Emotions:        []EmoScore{{Label: "joy", Score: 0.8}, {Label: "neutral", Score: 0.2}},
			DominantEmotion: "joy",
		})
	}))
	defer srv.Close()

	out, err := NewHTTP(time.Second).Emotion(context.Background(), srv.URL, "great job")
	require.NoError(t, err)
	assert.Equal(t, "joy", out.DominantEmotion)
	assert.Len(t, out.Emotions, 2)
}

func TestNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTP(time.Second).Emotion(context.Background(), srv.URL, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "emotion 503")
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestVisualization(t *testing.T) {
	var gotTimeline TimelineReq
	var gotRadar RadarReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/generate-timeline":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotTimeline))
			_, _ = io.WriteString(w, `{"status":"ok","path":"/out/timeline.png"}`)
		case "/generate-radar":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotRadar))
			_, _ = io.WriteString(w, `{"status":"ok","path":"/out/radar.png"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	h := NewHTTP(time.Second)

	tl, err := h.GenerateTimeline(context.Background(), srv.URL, TimelineReq{
		Timestamps: []float64{0, 1}, Distances: []float64{0.4, 0.1},
		EventTimes: []float64{1}, EventLabels: []string{"contact"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/out/timeline.png", tl.Path)
	assert.Equal(t, []string{"contact"}, gotTimeline.EventLabels)

	rd, err := h.GenerateRadar(context.Background(), srv.URL, RadarReq{Categories: []string{"proximity"}, Values: []float64{0.7}, Label: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "ok", rd.Status)
	assert.Equal(t, "s1", gotRadar.Label)
}

func TestContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHTTP(time.Second).Emotion(ctx, srv.URL, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
