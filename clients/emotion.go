package clients

import (
	"context"
)

// --- Emotion (/detect) ---
type EmoReq struct {
	Text string `json:"text"`
}
type EmoScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
type EmoResp struct {
	Emotions        []EmoScore `json:"emotions"`
	DominantEmotion string     `json:"dominant_emotion"`
}

func (h *HTTP) Emotion(ctx context.Context, url, text string) (*EmoResp, error) {
	var out EmoResp
	if err := h.postJSON(ctx, "emotion", url+"/detect", EmoReq{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
