package clients

import "context"

// --- Visualization ---

// TimelineReq plots the inter-person distance over time, with event markers.
type TimelineReq struct {
	Timestamps  []float64 `json:"timestamps"`
	Distances   []float64 `json:"distances"`
	EventTimes  []float64 `json:"event_times,omitempty"`
	EventLabels []string  `json:"event_labels,omitempty"`
	OutputDir   string    `json:"output_dir,omitempty"`
}

type TimelineResp struct{ Status, Path string }

func (h *HTTP) GenerateTimeline(ctx context.Context, url string, req TimelineReq) (*TimelineResp, error) {
	var out TimelineResp
	if err := h.postJSON(ctx, "viz timeline", url+"/generate-timeline", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RadarReq plots one value per category, e.g. the per-modality scores.
type RadarReq struct {
	Categories []string  `json:"categories"`
	Values     []float64 `json:"values"`
	Label      string    `json:"label"`
	OutputDir  string    `json:"output_dir,omitempty"`
}
type RadarResp struct{ Status, Path string }

func (h *HTTP) GenerateRadar(ctx context.Context, url string, req RadarReq) (*RadarResp, error) {
	var out RadarResp
	if err := h.postJSON(ctx, "viz radar", url+"/generate-radar", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
