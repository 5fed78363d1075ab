// Package models defines data structures and domain types.
package models

// ModelUsage is one entry of the backend's model ranking.
type ModelUsage struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Stats is the aggregate traffic snapshot returned by the stats endpoint.
// TopModels is ordered by descending count as ranked by the backend.
type Stats struct {
	TotalRequests int64        `json:"total_requests"`
	AvgLatencyMs  float64      `json:"avg_latency_ms"`
	TopModels     []ModelUsage `json:"top_models"`
}

// Clone returns a deep copy so callers never share the ranking slice.
func (s Stats) Clone() Stats {
	out := s
	if s.TopModels != nil {
		out.TopModels = make([]ModelUsage, len(s.TopModels))
		copy(out.TopModels, s.TopModels)
	}
	return out
}

// MostActiveModel returns the name of the top ranked model, or "N/A".
func (s Stats) MostActiveModel() string {
	if len(s.TopModels) == 0 || s.TopModels[0].Name == "" {
		return "N/A"
	}
	return s.TopModels[0].Name
}

// Share returns the count of the i-th model relative to the top model, in [0, 1].
func (s Stats) Share(i int) float64 {
	if i < 0 || i >= len(s.TopModels) {
		return 0
	}
	top := s.TopModels[0].Count
	if top <= 0 {
		top = 1
	}
	share := float64(s.TopModels[i].Count) / float64(top)
	return min(max(share, 0), 1)
}
