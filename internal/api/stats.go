package api

import (
	"net/http"

	"laxyguide/pkg/tracker"
)

// StatsHandler serves per-provider request and cache statistics.
type StatsHandler struct {
	tracker *tracker.Tracker
	stream  *StateStream
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(t *tracker.Tracker, stream *StateStream) *StatsHandler {
	return &StatsHandler{tracker: t, stream: stream}
}

// ProviderStatsDTO is the wire form of one provider's counters.
type ProviderStatsDTO struct {
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	Success     int64 `json:"success"`
	Failures    int64 `json:"failures"`
	HitRate     int64 `json:"hit_rate"`
}

// StatsResponse is the /api/stats payload.
type StatsResponse struct {
	Providers map[string]ProviderStatsDTO `json:"providers"`
	Clients   int                         `json:"clients"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snapshot := h.tracker.Snapshot()

	resp := StatsResponse{
		Providers: make(map[string]ProviderStatsDTO, len(snapshot)),
	}
	if h.stream != nil {
		resp.Clients = h.stream.ClientCount()
	}

	for provider, stats := range snapshot {
		totalCache := stats.CacheHits + stats.CacheMisses
		hitRate := int64(0)
		if totalCache > 0 {
			hitRate = (stats.CacheHits * 100) / totalCache
		}
		resp.Providers[provider] = ProviderStatsDTO{
			CacheHits:   stats.CacheHits,
			CacheMisses: stats.CacheMisses,
			Success:     stats.Success,
			Failures:    stats.Failures,
			HitRate:     hitRate,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
