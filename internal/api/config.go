package api

import (
	"net/http"
	"time"

	"laxyguide/pkg/config"
)

// ConfigHandler exposes the engine's effective configuration to the
// rendering layer.
type ConfigHandler struct {
	cfg *config.Config
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{cfg: cfg}
}

// ConfigResponse is the /api/config payload.
type ConfigResponse struct {
	StoreBaseURLTemplate string  `json:"store_base_url_template"`
	CacheTTL             string  `json:"cache_ttl"`
	SkipSeconds          float64 `json:"skip_seconds"`
	ScrollOverrideMS     int64   `json:"scroll_override_ms"`
}

// HandleGet handles GET /api/config
func (h *ConfigHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ConfigResponse{
		StoreBaseURLTemplate: h.cfg.Store.BaseURLTemplate,
		CacheTTL:             time.Duration(h.cfg.Store.CacheTTL).String(),
		SkipSeconds:          h.cfg.Player.SkipSeconds,
		ScrollOverrideMS:     time.Duration(h.cfg.Player.ScrollOverrideWindow).Milliseconds(),
	})
}
