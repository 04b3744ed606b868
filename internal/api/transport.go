package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"laxyguide/pkg/player"
)

// Transport is the slice of the playback engine the API drives.
type Transport interface {
	Play()
	Pause()
	TogglePlayPause()
	SeekTo(seconds float64)
	SkipForward(seconds float64)
	SkipBackward(seconds float64)
	Snapshot() player.State
}

// TransportHandler handles playback control endpoints.
type TransportHandler struct {
	engine Transport
}

// NewTransportHandler creates a new TransportHandler.
func NewTransportHandler(engine Transport) *TransportHandler {
	return &TransportHandler{engine: engine}
}

// TransportControlRequest is a playback control command.
type TransportControlRequest struct {
	Action string `json:"action"` // "play", "pause", "toggle", "seek", "skip_forward", "skip_backward"
	// Seconds is the seek target for "seek", or the skip amount for the skip
	// actions (0 selects the configured default).
	Seconds float64 `json:"seconds,omitempty"`
}

// HandleControl handles POST /api/player/control
func (h *TransportHandler) HandleControl(w http.ResponseWriter, r *http.Request) {
	var req TransportControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	switch req.Action {
	case "play":
		h.engine.Play()
	case "pause":
		h.engine.Pause()
	case "toggle":
		h.engine.TogglePlayPause()
	case "seek":
		h.engine.SeekTo(req.Seconds)
	case "skip_forward":
		h.engine.SkipForward(req.Seconds)
	case "skip_backward":
		h.engine.SkipBackward(req.Seconds)
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	slog.Debug("Transport control", "action", req.Action, "seconds", req.Seconds)
	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}

// HandleStatus handles GET /api/player/status
func (h *TransportHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}
