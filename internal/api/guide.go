package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"laxyguide/pkg/session"
)

// GuideSession is the slice of the session manager the API drives.
type GuideSession interface {
	Load(ctx context.Context, req session.LoadRequest) error
	Clear()
	GoToStep(index int)
	GoToNextStep()
	GoToPreviousStep()
	Snapshot() session.Snapshot
}

// GuideHandler handles guide lifecycle and navigation endpoints.
type GuideHandler struct {
	session GuideSession
}

// NewGuideHandler creates a new GuideHandler.
func NewGuideHandler(s GuideSession) *GuideHandler {
	return &GuideHandler{session: s}
}

// HandleLoad handles POST /api/guide/load
func (h *GuideHandler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	var req session.LoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.TourCode == "" || req.DisplayLanguage == "" || req.AudioLanguage == "" {
		http.Error(w, "tour_code, display_language and audio_language are required", http.StatusBadRequest)
		return
	}

	if err := h.session.Load(r.Context(), req); err != nil {
		slog.Warn("Guide load failed", "tour", req.TourCode, "error", err)
		writeJSON(w, http.StatusBadGateway, h.session.Snapshot())
		return
	}
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

// HandleClear handles POST /api/guide/clear
func (h *GuideHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.session.Clear()
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

// HandleState handles GET /api/guide/state
func (h *GuideHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

// HandleStep handles POST /api/guide/step/{index}
func (h *GuideHandler) HandleStep(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "invalid step index", http.StatusBadRequest)
		return
	}
	h.session.GoToStep(index)
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

// HandleNext handles POST /api/guide/next
func (h *GuideHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	h.session.GoToNextStep()
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

// HandlePrevious handles POST /api/guide/previous
func (h *GuideHandler) HandlePrevious(w http.ResponseWriter, r *http.Request) {
	h.session.GoToPreviousStep()
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
