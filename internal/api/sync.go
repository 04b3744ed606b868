package api

import (
	"encoding/json"
	"net/http"

	"laxyguide/pkg/subsync"
)

// Synchronizer is the slice of the synchronization controller the API drives.
type Synchronizer interface {
	CaptionClicked(index int)
	UserScrolled()
	Snapshot() subsync.Snapshot
}

// SyncHandler handles caption/image synchronization endpoints.
type SyncHandler struct {
	controller Synchronizer
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(c Synchronizer) *SyncHandler {
	return &SyncHandler{controller: c}
}

// CaptionClickRequest identifies the clicked caption.
type CaptionClickRequest struct {
	Index int `json:"index"`
}

// HandleCaptionClick handles POST /api/sync/caption-click
func (h *SyncHandler) HandleCaptionClick(w http.ResponseWriter, r *http.Request) {
	var req CaptionClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.controller.CaptionClicked(req.Index)
	writeJSON(w, http.StatusOK, h.controller.Snapshot())
}

// HandleScrolled handles POST /api/sync/scrolled, the rendering layer's
// manual-scroll notification.
func (h *SyncHandler) HandleScrolled(w http.ResponseWriter, r *http.Request) {
	h.controller.UserScrolled()
	writeJSON(w, http.StatusOK, h.controller.Snapshot())
}

// HandleState handles GET /api/sync/state
func (h *SyncHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.controller.Snapshot())
}
