// Package api serves the engine's HTTP and websocket surface for the
// rendering layer.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"laxyguide/pkg/version"
)

// NewServer creates and configures the HTTP server.
// It accepts handlers for all API endpoints and a shutdownFunc for graceful shutdown.
func NewServer(addr string, guideH *GuideHandler, transportH *TransportHandler, syncH *SyncHandler, cfgH *ConfigHandler, stats *StatsHandler, stream *StateStream, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// Health and version
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)

	// Guide lifecycle and navigation
	mux.HandleFunc("POST /api/guide/load", guideH.HandleLoad)
	mux.HandleFunc("POST /api/guide/clear", guideH.HandleClear)
	mux.HandleFunc("GET /api/guide/state", guideH.HandleState)
	mux.HandleFunc("POST /api/guide/step/{index}", guideH.HandleStep)
	mux.HandleFunc("POST /api/guide/next", guideH.HandleNext)
	mux.HandleFunc("POST /api/guide/previous", guideH.HandlePrevious)

	// Playback transport
	mux.HandleFunc("POST /api/player/control", transportH.HandleControl)
	mux.HandleFunc("GET /api/player/status", transportH.HandleStatus)

	// Caption/image synchronization
	mux.HandleFunc("POST /api/sync/caption-click", syncH.HandleCaptionClick)
	mux.HandleFunc("POST /api/sync/scrolled", syncH.HandleScrolled)
	mux.HandleFunc("GET /api/sync/state", syncH.HandleState)

	// Config and stats
	mux.HandleFunc("GET /api/config", cfgH.HandleGet)
	mux.Handle("GET /api/stats", stats)

	// State stream
	mux.HandleFunc("GET /api/stream", stream.HandleStream)

	// Shutdown
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow response to flush
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
