// Package session binds the resolver, playback engine, and synchronization
// controller into the guide session state machine.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"laxyguide/pkg/guide"
	"laxyguide/pkg/model"
	"laxyguide/pkg/srt"
)

// Phase is the explicit session state. Transitions are gated on the config
// identity key so a result for a superseded request is never applied.
type Phase string

// Session phases.
const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseError   Phase = "error"
)

// LoadRequest asks the session to present a tour.
type LoadRequest struct {
	TourCode        string `json:"tour_code"`
	DisplayLanguage string `json:"display_language"`
	AudioLanguage   string `json:"audio_language"`
	// TargetStepID deep-links to a step; empty selects step 0.
	TargetStepID string `json:"target_step_id,omitempty"`
}

// Key returns the request's config identity key.
func (r LoadRequest) Key() model.ConfigKey {
	return model.ConfigKey{
		TourCode:        r.TourCode,
		DisplayLanguage: r.DisplayLanguage,
		AudioLanguage:   r.AudioLanguage,
	}
}

// Resolver is the slice of pkg/guide the session needs.
type Resolver interface {
	Resolve(ctx context.Context, tourCode, displayLanguage string) (*model.Tour, error)
}

// Player is the slice of the playback engine the session drives.
type Player interface {
	LoadStep(stepID, audioURL string)
	Pause()
	Unload()
}

// Synchronizer receives the caption and image sequences for the current step.
type Synchronizer interface {
	SetCaptions(captions []srt.Caption)
	SetImages(images []model.StepImage)
}

// Manager is the guide session state machine.
type Manager struct {
	mu       sync.Mutex
	resolver Resolver
	fetcher  guide.Fetcher
	player   Player
	sync     Synchronizer
	onChange func(Snapshot)

	phase     Phase
	key       model.ConfigKey
	tour      *model.Tour
	stepIndex int
	view      model.ResolvedStepView
	lastError string

	// subtitleFetchURL is the URL of the subtitle fetch in flight, empty when
	// none. A duplicate request for the same URL is dropped; a request for a
	// different URL clears the captions and is re-issued when the in-flight
	// result lands.
	subtitleFetchURL string
}

// NewManager creates an idle session.
func NewManager(resolver Resolver, fetcher guide.Fetcher, player Player, sync Synchronizer) *Manager {
	return &Manager{
		resolver: resolver,
		fetcher:  fetcher,
		player:   player,
		sync:     sync,
		phase:    PhaseIdle,
	}
}

// SetOnChange registers a snapshot listener for the state stream. Must be
// called before the session is used.
func (m *Manager) SetOnChange(fn func(Snapshot)) {
	m.onChange = fn
}

// Load drives the session toward the requested config. Depending on how the
// request's key relates to the current one this is a no-op, an in-place
// audio-language change, or a full fetch. Only a full fetch can fail; its
// error is returned for the caller to present.
func (m *Manager) Load(ctx context.Context, req LoadRequest) error {
	newKey := req.Key()

	m.mu.Lock()
	switch {
	case m.phase == PhaseReady && m.key == newKey:
		// Already satisfied: no fetch, no state change.
		m.mu.Unlock()
		return nil

	case m.phase == PhaseLoading && m.key == newKey:
		// Same request already in flight.
		m.mu.Unlock()
		return nil

	case m.phase == PhaseReady && m.key.SameTour(newKey):
		// Audio-language-only change: the tour documents stay valid, only
		// the per-step media resolution changes. Playback pauses while the
		// new track attaches.
		m.key = newKey
		m.player.Pause()
		m.applyStepLocked(m.stepIndex)
		m.mu.Unlock()
		m.notify()
		slog.Info("Audio language changed in place", "language", newKey.AudioLanguage)
		return nil
	}

	// Full reload. The latest requested key wins; an older in-flight
	// resolve is discarded when it lands against a key that has moved on.
	m.phase = PhaseLoading
	m.key = newKey
	m.mu.Unlock()
	m.notify()

	tour, err := m.resolver.Resolve(ctx, req.TourCode, req.DisplayLanguage)

	m.mu.Lock()
	if m.key != newKey {
		m.mu.Unlock()
		slog.Debug("Discarding stale tour resolve", "tour", req.TourCode)
		return nil
	}

	if err != nil {
		// A failed reload keeps the previously-good guide visible.
		m.phase = PhaseError
		m.lastError = fmt.Sprintf("failed to load tour %s: %v", req.TourCode, err)
		m.mu.Unlock()
		m.notify()
		return err
	}

	m.phase = PhaseReady
	m.tour = tour
	m.lastError = ""
	m.applyStepLocked(m.targetIndexLocked(req.TargetStepID))
	m.mu.Unlock()
	m.notify()
	return nil
}

// targetIndexLocked maps a deep-link step id to an index, defaulting to 0.
func (m *Manager) targetIndexLocked(stepID string) int {
	if stepID == "" {
		return 0
	}
	for i := range m.tour.Steps {
		if m.tour.Steps[i].ID == stepID {
			return i
		}
	}
	slog.Warn("Requested step not found in tour, selecting first", "step", stepID)
	return 0
}

// applyStepLocked selects a step, resolves its view for the current audio
// language, and hands its media to the player and synchronizer. Playback is
// never auto-started here.
func (m *Manager) applyStepLocked(index int) {
	if m.tour == nil || len(m.tour.Steps) == 0 {
		m.stepIndex = 0
		m.view = model.ResolvedStepView{}
		return
	}
	if index < 0 || index >= len(m.tour.Steps) {
		return
	}
	m.stepIndex = index
	m.view = guide.ResolveStep(m.tour, &m.tour.Steps[index], m.key.AudioLanguage)

	m.player.LoadStep(m.view.ID, m.view.AudioURL)
	m.sync.SetImages(m.view.Images)
	m.loadSubtitlesLocked(m.view.SubtitleURL)
}

// loadSubtitlesLocked starts the subtitle fetch for the current step. While
// one is in flight no second fetch starts; a landed result for a superseded
// URL is dropped and the fetch re-issued for the track that is current then.
func (m *Manager) loadSubtitlesLocked(url string) {
	if url == "" {
		m.sync.SetCaptions(nil)
		return
	}
	if m.subtitleFetchURL == url {
		return
	}
	if m.subtitleFetchURL != "" {
		// A fetch for another track is in flight; its landing re-issues for
		// the current URL. The old captions clear right away so they never
		// display against the new step.
		m.sync.SetCaptions(nil)
		return
	}
	m.subtitleFetchURL = url

	go func() {
		body, err := m.fetcher.Get(context.Background(), url, "subtitle/"+url)

		m.mu.Lock()
		m.subtitleFetchURL = ""
		current := m.view.SubtitleURL
		if current != url {
			m.loadSubtitlesLocked(current)
			m.mu.Unlock()
			slog.Debug("Discarding stale subtitle fetch", "url", url)
			return
		}
		m.mu.Unlock()
		if err != nil {
			// Captions degrade silently; the guide plays without them.
			slog.Warn("Subtitle fetch failed, continuing without captions", "url", url, "error", err)
			m.sync.SetCaptions(nil)
			return
		}

		raw := string(body)
		if !srt.IsValid(raw) {
			slog.Warn("Subtitle track is malformed, continuing without captions", "url", url)
			m.sync.SetCaptions(nil)
			return
		}
		m.sync.SetCaptions(srt.Parse(raw))
	}()
}

// GoToStep selects the step at index. Out-of-bounds indices are a no-op.
// The new step's audio is loaded but not auto-played.
func (m *Manager) GoToStep(index int) {
	m.mu.Lock()
	if m.tour == nil || index < 0 || index >= len(m.tour.Steps) {
		m.mu.Unlock()
		return
	}
	m.applyStepLocked(index)
	m.mu.Unlock()
	m.notify()
}

// GoToNextStep advances one step.
func (m *Manager) GoToNextStep() {
	m.mu.Lock()
	next := m.stepIndex + 1
	m.mu.Unlock()
	m.GoToStep(next)
}

// GoToPreviousStep steps back once.
func (m *Manager) GoToPreviousStep() {
	m.mu.Lock()
	prev := m.stepIndex - 1
	m.mu.Unlock()
	m.GoToStep(prev)
}

// OnTrackCompleted is the playback engine's completion hook: advance when a
// next step exists; on the last step the index stays put. The next step may
// lack audio for the current language, in which case the no-audio state is
// surfaced rather than the step skipped.
func (m *Manager) OnTrackCompleted() {
	m.mu.Lock()
	hasNext := m.tour != nil && m.stepIndex+1 < len(m.tour.Steps)
	next := m.stepIndex + 1
	m.mu.Unlock()
	if hasNext {
		slog.Debug("Track completed, advancing", "next_step", next)
		m.GoToStep(next)
	}
}

// Clear returns the session to idle: playback stops, the source detaches,
// and all guide state resets.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.player.Pause()
	m.player.Unload()
	m.sync.SetCaptions(nil)
	m.sync.SetImages(nil)
	m.phase = PhaseIdle
	m.key = model.ConfigKey{}
	m.tour = nil
	m.stepIndex = 0
	m.view = model.ResolvedStepView{}
	m.lastError = ""
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) notify() {
	if m.onChange != nil {
		m.onChange(m.Snapshot())
	}
}
