// Package player owns the single audio output and exposes the transport
// operations of the guide player.
package player

import (
	"log/slog"
	"sync"
)

// DefaultSkipSeconds is the transport skip amount when none is configured.
const DefaultSkipSeconds = 15

// State is a snapshot of the engine's playback state.
type State struct {
	StepID      string  `json:"step_id"`
	IsPlaying   bool    `json:"is_playing"`
	IsLoading   bool    `json:"is_loading"`
	CurrentTime float64 `json:"current_time"`
	Duration    float64 `json:"duration"`
	Error       string  `json:"error,omitempty"`
}

// Handlers receive engine notifications. Both are optional.
type Handlers struct {
	// OnTimeUpdate fires on every device time-progress notification.
	OnTimeUpdate func(seconds float64)
	// OnCompleted fires when playback reaches the end of the track.
	OnCompleted func()
	// OnStateChange fires after any state mutation.
	OnStateChange func(State)
}

// Engine drives exactly one AudioDevice for the lifetime of the session.
// Switching steps always detaches the previous source first; there is never
// more than one source attached.
type Engine struct {
	mu       sync.RWMutex
	device   AudioDevice
	handlers Handlers
	skip     float64

	stepID      string
	sourceURL   string
	hasSource   bool
	isPlaying   bool
	isLoading   bool
	currentTime float64
	duration    float64
	lastError   string

	done chan struct{}
}

// NewEngine creates an engine around the given device and starts consuming
// its event stream. skipSeconds <= 0 selects the default.
func NewEngine(device AudioDevice, skipSeconds float64, handlers Handlers) *Engine {
	if skipSeconds <= 0 {
		skipSeconds = DefaultSkipSeconds
	}
	e := &Engine{
		device:   device,
		handlers: handlers,
		skip:     skipSeconds,
		done:     make(chan struct{}),
	}
	go e.pump()
	return e
}

// pump translates device events into engine state.
func (e *Engine) pump() {
	defer close(e.done)
	for ev := range e.device.Events() {
		switch ev.Kind {
		case EventLoadStart:
			e.mutate(func() { e.isLoading = true })
		case EventCanPlay:
			e.mutate(func() { e.isLoading = false })
		case EventMetadataReady:
			e.mutate(func() { e.duration = ev.Duration })
		case EventTimeUpdate:
			e.mutate(func() { e.currentTime = ev.Time })
			if e.handlers.OnTimeUpdate != nil {
				e.handlers.OnTimeUpdate(ev.Time)
			}
		case EventEnded:
			e.mutate(func() { e.isPlaying = false })
			if e.handlers.OnCompleted != nil {
				e.handlers.OnCompleted()
			}
		case EventError:
			slog.Warn("Playback device error", "error", ev.Err)
			e.mutate(func() {
				e.isPlaying = false
				e.isLoading = false
				if ev.Err != nil {
					e.lastError = ev.Err.Error()
				}
			})
		}
	}
}

func (e *Engine) mutate(fn func()) {
	e.mu.Lock()
	fn()
	state := e.snapshotLocked()
	e.mu.Unlock()
	if e.handlers.OnStateChange != nil {
		e.handlers.OnStateChange(state)
	}
}

// LoadStep attaches a step's audio. Re-loading the identical step and source
// is a no-op so unrelated state churn cannot restart audio; the same step
// with a different source (an audio-language change) reattaches. A view
// without audio leaves the engine unloaded (playback degrades to a silent
// no-op, see Play).
func (e *Engine) LoadStep(stepID, audioURL string) {
	e.mu.Lock()
	if stepID == e.stepID && audioURL == e.sourceURL && stepID != "" {
		e.mu.Unlock()
		return
	}

	if e.hasSource {
		e.device.Pause()
		e.device.Unload()
	}

	e.stepID = stepID
	e.sourceURL = audioURL
	e.hasSource = false
	e.isPlaying = false
	e.currentTime = 0
	e.duration = 0
	e.lastError = ""

	if audioURL == "" {
		slog.Info("Step has no audio for current language", "step", stepID)
		state := e.snapshotLocked()
		e.mu.Unlock()
		if e.handlers.OnStateChange != nil {
			e.handlers.OnStateChange(state)
		}
		return
	}
	e.mu.Unlock()

	// Device load outside the lock: the device reports progress through the
	// event stream, which needs the lock to apply state.
	if err := e.device.Load(audioURL); err != nil {
		slog.Warn("Failed to load step audio", "step", stepID, "url", audioURL, "error", err)
		e.mutate(func() { e.lastError = err.Error() })
		return
	}

	e.mutate(func() { e.hasSource = true })
	slog.Debug("Step audio loaded", "step", stepID, "url", audioURL)
}

// Unload detaches the current source and resets playback state.
func (e *Engine) Unload() {
	e.mutate(func() {
		if e.hasSource {
			e.device.Pause()
			e.device.Unload()
		}
		e.stepID = ""
		e.sourceURL = ""
		e.hasSource = false
		e.isPlaying = false
		e.currentTime = 0
		e.duration = 0
		e.lastError = ""
	})
}

// Play requests playback. Without a source this is a no-op; a device
// rejection is logged and leaves the engine paused. Never returns an error
// to the caller.
func (e *Engine) Play() {
	e.mu.Lock()
	if !e.hasSource {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	if err := e.device.Play(); err != nil {
		slog.Warn("Playback start rejected", "error", err)
		return
	}
	e.mutate(func() { e.isPlaying = true })
}

// Pause is always safe to call, with or without a source.
func (e *Engine) Pause() {
	e.device.Pause()
	e.mutate(func() { e.isPlaying = false })
}

// TogglePlayPause delegates to Play or Pause based on current state.
func (e *Engine) TogglePlayPause() {
	if e.IsPlaying() {
		e.Pause()
	} else {
		e.Play()
	}
}

// SeekTo sets the playback position and mirrors it into state synchronously
// so callers see the new position before the device's own time notification.
func (e *Engine) SeekTo(seconds float64) {
	e.device.Seek(seconds)
	e.mutate(func() { e.currentTime = seconds })
}

// SkipForward advances by the given amount (engine default when <= 0),
// clamped to the track duration.
func (e *Engine) SkipForward(seconds float64) {
	if seconds <= 0 {
		seconds = e.skip
	}
	e.mu.RLock()
	hasSource := e.hasSource
	target := clamp(e.currentTime+seconds, 0, e.duration)
	e.mu.RUnlock()
	if !hasSource {
		return
	}
	e.SeekTo(target)
}

// SkipBackward rewinds by the given amount (engine default when <= 0),
// clamped to zero.
func (e *Engine) SkipBackward(seconds float64) {
	if seconds <= 0 {
		seconds = e.skip
	}
	e.mu.RLock()
	hasSource := e.hasSource
	target := clamp(e.currentTime-seconds, 0, e.duration)
	e.mu.RUnlock()
	if !hasSource {
		return
	}
	e.SeekTo(target)
}

// IsPlaying reports whether playback is active.
func (e *Engine) IsPlaying() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.isPlaying
}

// Snapshot returns the current playback state.
func (e *Engine) Snapshot() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() State {
	return State{
		StepID:      e.stepID,
		IsPlaying:   e.isPlaying,
		IsLoading:   e.isLoading,
		CurrentTime: e.currentTime,
		Duration:    e.duration,
		Error:       e.lastError,
	}
}

// Close releases the device and waits for the event pump to drain.
func (e *Engine) Close() error {
	err := e.device.Close()
	<-e.done
	return err
}

// clamp bounds v to [lo, hi]. While duration is unknown hi is zero, so a
// forward skip pins to the start until metadata arrives.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
