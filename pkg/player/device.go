package player

// EventKind discriminates device notifications.
type EventKind int

// Device notification kinds, mirroring what a media backend reports while
// a source loads and plays.
const (
	EventLoadStart EventKind = iota
	EventCanPlay
	EventMetadataReady
	EventTimeUpdate
	EventEnded
	EventError
)

// Event is one device-level notification.
type Event struct {
	Kind     EventKind
	Time     float64 // seconds, for EventTimeUpdate
	Duration float64 // seconds, for EventMetadataReady
	Err      error   // for EventError
}

// AudioDevice abstracts the single audio output the engine owns, so the
// engine is testable without a real media backend.
type AudioDevice interface {
	// Load attaches a new source, replacing any current one.
	Load(url string) error
	// Play requests playback. The request may fail (decode error,
	// unsupported format); the error is reported, not panicked.
	Play() error
	// Pause halts playback, keeping the source attached.
	Pause()
	// Seek moves the playback position, in seconds.
	Seek(seconds float64)
	// Unload detaches the current source, stopping playback.
	Unload()
	// Events delivers device notifications until Close.
	Events() <-chan Event
	// Close releases the device.
	Close() error
}
