package player

import (
	"errors"
	"sync"
)

// fakeDevice is a scriptable AudioDevice for engine tests. Tests drive the
// event stream by hand instead of waiting on a real media backend.
type fakeDevice struct {
	mu         sync.Mutex
	loaded     string
	loadCalls  []string
	playCalls  int
	paused     bool
	position   float64
	rejectPlay bool
	failLoad   bool

	events chan Event
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{events: make(chan Event, 32)}
}

func (d *fakeDevice) Load(url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failLoad {
		return errors.New("decode failure")
	}
	d.loaded = url
	d.loadCalls = append(d.loadCalls, url)
	return nil
}

func (d *fakeDevice) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rejectPlay {
		return errors.New("autoplay rejected")
	}
	d.playCalls++
	d.paused = false
	return nil
}

func (d *fakeDevice) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = true
}

func (d *fakeDevice) Seek(seconds float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.position = seconds
}

func (d *fakeDevice) Unload() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loaded = ""
}

func (d *fakeDevice) Events() <-chan Event { return d.events }

func (d *fakeDevice) Close() error {
	close(d.events)
	return nil
}

func (d *fakeDevice) emit(ev Event) { d.events <- ev }

func (d *fakeDevice) seekPosition() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.position
}

func (d *fakeDevice) loadedURL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded
}

func (d *fakeDevice) loadHistory() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.loadCalls))
	copy(out, d.loadCalls)
	return out
}
