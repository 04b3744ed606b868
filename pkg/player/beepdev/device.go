// Package beepdev implements player.AudioDevice on gopxl/beep, decoding
// narration tracks fetched from the tour store.
package beepdev

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"

	"laxyguide/pkg/player"
)

const (
	targetSampleRate = 48000
	tickInterval     = 250 * time.Millisecond
)

// Fetcher retrieves an audio asset by URL.
type Fetcher interface {
	Get(ctx context.Context, url, cacheKey string) ([]byte, error)
}

// Device is the speaker-backed audio output. One instance owns the speaker
// for the process lifetime.
type Device struct {
	mu          sync.Mutex
	fetcher     Fetcher
	events      chan player.Event
	ctrl        *beep.Ctrl
	streamer    beep.StreamSeekCloser
	format      beep.Format
	speakerInit bool
	sampleRate  beep.SampleRate
	tickerStop  chan struct{}
	closed      bool
}

// New creates a Device that downloads sources through the given fetcher.
func New(fetcher Fetcher) *Device {
	return &Device{
		fetcher: fetcher,
		events:  make(chan player.Event, 64),
	}
}

// Load downloads and decodes a source, replacing any current one. The new
// source starts paused; Play begins output.
func (d *Device) Load(url string) error {
	d.emit(player.Event{Kind: player.EventLoadStart})

	body, err := d.fetcher.Get(context.Background(), url, "audio/"+url)
	if err != nil {
		err = fmt.Errorf("audio fetch failed: %w", err)
		d.emit(player.Event{Kind: player.EventError, Err: err})
		return err
	}

	streamer, format, err := decode(body)
	if err != nil {
		d.emit(player.Event{Kind: player.EventError, Err: err})
		return err
	}

	d.mu.Lock()
	d.unloadLocked()

	if !d.speakerInit {
		sr := beep.SampleRate(targetSampleRate)
		if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
			d.mu.Unlock()
			streamer.Close()
			slog.Error("Failed to initialize speaker", "error", err)
			d.emit(player.Event{Kind: player.EventError, Err: err})
			return err
		}
		d.speakerInit = true
		d.sampleRate = sr
	}

	resampled := beep.Resample(3, format.SampleRate, d.sampleRate, streamer)
	d.ctrl = &beep.Ctrl{Streamer: resampled, Paused: true}
	d.streamer = streamer
	d.format = format
	d.tickerStop = make(chan struct{})
	go d.tick(d.tickerStop)
	d.mu.Unlock()

	speaker.Play(beep.Seq(d.ctrl, beep.Callback(func() {
		d.emit(player.Event{Kind: player.EventEnded})
	})))

	d.emit(player.Event{
		Kind:     player.EventMetadataReady,
		Duration: format.SampleRate.D(streamer.Len()).Seconds(),
	})
	d.emit(player.Event{Kind: player.EventCanPlay})
	return nil
}

// decode tries MP3 first, then WAV, from the in-memory payload.
func decode(body []byte) (beep.StreamSeekCloser, beep.Format, error) {
	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(body)))
	if err == nil {
		return streamer, format, nil
	}
	streamer, format, err = wav.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format: %w", err)
	}
	return streamer, format, nil
}

// tick reports playback position while a source is attached.
func (d *Device) tick(stop chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			d.mu.Lock()
			if d.streamer == nil || d.ctrl == nil || d.ctrl.Paused {
				d.mu.Unlock()
				continue
			}
			speaker.Lock()
			pos := d.format.SampleRate.D(d.streamer.Position()).Seconds()
			speaker.Unlock()
			d.mu.Unlock()
			d.emit(player.Event{Kind: player.EventTimeUpdate, Time: pos})
		}
	}
}

// Play resumes output of the attached source.
func (d *Device) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctrl == nil {
		return fmt.Errorf("no source attached")
	}
	speaker.Lock()
	d.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

// Pause halts output, keeping the source attached.
func (d *Device) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctrl != nil {
		speaker.Lock()
		d.ctrl.Paused = true
		speaker.Unlock()
	}
}

// Seek moves the playback position.
func (d *Device) Seek(seconds float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.streamer == nil {
		return
	}
	speaker.Lock()
	sample := d.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if sample < 0 {
		sample = 0
	}
	if sample > d.streamer.Len() {
		sample = d.streamer.Len()
	}
	if err := d.streamer.Seek(sample); err != nil {
		slog.Warn("Seek failed", "seconds", seconds, "error", err)
	}
	speaker.Unlock()
}

// Unload detaches the current source.
func (d *Device) Unload() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unloadLocked()
}

func (d *Device) unloadLocked() {
	if d.tickerStop != nil {
		close(d.tickerStop)
		d.tickerStop = nil
	}
	if d.streamer != nil {
		d.streamer.Close()
		d.streamer = nil
	}
	if d.ctrl != nil {
		speaker.Clear()
		d.ctrl = nil
	}
}

// Events delivers device notifications.
func (d *Device) Events() <-chan player.Event {
	return d.events
}

// Close detaches the source and closes the event stream.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.unloadLocked()
	close(d.events)
	return nil
}

// emit drops events once the device is closed or the consumer stalls; the
// engine mirrors state from a steady stream, a lost tick is harmless.
func (d *Device) emit(ev player.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	select {
	case d.events <- ev:
	default:
	}
}
