// Package subsync keeps captions and step imagery in lockstep with
// playback time and arbitrates between auto-scroll and the user's own
// scrolling.
package subsync

import (
	"sync"
	"time"

	"laxyguide/pkg/model"
	"laxyguide/pkg/srt"
)

// DefaultOverrideWindow is how long auto-scroll stays suppressed after the
// last manual scroll event.
const DefaultOverrideWindow = 5 * time.Second

// Transport is the slice of the playback engine the controller drives for
// caption click-to-seek.
type Transport interface {
	SeekTo(seconds float64)
	Play()
	IsPlaying() bool
}

// Handlers receive synchronization outputs. All are optional.
type Handlers struct {
	// OnActiveCaption fires when the active caption changes.
	// index is -1 and text empty when no caption is active.
	OnActiveCaption func(index int, text string)
	// OnActiveImage fires when the active image changes. url is empty when
	// the step has no imagery at all.
	OnActiveImage func(url string)
	// OnAutoScroll fires when the caption container should center the
	// given caption. Suppressed during the manual-scroll override window.
	OnAutoScroll func(index int)
}

// Controller recomputes the active caption and image on every time update.
// The caption and image sequences are replaced wholesale on step or
// language change, never patched.
type Controller struct {
	mu       sync.RWMutex
	captions []srt.Caption
	images   []model.StepImage

	activeCaption int
	activeImage   string

	overrideWindow time.Duration
	manualUntil    time.Time
	now            func() time.Time

	transport Transport
	handlers  Handlers
}

// NewController creates a Controller. overrideWindow <= 0 selects the
// default 5 seconds.
func NewController(transport Transport, overrideWindow time.Duration, handlers Handlers) *Controller {
	if overrideWindow <= 0 {
		overrideWindow = DefaultOverrideWindow
	}
	return &Controller{
		activeCaption:  -1,
		overrideWindow: overrideWindow,
		now:            time.Now,
		transport:      transport,
		handlers:       handlers,
	}
}

// SetCaptions replaces the caption sequence and resets the active index.
func (c *Controller) SetCaptions(captions []srt.Caption) {
	c.mu.Lock()
	c.captions = captions
	c.activeCaption = -1
	c.mu.Unlock()
	if c.handlers.OnActiveCaption != nil {
		c.handlers.OnActiveCaption(-1, "")
	}
}

// SetImages replaces the image timeline for the current step.
func (c *Controller) SetImages(images []model.StepImage) {
	c.mu.Lock()
	c.images = images
	c.activeImage = ""
	c.mu.Unlock()
}

// OnTimeUpdate recomputes the active caption and image for playback time t.
// State and handlers fire only when the computed values actually change.
func (c *Controller) OnTimeUpdate(t float64) {
	c.mu.Lock()

	captionIdx := c.findActiveCaptionLocked(t)
	captionChanged := captionIdx != c.activeCaption
	var captionText string
	if captionChanged {
		c.activeCaption = captionIdx
		if captionIdx >= 0 {
			captionText = c.captions[captionIdx].Text
		}
	}
	scroll := captionChanged && captionIdx >= 0 && !c.overrideActiveLocked()

	imageURL := c.findActiveImageLocked(t)
	imageChanged := imageURL != c.activeImage
	if imageChanged {
		c.activeImage = imageURL
	}
	c.mu.Unlock()

	if captionChanged && c.handlers.OnActiveCaption != nil {
		c.handlers.OnActiveCaption(captionIdx, captionText)
	}
	if scroll && c.handlers.OnAutoScroll != nil {
		c.handlers.OnAutoScroll(captionIdx)
	}
	if imageChanged && c.handlers.OnActiveImage != nil {
		c.handlers.OnActiveImage(imageURL)
	}
}

// findActiveCaptionLocked returns the index of the first caption containing
// t, or -1. Bounds are inclusive; overlaps resolve to the earliest caption.
func (c *Controller) findActiveCaptionLocked(t float64) int {
	for i := range c.captions {
		if t >= c.captions[i].StartTime && t <= c.captions[i].EndTime {
			return i
		}
	}
	return -1
}

// findActiveImageLocked returns the URL of the first image whose timestamp
// range contains t, falling back to the step's first image, else empty.
func (c *Controller) findActiveImageLocked(t float64) string {
	for i := range c.images {
		if t >= c.images[i].StartTimestamp && t <= c.images[i].EndTimestamp {
			return c.images[i].URL
		}
	}
	if len(c.images) > 0 {
		return c.images[0].URL
	}
	return ""
}

// UserScrolled records a manual scroll event. Auto-scroll stays suppressed
// until the override window elapses without further scroll events.
func (c *Controller) UserScrolled() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.manualUntil = c.now().Add(c.overrideWindow)
}

// ManualOverrideActive reports whether auto-scroll is currently suppressed.
func (c *Controller) ManualOverrideActive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.overrideActiveLocked()
}

func (c *Controller) overrideActiveLocked() bool {
	return c.now().Before(c.manualUntil)
}

// CaptionClicked seeks playback to the caption's start and begins playback
// if paused. Out-of-range indices are ignored.
func (c *Controller) CaptionClicked(index int) {
	c.mu.RLock()
	if index < 0 || index >= len(c.captions) {
		c.mu.RUnlock()
		return
	}
	start := c.captions[index].StartTime
	c.mu.RUnlock()

	c.transport.SeekTo(start)
	if !c.transport.IsPlaying() {
		c.transport.Play()
	}
}

// Snapshot returns the current synchronization outputs.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Snapshot{
		ActiveCaptionIndex: c.activeCaption,
		ActiveImageURL:     c.activeImage,
		ManualOverride:     c.overrideActiveLocked(),
	}
	if c.activeCaption >= 0 && c.activeCaption < len(c.captions) {
		s.ActiveCaptionText = c.captions[c.activeCaption].Text
	}
	return s
}

// Snapshot is the render-ready synchronization state.
type Snapshot struct {
	ActiveCaptionIndex int    `json:"active_caption_index"`
	ActiveCaptionText  string `json:"active_caption_text,omitempty"`
	ActiveImageURL     string `json:"active_image_url,omitempty"`
	ManualOverride     bool   `json:"manual_override"`
}
