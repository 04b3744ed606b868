package subsync

import (
	"testing"
	"time"

	"laxyguide/pkg/model"
	"laxyguide/pkg/srt"
)

// fakeTransport records transport calls from click-to-seek.
type fakeTransport struct {
	seeked  []float64
	playing bool
	plays   int
}

func (f *fakeTransport) SeekTo(s float64) { f.seeked = append(f.seeked, s) }
func (f *fakeTransport) Play()            { f.plays++; f.playing = true }
func (f *fakeTransport) IsPlaying() bool  { return f.playing }

func testCaptions() []srt.Caption {
	return []srt.Caption{
		{Index: 1, StartTime: 0, EndTime: 5, Text: "A"},
		{Index: 2, StartTime: 10, EndTime: 15, Text: "B"},
	}
}

func newTestController(h Handlers) (*Controller, *fakeTransport, *time.Time) {
	tr := &fakeTransport{}
	c := NewController(tr, 5*time.Second, h)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	c.SetCaptions(testCaptions())
	return c, tr, &now
}

func TestOnTimeUpdate_ActiveCaption(t *testing.T) {
	var gotIdx []int
	var gotText []string
	c, _, _ := newTestController(Handlers{
		OnActiveCaption: func(i int, text string) {
			gotIdx = append(gotIdx, i)
			gotText = append(gotText, text)
		},
	})

	c.OnTimeUpdate(12.3)
	if s := c.Snapshot(); s.ActiveCaptionIndex != 1 || s.ActiveCaptionText != "B" {
		t.Errorf("unexpected snapshot: %+v", s)
	}

	// same caption again: no handler call
	calls := len(gotIdx)
	c.OnTimeUpdate(13.0)
	if len(gotIdx) != calls {
		t.Error("handler fired without a caption change")
	}

	// gap between captions: active goes to -1 with empty text
	c.OnTimeUpdate(7.0)
	if s := c.Snapshot(); s.ActiveCaptionIndex != -1 || s.ActiveCaptionText != "" {
		t.Errorf("expected no active caption in gap, got %+v", s)
	}
	if gotIdx[len(gotIdx)-1] != -1 || gotText[len(gotText)-1] != "" {
		t.Errorf("handler not told about gap: %v %v", gotIdx, gotText)
	}
}

func TestOnTimeUpdate_ActiveImage(t *testing.T) {
	var urls []string
	c, _, _ := newTestController(Handlers{
		OnActiveImage: func(u string) { urls = append(urls, u) },
	})
	c.SetImages([]model.StepImage{
		{URL: "first.jpg", StartTimestamp: 0, EndTimestamp: 0},
		{URL: "detail.jpg", StartTimestamp: 10, EndTimestamp: 20},
	})

	// no range matches 5.0: falls back to the first image
	c.OnTimeUpdate(5.0)
	if s := c.Snapshot(); s.ActiveImageURL != "first.jpg" {
		t.Errorf("expected fallback to first image, got %q", s.ActiveImageURL)
	}

	c.OnTimeUpdate(12.0)
	if s := c.Snapshot(); s.ActiveImageURL != "detail.jpg" {
		t.Errorf("expected ranged image, got %q", s.ActiveImageURL)
	}

	if len(urls) != 2 {
		t.Errorf("expected 2 image changes, got %v", urls)
	}
}

func TestOnTimeUpdate_NoImages(t *testing.T) {
	c, _, _ := newTestController(Handlers{})
	c.OnTimeUpdate(3.0)
	if s := c.Snapshot(); s.ActiveImageURL != "" {
		t.Errorf("expected empty image URL, got %q", s.ActiveImageURL)
	}
}

func TestAutoScroll_SuppressedByManualOverride(t *testing.T) {
	var scrolls []int
	c, _, now := newTestController(Handlers{
		OnAutoScroll: func(i int) { scrolls = append(scrolls, i) },
	})

	c.OnTimeUpdate(2.0)
	if len(scrolls) != 1 || scrolls[0] != 0 {
		t.Fatalf("expected auto-scroll to caption 0, got %v", scrolls)
	}

	// user scrolls: next caption change must not auto-scroll
	c.UserScrolled()
	c.OnTimeUpdate(12.0)
	if len(scrolls) != 1 {
		t.Fatalf("auto-scroll fired during override: %v", scrolls)
	}

	// override expires after the window
	*now = now.Add(6 * time.Second)
	c.OnTimeUpdate(3.0)
	if len(scrolls) != 2 {
		t.Fatalf("auto-scroll did not resume after override expiry: %v", scrolls)
	}
}

func TestManualOverride_DebounceResetsOnEachScroll(t *testing.T) {
	c, _, now := newTestController(Handlers{})

	c.UserScrolled()
	*now = now.Add(4 * time.Second)
	if !c.ManualOverrideActive() {
		t.Fatal("override should still be active at 4s")
	}

	// a new scroll restarts the window
	c.UserScrolled()
	*now = now.Add(4 * time.Second)
	if !c.ManualOverrideActive() {
		t.Fatal("override should have been extended by the second scroll")
	}

	*now = now.Add(2 * time.Second)
	if c.ManualOverrideActive() {
		t.Fatal("override should have expired")
	}
}

func TestCaptionClicked(t *testing.T) {
	c, tr, _ := newTestController(Handlers{})

	c.CaptionClicked(1)
	if len(tr.seeked) != 1 || tr.seeked[0] != 10 {
		t.Errorf("expected seek to caption start 10, got %v", tr.seeked)
	}
	if tr.plays != 1 {
		t.Errorf("expected playback to start, got %d plays", tr.plays)
	}

	// already playing: no second play call
	c.CaptionClicked(0)
	if tr.plays != 1 {
		t.Errorf("expected no extra play when already playing, got %d", tr.plays)
	}

	// out of range: ignored
	c.CaptionClicked(99)
	c.CaptionClicked(-1)
	if len(tr.seeked) != 2 {
		t.Errorf("out-of-range click must not seek: %v", tr.seeked)
	}
}

func TestSetCaptions_ResetsActiveIndex(t *testing.T) {
	c, _, _ := newTestController(Handlers{})
	c.OnTimeUpdate(2.0)
	if c.Snapshot().ActiveCaptionIndex != 0 {
		t.Fatal("precondition failed")
	}

	c.SetCaptions([]srt.Caption{{Index: 1, StartTime: 100, EndTime: 200, Text: "new"}})
	if s := c.Snapshot(); s.ActiveCaptionIndex != -1 {
		t.Errorf("expected reset to -1, got %d", s.ActiveCaptionIndex)
	}
}
