package session

import (
	"context"
	"errors"
	"sync"

	"laxyguide/pkg/model"
	"laxyguide/pkg/srt"
)

// fakeResolver serves canned tours keyed by tour code. A non-nil gate makes
// Resolve block until the gate is closed, for stale-request tests.
type fakeResolver struct {
	mu    sync.Mutex
	tours map[string]*model.Tour
	errs  map[string]error
	gates map[string]chan struct{}
	calls []string
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		tours: make(map[string]*model.Tour),
		errs:  make(map[string]error),
		gates: make(map[string]chan struct{}),
	}
}

func (r *fakeResolver) Resolve(_ context.Context, tourCode, displayLanguage string) (*model.Tour, error) {
	r.mu.Lock()
	r.calls = append(r.calls, tourCode)
	gate := r.gates[tourCode]
	tour := r.tours[tourCode]
	err := r.errs[tourCode]
	r.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, errors.New("tour not found")
	}
	cp := *tour
	cp.DisplayLanguage = displayLanguage
	return &cp, nil
}

func (r *fakeResolver) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// fakeFetcher serves subtitle bodies by URL, optionally blocking on a gate.
type fakeFetcher struct {
	mu     sync.Mutex
	bodies map[string][]byte
	errs   map[string]error
	gate   chan struct{}
	calls  []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		bodies: make(map[string][]byte),
		errs:   make(map[string]error),
	}
}

func (f *fakeFetcher) Get(_ context.Context, url, _ string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	gate := f.gate
	body := f.bodies[url]
	err := f.errs[url]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) lastCall() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeFetcher) setGate(gate chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = gate
}

// fakePlayer records transport calls from the session.
type fakePlayer struct {
	mu      sync.Mutex
	loads   [][2]string
	pauses  int
	unloads int
}

func (p *fakePlayer) LoadStep(stepID, audioURL string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loads = append(p.loads, [2]string{stepID, audioURL})
}

func (p *fakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauses++
}

func (p *fakePlayer) Unload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unloads++
}

func (p *fakePlayer) lastLoad() (string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.loads) == 0 {
		return "", ""
	}
	last := p.loads[len(p.loads)-1]
	return last[0], last[1]
}

func (p *fakePlayer) loadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.loads)
}

// fakeSync records caption and image sequences handed to the controller.
type fakeSync struct {
	mu           sync.Mutex
	captions     []srt.Caption
	captionCalls int
	images       []model.StepImage
}

func (s *fakeSync) SetCaptions(captions []srt.Caption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captions = captions
	s.captionCalls++
}

func (s *fakeSync) SetImages(images []model.StepImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = images
}

func (s *fakeSync) currentCaptions() []srt.Caption {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.captions
}

func (s *fakeSync) captionCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.captionCalls
}
