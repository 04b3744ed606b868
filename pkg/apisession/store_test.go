package apisession

import (
	"sync"
	"testing"
	"time"
)

type testState struct {
	Counter int
}

func TestIssueAndGet(t *testing.T) {
	s := New(time.Minute, func() *testState { return &testState{} })

	id, st := s.Issue()
	if id == "" || st == nil {
		t.Fatal("Issue returned empty session")
	}
	st.Counter = 42

	got, ok := s.Get(id)
	if !ok {
		t.Fatal("issued session not found")
	}
	if got != st || got.Counter != 42 {
		t.Errorf("expected same state back, got %+v", got)
	}

	id2, _ := s.Issue()
	if id2 == id {
		t.Error("expected unique session IDs")
	}
	if s.Len() != 2 {
		t.Errorf("expected Len()=2, got %d", s.Len())
	}
}

func TestGet_UnknownIDMisses(t *testing.T) {
	s := New(time.Minute, func() *testState { return &testState{} })

	if _, ok := s.Get("never-issued"); ok {
		t.Error("unknown ID must miss")
	}
	if s.Len() != 0 {
		t.Errorf("a miss must not create state, got Len()=%d", s.Len())
	}
}

func TestTTLExpiry(t *testing.T) {
	s := New(50*time.Millisecond, func() *testState { return &testState{} })

	id, _ := s.Issue()
	time.Sleep(80 * time.Millisecond)
	s.Cleanup()

	if _, ok := s.Get(id); ok {
		t.Error("expired session must miss")
	}
	if s.Len() != 0 {
		t.Errorf("expected 0 after TTL expiry, got %d", s.Len())
	}
}

func TestGetRefreshesTTL(t *testing.T) {
	s := New(50*time.Millisecond, func() *testState { return &testState{} })

	id, _ := s.Issue()
	time.Sleep(30 * time.Millisecond)
	s.Get(id)
	time.Sleep(30 * time.Millisecond)

	s.Cleanup()
	if _, ok := s.Get(id); !ok {
		t.Error("refreshed session should survive cleanup")
	}
}

func TestDrop(t *testing.T) {
	s := New(time.Minute, func() *testState { return &testState{} })

	id, _ := s.Issue()
	s.Drop(id)
	if _, ok := s.Get(id); ok {
		t.Error("dropped session must miss")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New(time.Minute, func() *testState { return &testState{} })
	id, _ := s.Issue()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := s.Get(id); !ok {
				t.Error("session disappeared under concurrent access")
			}
		}()
	}
	wg.Wait()

	if s.Len() != 1 {
		t.Errorf("expected 1 session, got %d", s.Len())
	}
}

func TestLazyCleanup(t *testing.T) {
	s := New(10*time.Millisecond, func() *testState { return &testState{} })

	old, _ := s.Issue()
	time.Sleep(30 * time.Millisecond)
	fresh, _ := s.Issue()

	// Enough Get calls to cross the lazy-cleanup threshold.
	for i := 0; i < cleanupInterval; i++ {
		s.Get(fresh)
	}
	if _, ok := s.Get(old); ok {
		t.Error("expired session should have been lazily evicted")
	}
}
