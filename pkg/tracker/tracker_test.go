package tracker

import (
	"sync"
	"testing"
)

func TestTracker_Counts(t *testing.T) {
	tr := New()

	tr.TrackCacheHit("tour-store")
	tr.TrackCacheMiss("tour-store")
	tr.TrackCacheMiss("tour-store")
	tr.TrackSuccess("tour-store")
	tr.TrackFailure("assets")

	snap := tr.Snapshot()
	ts := snap["tour-store"]
	if ts.CacheHits != 1 || ts.CacheMisses != 2 || ts.Success != 1 {
		t.Errorf("unexpected tour-store stats: %+v", ts)
	}
	if snap["assets"].Failures != 1 {
		t.Errorf("unexpected assets stats: %+v", snap["assets"])
	}
}

func TestTracker_Concurrent(t *testing.T) {
	tr := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.TrackSuccess("tour-store")
		}()
	}
	wg.Wait()

	if got := tr.Snapshot()["tour-store"].Success; got != 50 {
		t.Errorf("expected 50 successes, got %d", got)
	}
}
