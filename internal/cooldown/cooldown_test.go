package cooldown

import (
	"sync"
	"testing"
	"time"
)

type fakeTimer struct {
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{fn: fn}
	f.timers = append(f.timers, t)
	return t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func (f *fakeClock) Fire() {
	f.mu.Lock()
	pending := append([]*fakeTimer{}, f.timers...)
	f.timers = nil
	f.mu.Unlock()
	for _, timer := range pending {
		timer.fn()
	}
}

func newTestGate(clock *fakeClock) *Gate {
	gate := NewGate(map[string]Window{
		"ask":     {Duration: 30 * time.Second, Max: 1},
		"analyze": {Duration: 60 * time.Second, Max: 5},
	}, Window{Duration: 3 * time.Second, Max: 1})
	gate.WithClock(clock)
	return gate
}

func TestSingleSlotRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	gate := newTestGate(clock)

	if result := gate.TryAcquire("ask", "g1:u1"); !result.Allowed {
		t.Fatalf("first acquire should be allowed")
	}
	result := gate.TryAcquire("ask", "g1:u1")
	if result.Allowed {
		t.Fatalf("second acquire within window should be denied")
	}
	if result.RetryAfter != 30.0 {
		t.Fatalf("expected 30.0s retry, got %.1f", result.RetryAfter)
	}

	clock.Advance(5 * time.Second)
	result = gate.TryAcquire("ask", "g1:u1")
	if result.Allowed {
		t.Fatalf("acquire at 5s should still be denied")
	}
	if result.RetryAfter != 25.0 {
		t.Fatalf("expected 25.0s retry, got %.1f", result.RetryAfter)
	}

	clock.Advance(26 * time.Second)
	if result := gate.TryAcquire("ask", "g1:u1"); !result.Allowed {
		t.Fatalf("acquire after window should be allowed")
	}
}

func TestSingleSlotSubjectsIsolated(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	gate := newTestGate(clock)

	if result := gate.TryAcquire("ask", "g1:u1"); !result.Allowed {
		t.Fatalf("first subject should be allowed")
	}
	if result := gate.TryAcquire("ask", "g1:u2"); !result.Allowed {
		t.Fatalf("second subject should not share the first's cooldown")
	}
	if result := gate.TryAcquire("search", "g1:u1"); !result.Allowed {
		t.Fatalf("different scope should not share the cooldown")
	}
}

func TestSingleSlotTimerCleanup(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	gate := newTestGate(clock)

	gate.TryAcquire("ask", "g1:u1")
	clock.Advance(30 * time.Second)
	clock.Fire()

	gate.mu.Lock()
	remaining := len(gate.slots)
	gate.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("expected expired slot to be removed, %d remain", remaining)
	}
}

func TestFallbackWindow(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	gate := newTestGate(clock)

	if result := gate.TryAcquire("help", "g1:u1"); !result.Allowed {
		t.Fatalf("first acquire should be allowed")
	}
	result := gate.TryAcquire("help", "g1:u1")
	if result.Allowed {
		t.Fatalf("unlisted scope should fall back to the default window")
	}
	if result.RetryAfter != 3.0 {
		t.Fatalf("expected 3.0s retry, got %.1f", result.RetryAfter)
	}
}

func TestCountingScope(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	gate := newTestGate(clock)

	for i := 0; i < 5; i++ {
		if result := gate.TryAcquire("analyze", "g1:u1"); !result.Allowed {
			t.Fatalf("acquire %d should be allowed", i+1)
		}
	}
	result := gate.TryAcquire("analyze", "g1:u1")
	if result.Allowed {
		t.Fatalf("sixth acquire within the window should be denied")
	}
	if result.RetryAfter != 60.0 {
		t.Fatalf("expected 60.0s retry, got %.1f", result.RetryAfter)
	}

	if result := gate.TryAcquire("analyze", "g1:u2"); !result.Allowed {
		t.Fatalf("counting limits are per subject")
	}
}

func TestCountingRetryAfterReflectsElapsed(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	gate := newTestGate(clock)

	for i := 0; i < 5; i++ {
		if result := gate.TryAcquire("analyze", "g1:u1"); !result.Allowed {
			t.Fatalf("acquire %d should be allowed", i+1)
		}
	}

	clock.Advance(55 * time.Second)
	result := gate.TryAcquire("analyze", "g1:u1")
	if result.Allowed {
		t.Fatalf("window is still full at 55s")
	}
	if result.RetryAfter != 5.0 {
		t.Fatalf("expected 5.0s retry with 5s left in the window, got %.1f", result.RetryAfter)
	}
}

func TestCountingRetryAfterTracksOldestGrant(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	gate := newTestGate(clock)

	for i := 0; i < 3; i++ {
		gate.TryAcquire("analyze", "g1:u1")
	}
	clock.Advance(20 * time.Second)
	for i := 0; i < 2; i++ {
		gate.TryAcquire("analyze", "g1:u1")
	}

	clock.Advance(10 * time.Second)
	result := gate.TryAcquire("analyze", "g1:u1")
	if result.Allowed {
		t.Fatalf("window is still full at 30s")
	}
	if result.RetryAfter != 30.0 {
		t.Fatalf("the first grant frees its slot in 30s, got %.1f", result.RetryAfter)
	}
}

func TestCountingIdleEviction(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	gate := newTestGate(clock)

	gate.TryAcquire("analyze", "g1:u1")
	clock.Advance(60 * time.Second)
	clock.Fire()

	gate.mu.Lock()
	remaining := len(gate.counters)
	gate.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("expected idle counter to be removed, %d remain", remaining)
	}
}

func TestCountingEvictionReArmsWhileActive(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	gate := newTestGate(clock)

	gate.TryAcquire("analyze", "g1:u1")
	clock.Advance(30 * time.Second)
	gate.TryAcquire("analyze", "g1:u1")

	clock.Advance(30 * time.Second)
	clock.Fire()
	gate.mu.Lock()
	remaining := len(gate.counters)
	gate.mu.Unlock()
	if remaining != 1 {
		t.Fatalf("a counter used 30s ago must survive the sweep, %d remain", remaining)
	}

	clock.Advance(60 * time.Second)
	clock.Fire()
	gate.mu.Lock()
	remaining = len(gate.counters)
	gate.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("expected idle counter to be removed after re-arm, %d remain", remaining)
	}
}

func TestRoundTenth(t *testing.T) {
	if got := roundTenth(25.04); got != 25.0 {
		t.Fatalf("got %v", got)
	}
	if got := roundTenth(25.06); got != 25.1 {
		t.Fatalf("got %v", got)
	}
}
