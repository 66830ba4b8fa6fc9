// Package cooldown rate-limits expensive per-user operations. Two limiter
// disciplines: single-slot (one action per window, reject until expiry) and
// counting (up to N actions per window).
package cooldown

import (
	"math"
	"sync"
	"time"

	"github.com/RussellLuo/slidingwindow"
)

type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type realClock struct{}

type realTimer struct{ t *time.Timer }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{t: time.AfterFunc(d, f)}
}

func (t realTimer) Stop() bool { return t.t.Stop() }

// Window configures one scope. Max 0 or 1 selects the single-slot
// discipline; Max > 1 selects counting.
type Window struct {
	Duration time.Duration
	Max      int
}

type Result struct {
	Allowed bool
	// RetryAfter is the remaining wait in seconds, rounded to one decimal
	// place for user display. Zero when allowed.
	RetryAfter float64
}

type slot struct {
	expiresAt time.Time
	timer     Timer
}

// counter pairs the sliding-window limiter with the grant times of the
// current window, which the limiter does not expose but the retry-after
// calculation needs.
type counter struct {
	limiter  *slidingwindow.Limiter
	stop     slidingwindow.StopFunc
	grants   []time.Time
	lastSeen time.Time
	timer    Timer
}

// Gate tracks cooldown entries keyed by (scope, subject). Both disciplines
// self-clear on a timer so the maps do not grow without bound.
type Gate struct {
	mu       sync.Mutex
	clock    Clock
	windows  map[string]Window
	fallback Window
	slots    map[string]*slot
	counters map[string]*counter
}

func NewGate(windows map[string]Window, fallback Window) *Gate {
	return &Gate{
		clock:    realClock{},
		windows:  windows,
		fallback: fallback,
		slots:    make(map[string]*slot),
		counters: make(map[string]*counter),
	}
}

func (g *Gate) WithClock(clock Clock) {
	g.clock = clock
}

func (g *Gate) TryAcquire(scope, subjectID string) Result {
	window, ok := g.windows[scope]
	if !ok {
		window = g.fallback
	}
	if window.Duration <= 0 {
		return Result{Allowed: true}
	}
	if window.Max > 1 {
		return g.acquireCounting(scope, subjectID, window)
	}
	return g.acquireSlot(scope, subjectID, window.Duration)
}

func (g *Gate) acquireSlot(scope, subjectID string, duration time.Duration) Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := scope + "|" + subjectID
	now := g.clock.Now()

	if entry := g.slots[key]; entry != nil && entry.expiresAt.After(now) {
		return Result{RetryAfter: roundTenth(entry.expiresAt.Sub(now).Seconds())}
	}

	g.slots[key] = &slot{
		expiresAt: now.Add(duration),
		timer: g.clock.AfterFunc(duration, func() {
			g.mu.Lock()
			delete(g.slots, key)
			g.mu.Unlock()
		}),
	}
	return Result{Allowed: true}
}

func (g *Gate) acquireCounting(scope, subjectID string, window Window) Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := scope + "|" + subjectID
	now := g.clock.Now()
	entry := g.counters[key]
	if entry == nil {
		limiter, stop := slidingwindow.NewLimiter(window.Duration, int64(window.Max), func() (slidingwindow.Window, slidingwindow.StopFunc) {
			return slidingwindow.NewLocalWindow()
		})
		entry = &counter{limiter: limiter, stop: stop}
		g.counters[key] = entry
		g.scheduleCounterEviction(key, entry, window.Duration)
	}
	entry.lastSeen = now

	if entry.limiter.Allow() {
		entry.grants = append(entry.grants, now)
		if len(entry.grants) > window.Max {
			entry.grants = entry.grants[len(entry.grants)-window.Max:]
		}
		return Result{Allowed: true}
	}

	// Denied with a full window: the next slot frees when the oldest of the
	// last Max grants leaves it.
	retry := window.Duration.Seconds()
	if len(entry.grants) > 0 {
		if remaining := entry.grants[0].Add(window.Duration).Sub(now); remaining > 0 {
			retry = remaining.Seconds()
		}
	}
	return Result{RetryAfter: roundTenth(retry)}
}

// scheduleCounterEviction drops a counting entry once it has sat idle for a
// full window, re-arming while it is still in use. Callers hold g.mu.
func (g *Gate) scheduleCounterEviction(key string, entry *counter, duration time.Duration) {
	entry.timer = g.clock.AfterFunc(duration, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.counters[key] != entry {
			return
		}
		if idle := g.clock.Now().Sub(entry.lastSeen); idle < duration {
			g.scheduleCounterEviction(key, entry, duration)
			return
		}
		entry.stop()
		delete(g.counters, key)
	})
}

func roundTenth(seconds float64) float64 {
	return math.Round(seconds*10) / 10
}
