package mute

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"frostmod/internal/eventlog"
	"frostmod/internal/moderation"
	"frostmod/internal/storage"

	"go.uber.org/zap"
)

type fakeRoles struct {
	members map[string]bool
	held    map[string]bool
	addErr  error
	removed []string
}

func newFakeRoles() *fakeRoles {
	return &fakeRoles{members: make(map[string]bool), held: make(map[string]bool)}
}

func (f *fakeRoles) MemberExists(guildID, userID string) bool {
	return f.members[guildID+":"+userID]
}

func (f *fakeRoles) MemberHasRole(guildID, userID, roleID string) (bool, error) {
	return f.held[guildID+":"+userID], nil
}

func (f *fakeRoles) AddRole(guildID, userID, roleID string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.held[guildID+":"+userID] = true
	return nil
}

func (f *fakeRoles) RemoveRole(guildID, userID, roleID string) error {
	f.held[guildID+":"+userID] = false
	f.removed = append(f.removed, guildID+":"+userID)
	return nil
}

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
	delays []time.Duration
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{fn: fn}
	f.timers = append(f.timers, t)
	f.delays = append(f.delays, d)
	return t
}

func (f *fakeClock) Fire() {
	f.mu.Lock()
	pending := append([]*fakeTimer{}, f.timers...)
	f.timers = nil
	f.delays = nil
	f.mu.Unlock()
	for _, timer := range pending {
		timer.fn()
	}
}

type schedulerFixture struct {
	scheduler *Scheduler
	store     *storage.Store
	roles     *fakeRoles
	clock     *fakeClock
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(store.Close)

	logger := zap.NewNop()
	roles := newFakeRoles()
	clock := &fakeClock{now: time.Unix(9000, 0)}

	scheduler := NewScheduler(store, roles, eventlog.New(store, logger), logger)
	scheduler.WithClock(clock)

	return &schedulerFixture{scheduler: scheduler, store: store, roles: roles, clock: clock}
}

func baseRequest() Request {
	return Request{
		GuildID:     "g1",
		TargetID:    "u1",
		TargetTag:   "alice",
		MutedBy:     "mod",
		Reason:      "spam",
		MutedRoleID: "r-muted",
	}
}

func TestMutePreconditions(t *testing.T) {
	fx := newSchedulerFixture(t)
	ctx := context.Background()

	noRole := baseRequest()
	noRole.MutedRoleID = ""
	if err := fx.scheduler.Mute(ctx, noRole); !errors.Is(err, moderation.ErrConfigMissing) {
		t.Fatalf("expected config missing, got %v", err)
	}

	if err := fx.scheduler.Mute(ctx, baseRequest()); !errors.Is(err, moderation.ErrTargetNotFound) {
		t.Fatalf("expected target not found, got %v", err)
	}

	fx.roles.members["g1:u1"] = true
	fx.roles.held["g1:u1"] = true
	if err := fx.scheduler.Mute(ctx, baseRequest()); !errors.Is(err, moderation.ErrAlreadyMuted) {
		t.Fatalf("expected already muted, got %v", err)
	}
}

func TestMuteRoleFailureWritesNoRecord(t *testing.T) {
	fx := newSchedulerFixture(t)
	ctx := context.Background()
	fx.roles.members["g1:u1"] = true
	fx.roles.addErr = errors.New("role hierarchy")

	if err := fx.scheduler.Mute(ctx, baseRequest()); !errors.Is(err, moderation.ErrOperationFailed) {
		t.Fatalf("expected operation failed, got %v", err)
	}
	if _, found, _ := fx.store.GetLatestMute(ctx, "g1", "u1"); found {
		t.Fatalf("no record may exist when the role was not applied")
	}
}

func TestMutePermanent(t *testing.T) {
	fx := newSchedulerFixture(t)
	ctx := context.Background()
	fx.roles.members["g1:u1"] = true

	if err := fx.scheduler.Mute(ctx, baseRequest()); err != nil {
		t.Fatalf("mute: %v", err)
	}
	if !fx.roles.held["g1:u1"] {
		t.Fatalf("role not applied")
	}

	record, found, err := fx.store.GetLatestMute(ctx, "g1", "u1")
	if err != nil || !found {
		t.Fatalf("get record: found=%t err=%v", found, err)
	}
	if record.ExpiresAt != nil {
		t.Fatalf("permanent mute must not carry an expiry")
	}
	if len(fx.clock.delays) != 0 {
		t.Fatalf("permanent mute must not arm a timer")
	}
}

func TestMuteTimedExpiry(t *testing.T) {
	fx := newSchedulerFixture(t)
	ctx := context.Background()
	fx.roles.members["g1:u1"] = true

	req := baseRequest()
	req.DurationMinutes = 10
	if err := fx.scheduler.Mute(ctx, req); err != nil {
		t.Fatalf("mute: %v", err)
	}
	if len(fx.clock.delays) != 1 || fx.clock.delays[0] != 10*time.Minute {
		t.Fatalf("expected a 10m timer, got %v", fx.clock.delays)
	}

	record, _, _ := fx.store.GetLatestMute(ctx, "g1", "u1")
	wantExpiry := fx.clock.now.Add(10 * time.Minute)
	if record.ExpiresAt == nil || !record.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expiry not persisted: %+v", record)
	}

	fx.clock.now = wantExpiry
	fx.clock.Fire()

	if fx.roles.held["g1:u1"] {
		t.Fatalf("role should be removed on expiry")
	}
	record, _, _ = fx.store.GetLatestMute(ctx, "g1", "u1")
	if !record.Expired || record.UnmutedAt == nil {
		t.Fatalf("record not closed: %+v", record)
	}

	counts, _ := fx.store.CountEventsSince(ctx, "g1", time.Unix(0, 0))
	if counts[eventlog.KindUserMuted] != 1 || counts[eventlog.KindUserUnmuted] != 1 {
		t.Fatalf("unexpected event counts %v", counts)
	}
}

func TestExpiryAfterManualUnmute(t *testing.T) {
	fx := newSchedulerFixture(t)
	ctx := context.Background()
	fx.roles.members["g1:u1"] = true

	req := baseRequest()
	req.DurationMinutes = 5
	if err := fx.scheduler.Mute(ctx, req); err != nil {
		t.Fatalf("mute: %v", err)
	}

	// A moderator removed the role by hand before the timer fired.
	fx.roles.held["g1:u1"] = false
	fx.clock.now = fx.clock.now.Add(5 * time.Minute)
	fx.clock.Fire()

	if len(fx.roles.removed) != 0 {
		t.Fatalf("no role removal expected, got %v", fx.roles.removed)
	}
	record, _, _ := fx.store.GetLatestMute(ctx, "g1", "u1")
	if !record.Expired {
		t.Fatalf("record should still be closed out")
	}
}

func TestRescan(t *testing.T) {
	fx := newSchedulerFixture(t)
	ctx := context.Background()
	now := fx.clock.now

	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	if _, err := fx.store.AddMute(ctx, storage.MuteRecord{GuildID: "g1", UserID: "overdue", MutedAt: now.Add(-time.Hour), DurationMinutes: 59, ExpiresAt: &past}); err != nil {
		t.Fatalf("seed overdue: %v", err)
	}
	if _, err := fx.store.AddMute(ctx, storage.MuteRecord{GuildID: "g1", UserID: "pending", MutedAt: now, DurationMinutes: 60, ExpiresAt: &future}); err != nil {
		t.Fatalf("seed pending: %v", err)
	}
	fx.roles.held["g1:overdue"] = true
	fx.roles.held["g1:pending"] = true

	lookup := func(ctx context.Context, guildID string) string { return "r-muted" }
	if err := fx.scheduler.Rescan(ctx, lookup); err != nil {
		t.Fatalf("rescan: %v", err)
	}

	if fx.roles.held["g1:overdue"] {
		t.Fatalf("overdue mute should be lifted immediately")
	}
	record, _, _ := fx.store.GetLatestMute(ctx, "g1", "overdue")
	if !record.Expired {
		t.Fatalf("overdue record not closed")
	}

	if !fx.roles.held["g1:pending"] {
		t.Fatalf("pending mute must stay in force")
	}
	if len(fx.clock.delays) != 1 || fx.clock.delays[0] != time.Hour {
		t.Fatalf("pending timer not re-armed: %v", fx.clock.delays)
	}

	fx.clock.now = future
	fx.clock.Fire()
	if fx.roles.held["g1:pending"] {
		t.Fatalf("re-armed timer should lift the mute")
	}
}

func TestStopCancelsTimers(t *testing.T) {
	fx := newSchedulerFixture(t)
	ctx := context.Background()
	fx.roles.members["g1:u1"] = true

	req := baseRequest()
	req.DurationMinutes = 10
	if err := fx.scheduler.Mute(ctx, req); err != nil {
		t.Fatalf("mute: %v", err)
	}

	fx.scheduler.Stop()
	fx.scheduler.mu.Lock()
	remaining := len(fx.scheduler.timers)
	fx.scheduler.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("timers not cleared, %d remain", remaining)
	}
}
