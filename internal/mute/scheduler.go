// Package mute issues mutes through the muted role and schedules their
// expiry. Timed mutes persist their expiry, so pending unmutes survive a
// restart via Rescan.
package mute

import (
	"context"
	"fmt"
	"sync"
	"time"

	"frostmod/internal/eventlog"
	"frostmod/internal/moderation"
	"frostmod/internal/storage"

	"go.uber.org/zap"
)

// Roles is the member/role surface of the gateway.
type Roles interface {
	MemberExists(guildID, userID string) bool
	MemberHasRole(guildID, userID, roleID string) (bool, error)
	AddRole(guildID, userID, roleID string) error
	RemoveRole(guildID, userID, roleID string) error
}

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

// Request is a moderator-initiated mute. DurationMinutes 0 means permanent.
type Request struct {
	GuildID         string
	TargetID        string
	TargetTag       string
	MutedBy         string
	Reason          string
	DurationMinutes int
	MutedRoleID     string
}

type Scheduler struct {
	store  *storage.Store
	roles  Roles
	events *eventlog.Logger
	clock  Clock
	logger *zap.Logger

	mu     sync.Mutex
	timers map[int64]Timer
}

func NewScheduler(store *storage.Store, roles Roles, events *eventlog.Logger, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		store:  store,
		roles:  roles,
		events: events,
		clock:  realClock{},
		logger: logger,
		timers: make(map[int64]Timer),
	}
}

func (s *Scheduler) WithClock(clock Clock) {
	s.clock = clock
}

// Mute validates the request, assigns the muted role, and persists the
// record. The record is written only after the role assignment succeeds.
func (s *Scheduler) Mute(ctx context.Context, req Request) error {
	if req.MutedRoleID == "" {
		return fmt.Errorf("no muted role configured: %w", moderation.ErrConfigMissing)
	}
	if !s.roles.MemberExists(req.GuildID, req.TargetID) {
		return fmt.Errorf("member %s: %w", req.TargetID, moderation.ErrTargetNotFound)
	}
	held, err := s.roles.MemberHasRole(req.GuildID, req.TargetID, req.MutedRoleID)
	if err != nil {
		return fmt.Errorf("role check: %w", moderation.ErrOperationFailed)
	}
	if held {
		return moderation.ErrAlreadyMuted
	}

	if err := s.roles.AddRole(req.GuildID, req.TargetID, req.MutedRoleID); err != nil {
		return fmt.Errorf("role assignment: %w", moderation.ErrOperationFailed)
	}

	now := s.clock.Now()
	record := storage.MuteRecord{
		GuildID:         req.GuildID,
		UserID:          req.TargetID,
		Username:        req.TargetTag,
		MutedBy:         req.MutedBy,
		Reason:          req.Reason,
		DurationMinutes: req.DurationMinutes,
		MutedAt:         now,
	}
	if req.DurationMinutes > 0 {
		expiresAt := now.Add(time.Duration(req.DurationMinutes) * time.Minute)
		record.ExpiresAt = &expiresAt
	}

	id, err := s.store.AddMute(ctx, record)
	if err != nil {
		// The role is on; the record is the part that failed. Surface it so
		// the moderator knows the mute is untracked.
		return fmt.Errorf("mute record write: %w", err)
	}

	s.events.Log(ctx, eventlog.Entry{
		GuildID:   req.GuildID,
		UserID:    req.TargetID,
		Username:  req.TargetTag,
		Kind:      eventlog.KindUserMuted,
		Detail:    fmt.Sprintf("by=%s reason=%q minutes=%d", req.MutedBy, req.Reason, req.DurationMinutes),
		CreatedAt: now,
	})

	if record.ExpiresAt != nil {
		s.schedule(id, req.GuildID, req.TargetID, req.MutedRoleID, record.ExpiresAt.Sub(now))
	}
	return nil
}

func (s *Scheduler) schedule(id int64, guildID, userID, roleID string, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing := s.timers[id]; existing != nil {
		existing.Stop()
	}
	s.timers[id] = s.clock.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		s.expire(context.Background(), guildID, userID, roleID)
	})
}

// expire removes the muted role if it is still held and marks the latest
// record expired. The liveness check avoids clobbering a manual unmute or a
// newer re-mute.
func (s *Scheduler) expire(ctx context.Context, guildID, userID, roleID string) {
	held, err := s.roles.MemberHasRole(guildID, userID, roleID)
	if err != nil {
		s.logger.Warn("unmute role check failed", zap.String("guild_id", guildID), zap.String("user_id", userID), zap.Error(err))
		return
	}
	if held {
		if err := s.roles.RemoveRole(guildID, userID, roleID); err != nil {
			s.logger.Warn("unmute role removal failed", zap.String("guild_id", guildID), zap.String("user_id", userID), zap.Error(err))
			return
		}
	}

	now := s.clock.Now()
	updated, err := s.store.ExpireLatestMute(ctx, guildID, userID, now)
	if err != nil {
		s.logger.Warn("mute expiry write failed", zap.String("guild_id", guildID), zap.String("user_id", userID), zap.Error(err))
		return
	}
	if !updated {
		return
	}
	s.events.Log(ctx, eventlog.Entry{
		GuildID:   guildID,
		UserID:    userID,
		Kind:      eventlog.KindUserUnmuted,
		Detail:    "mute duration elapsed",
		CreatedAt: now,
	})
}

// Rescan re-arms timers for pending mutes and fires overdue ones. Called
// once on startup, after the gateway session is open. Needs the muted role
// per guild, resolved through the lookup.
func (s *Scheduler) Rescan(ctx context.Context, mutedRole func(ctx context.Context, guildID string) string) error {
	now := s.clock.Now()

	due, err := s.store.ListDueMutes(ctx, now)
	if err != nil {
		return err
	}
	for _, record := range due {
		roleID := mutedRole(ctx, record.GuildID)
		if roleID == "" {
			continue
		}
		s.expire(ctx, record.GuildID, record.UserID, roleID)
	}

	pending, err := s.store.ListPendingMutes(ctx, now)
	if err != nil {
		return err
	}
	for _, record := range pending {
		roleID := mutedRole(ctx, record.GuildID)
		if roleID == "" || record.ExpiresAt == nil {
			continue
		}
		s.schedule(record.ID, record.GuildID, record.UserID, roleID, record.ExpiresAt.Sub(now))
	}
	return nil
}

// Stop cancels all pending unmute timers. The persisted expiries make them
// recoverable on the next start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
