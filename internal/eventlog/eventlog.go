// Package eventlog persists moderation and member events for reporting.
package eventlog

import (
	"context"
	"time"

	"frostmod/internal/storage"

	"go.uber.org/zap"
)

// Event kinds.
const (
	KindMessageFiltered = "message_filtered"
	KindUserWarned      = "user_warned"
	KindUserMuted       = "user_muted"
	KindUserUnmuted     = "user_unmuted"
	KindMemberJoined    = "member_joined"
	KindMemberLeft      = "member_left"
)

type Entry struct {
	GuildID   string
	UserID    string
	Username  string
	ChannelID string
	Kind      string
	Detail    string
	CreatedAt time.Time
}

type Logger struct {
	store  *storage.Store
	logger *zap.Logger
}

func New(store *storage.Store, logger *zap.Logger) *Logger {
	return &Logger{store: store, logger: logger}
}

// Log persists the entry, best-effort: a failed write is logged and
// swallowed so event recording never blocks moderation.
func (l *Logger) Log(ctx context.Context, entry Entry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if l.store != nil {
		err := l.store.AddEventLog(ctx, storage.EventLog{
			GuildID:   entry.GuildID,
			UserID:    entry.UserID,
			Kind:      entry.Kind,
			Detail:    entry.Detail,
			CreatedAt: entry.CreatedAt,
		})
		if err != nil {
			l.logger.Warn("event log write failed", zap.Error(err))
		}
	}
	l.logger.Info("event",
		zap.String("guild_id", entry.GuildID),
		zap.String("user_id", entry.UserID),
		zap.String("kind", entry.Kind),
		zap.String("detail", entry.Detail))
}

// Report aggregates event counts per kind since the given time.
func (l *Logger) Report(ctx context.Context, guildID string, since time.Time) (map[string]int, error) {
	return l.store.CountEventsSince(ctx, guildID, since)
}
