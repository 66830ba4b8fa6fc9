package storage

import (
	"context"
	"time"
)

type EventLog struct {
	ID        int64
	GuildID   string
	UserID    string
	Kind      string
	Detail    string
	CreatedAt time.Time
}

func (s *Store) AddEventLog(ctx context.Context, event EventLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event_logs (guild_id, user_id, kind, detail, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, event.GuildID, event.UserID, event.Kind, event.Detail, event.CreatedAt.Unix())
	return err
}

func (s *Store) CountEventsSince(ctx context.Context, guildID string, since time.Time) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*)
		FROM event_logs
		WHERE guild_id = ? AND created_at >= ?
		GROUP BY kind
	`, guildID, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		counts[kind] = count
	}
	return counts, rows.Err()
}
