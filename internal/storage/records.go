package storage

import (
	"context"
	"database/sql"
	"time"
)

// WarnRecord is append-only: warns are never mutated or deleted.
type WarnRecord struct {
	ID        int64
	GuildID   string
	UserID    string
	Username  string
	Reason    string
	WarnedBy  string
	CreatedAt time.Time
}

type MuteRecord struct {
	ID              int64
	GuildID         string
	UserID          string
	Username        string
	MutedBy         string
	Reason          string
	DurationMinutes int
	MutedAt         time.Time
	ExpiresAt       *time.Time
	UnmutedAt       *time.Time
	Expired         bool
}

type MemberEvent struct {
	GuildID    string
	UserID     string
	Username   string
	ServerName string
	CreatedAt  time.Time
}

func (s *Store) AddWarn(ctx context.Context, warn WarnRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_warns (guild_id, user_id, username, reason, warned_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, warn.GuildID, warn.UserID, warn.Username, warn.Reason, warn.WarnedBy, warn.CreatedAt.Unix())
	return err
}

func (s *Store) ListWarns(ctx context.Context, guildID, userID string) ([]WarnRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, user_id, username, reason, warned_by, created_at
		FROM user_warns
		WHERE guild_id = ? AND user_id = ?
		ORDER BY created_at DESC
	`, guildID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warns []WarnRecord
	for rows.Next() {
		var warn WarnRecord
		var created int64
		if err := rows.Scan(&warn.ID, &warn.GuildID, &warn.UserID, &warn.Username, &warn.Reason, &warn.WarnedBy, &created); err != nil {
			return nil, err
		}
		warn.CreatedAt = time.Unix(created, 0)
		warns = append(warns, warn)
	}
	return warns, rows.Err()
}

func (s *Store) AddMute(ctx context.Context, mute MuteRecord) (int64, error) {
	var expiresAt any
	if mute.ExpiresAt != nil {
		expiresAt = mute.ExpiresAt.Unix()
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO user_mutes (guild_id, user_id, username, muted_by, reason, duration_minutes, muted_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, mute.GuildID, mute.UserID, mute.Username, mute.MutedBy, mute.Reason, mute.DurationMinutes, mute.MutedAt.Unix(), expiresAt)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ExpireLatestMute marks the most recent unexpired mute for the user as
// expired. Returns false when no matching record exists.
func (s *Store) ExpireLatestMute(ctx context.Context, guildID, userID string, unmutedAt time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE user_mutes SET expired = 1, unmuted_at = ?
		WHERE id = (
			SELECT id FROM user_mutes
			WHERE guild_id = ? AND user_id = ? AND expired = 0
			ORDER BY muted_at DESC, id DESC LIMIT 1
		)
	`, unmutedAt.Unix(), guildID, userID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListDueMutes returns unexpired timed mutes with expires_at at or before
// the cutoff. Used by the unmute scheduler on startup.
func (s *Store) ListDueMutes(ctx context.Context, cutoff time.Time) ([]MuteRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, user_id, username, muted_by, reason, duration_minutes, muted_at, expires_at
		FROM user_mutes
		WHERE expired = 0 AND expires_at IS NOT NULL AND expires_at <= ?
		ORDER BY expires_at ASC
	`, cutoff.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMutes(rows)
}

// ListPendingMutes returns unexpired timed mutes expiring after the cutoff,
// so their unmute timers can be re-armed after a restart.
func (s *Store) ListPendingMutes(ctx context.Context, cutoff time.Time) ([]MuteRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, user_id, username, muted_by, reason, duration_minutes, muted_at, expires_at
		FROM user_mutes
		WHERE expired = 0 AND expires_at IS NOT NULL AND expires_at > ?
		ORDER BY expires_at ASC
	`, cutoff.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMutes(rows)
}

func scanMutes(rows *sql.Rows) ([]MuteRecord, error) {
	var mutes []MuteRecord
	for rows.Next() {
		var mute MuteRecord
		var mutedAt int64
		var expiresAt sql.NullInt64
		if err := rows.Scan(&mute.ID, &mute.GuildID, &mute.UserID, &mute.Username, &mute.MutedBy, &mute.Reason, &mute.DurationMinutes, &mutedAt, &expiresAt); err != nil {
			return nil, err
		}
		mute.MutedAt = time.Unix(mutedAt, 0)
		if expiresAt.Valid {
			value := time.Unix(expiresAt.Int64, 0)
			mute.ExpiresAt = &value
		}
		mutes = append(mutes, mute)
	}
	return mutes, rows.Err()
}

func (s *Store) GetLatestMute(ctx context.Context, guildID, userID string) (MuteRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, guild_id, user_id, username, muted_by, reason, duration_minutes, muted_at, expires_at, unmuted_at, expired
		FROM user_mutes
		WHERE guild_id = ? AND user_id = ?
		ORDER BY muted_at DESC, id DESC LIMIT 1
	`, guildID, userID)

	var mute MuteRecord
	var mutedAt int64
	var expiresAt, unmutedAt sql.NullInt64
	var expired int
	err := row.Scan(&mute.ID, &mute.GuildID, &mute.UserID, &mute.Username, &mute.MutedBy, &mute.Reason, &mute.DurationMinutes, &mutedAt, &expiresAt, &unmutedAt, &expired)
	if err != nil {
		if err == sql.ErrNoRows {
			return MuteRecord{}, false, nil
		}
		return MuteRecord{}, false, err
	}
	mute.MutedAt = time.Unix(mutedAt, 0)
	if expiresAt.Valid {
		value := time.Unix(expiresAt.Int64, 0)
		mute.ExpiresAt = &value
	}
	if unmutedAt.Valid {
		value := time.Unix(unmutedAt.Int64, 0)
		mute.UnmutedAt = &value
	}
	mute.Expired = expired == 1
	return mute, true, nil
}

func (s *Store) AddMemberJoin(ctx context.Context, event MemberEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO member_joins (guild_id, user_id, username, server_name, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, event.GuildID, event.UserID, event.Username, event.ServerName, event.CreatedAt.Unix())
	return err
}

func (s *Store) AddMemberLeave(ctx context.Context, event MemberEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO member_leaves (guild_id, user_id, username, created_at)
		VALUES (?, ?, ?, ?)
	`, event.GuildID, event.UserID, event.Username, event.CreatedAt.Unix())
	return err
}
