package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	db *sql.DB
}

// GuildSettings is the single per-guild policy row. One row per guild,
// upsert semantics, last writer wins.
type GuildSettings struct {
	GuildID          string
	FilterLevel      string
	IgnoredChannelID string
	LogsChannelID    string
	MutedRoleID      string
	WelcomeChannelID string
	WelcomeMessage   string
	AutoRoleID       string
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *Store) Migrate() error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := migrations.ReadFile(path.Join("migrations", file))
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			if isIgnorableMigrationError(err) {
				continue
			}
			return fmt.Errorf("migration %s failed: %w", file, err)
		}
	}
	return nil
}

// GetGuildSettings returns the settings row for guildID. The second return
// value is false when the guild has never been configured.
func (s *Store) GetGuildSettings(ctx context.Context, guildID string) (GuildSettings, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT filter_level, ignored_channel_id, logs_channel_id, muted_role_id,
		welcome_channel_id, welcome_message, auto_role_id
		FROM server_settings WHERE guild_id = ?`, guildID)

	result := GuildSettings{GuildID: guildID}
	err := row.Scan(
		&result.FilterLevel,
		&result.IgnoredChannelID,
		&result.LogsChannelID,
		&result.MutedRoleID,
		&result.WelcomeChannelID,
		&result.WelcomeMessage,
		&result.AutoRoleID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GuildSettings{}, false, nil
		}
		return GuildSettings{}, false, err
	}
	return result, true, nil
}

func (s *Store) UpsertGuildSettings(ctx context.Context, settings GuildSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO server_settings (
			guild_id, filter_level, ignored_channel_id, logs_channel_id,
			muted_role_id, welcome_channel_id, welcome_message, auto_role_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET
			filter_level = excluded.filter_level,
			ignored_channel_id = excluded.ignored_channel_id,
			logs_channel_id = excluded.logs_channel_id,
			muted_role_id = excluded.muted_role_id,
			welcome_channel_id = excluded.welcome_channel_id,
			welcome_message = excluded.welcome_message,
			auto_role_id = excluded.auto_role_id
	`,
		settings.GuildID,
		settings.FilterLevel,
		settings.IgnoredChannelID,
		settings.LogsChannelID,
		settings.MutedRoleID,
		settings.WelcomeChannelID,
		settings.WelcomeMessage,
		settings.AutoRoleID,
	)
	return err
}

func isIgnorableMigrationError(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "duplicate column name") || strings.Contains(message, "already exists")
}
