package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken     string           `yaml:"discord_token"`
	DatabasePath     string           `yaml:"database_path"`
	LogLevel         string           `yaml:"log_level"`
	HuggingFaceToken string           `yaml:"huggingface_token"`
	GoogleAPIKey     string           `yaml:"google_api_key"`
	GoogleCSEID      string           `yaml:"google_cse_id"`
	Health           HealthConfig     `yaml:"health"`
	Settings         SettingsConfig   `yaml:"settings"`
	Cooldowns        CooldownConfig   `yaml:"cooldowns"`
	Moderation       ModerationConfig `yaml:"moderation"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type SettingsConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

type CooldownConfig struct {
	AskSeconds     int `yaml:"ask_seconds"`
	SearchSeconds  int `yaml:"search_seconds"`
	WarnSeconds    int `yaml:"warn_seconds"`
	FilterSeconds  int `yaml:"filter_seconds"`
	AnalyzeSeconds int `yaml:"analyze_seconds"`
	AnalyzeMax     int `yaml:"analyze_max"`
	DefaultSeconds int `yaml:"default_seconds"`
}

type ModerationConfig struct {
	AutoWarnScore         float64 `yaml:"auto_warn_score"`
	NoticeLifetimeSeconds int     `yaml:"notice_lifetime_seconds"`
}

func DefaultConfig() Config {
	return Config{
		DatabasePath: "/data/frostmod.db",
		LogLevel:     "info",
		Health:       HealthConfig{Enabled: false, Addr: ":8080"},
		Settings:     SettingsConfig{CacheTTLSeconds: 300},
		Cooldowns: CooldownConfig{
			AskSeconds:     30,
			SearchSeconds:  30,
			WarnSeconds:    5,
			FilterSeconds:  5,
			AnalyzeSeconds: 60,
			AnalyzeMax:     5,
			DefaultSeconds: 3,
		},
		Moderation: ModerationConfig{
			AutoWarnScore:         0.9,
			NoticeLifetimeSeconds: 5,
		},
	}
}

func Load() (Config, error) {
	// Best effort; a missing .env is the normal case in production.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.DatabasePath = envString("DATABASE_PATH", cfg.DatabasePath)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.HuggingFaceToken = envString("HUGGINGFACE_TOKEN", cfg.HuggingFaceToken)
	cfg.GoogleAPIKey = envString("GOOGLE_API_KEY", cfg.GoogleAPIKey)
	cfg.GoogleCSEID = envString("GOOGLE_CSE_ID", cfg.GoogleCSEID)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
	cfg.Settings.CacheTTLSeconds = envInt("SETTINGS_CACHE_TTL_SECONDS", cfg.Settings.CacheTTLSeconds)
	cfg.Cooldowns.AskSeconds = envInt("COOLDOWN_ASK_SECONDS", cfg.Cooldowns.AskSeconds)
	cfg.Cooldowns.SearchSeconds = envInt("COOLDOWN_SEARCH_SECONDS", cfg.Cooldowns.SearchSeconds)
	cfg.Cooldowns.WarnSeconds = envInt("COOLDOWN_WARN_SECONDS", cfg.Cooldowns.WarnSeconds)
	cfg.Cooldowns.FilterSeconds = envInt("COOLDOWN_FILTER_SECONDS", cfg.Cooldowns.FilterSeconds)
	cfg.Cooldowns.AnalyzeSeconds = envInt("COOLDOWN_ANALYZE_SECONDS", cfg.Cooldowns.AnalyzeSeconds)
	cfg.Cooldowns.AnalyzeMax = envInt("COOLDOWN_ANALYZE_MAX", cfg.Cooldowns.AnalyzeMax)
	cfg.Cooldowns.DefaultSeconds = envInt("COOLDOWN_DEFAULT_SECONDS", cfg.Cooldowns.DefaultSeconds)
	cfg.Moderation.AutoWarnScore = envFloat("MODERATION_AUTO_WARN_SCORE", cfg.Moderation.AutoWarnScore)
	cfg.Moderation.NoticeLifetimeSeconds = envInt("MODERATION_NOTICE_LIFETIME_SECONDS", cfg.Moderation.NoticeLifetimeSeconds)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}
