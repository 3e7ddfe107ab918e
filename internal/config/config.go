package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config keeps runtime settings for the planner.
type Config struct {
	DatabaseURL           string
	HTTPAddr              string
	TelegramToken         string
	TelegramChatID        int64
	PriorityCheckInterval time.Duration
	NotifyPriorityChanges bool
	DigestTime            string
	Timezone              string
	LogLevel              string
}

// Location resolves Timezone, falling back to the process's local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// TelegramEnabled reports whether Telegram delivery is configured.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

var envKeys = map[string]string{
	"database_url":            "DATABASE_URL",
	"http_addr":               "HTTP_ADDR",
	"telegram_token":          "TELEGRAM_TOKEN",
	"telegram_chat_id":        "TELEGRAM_CHAT_ID",
	"priority_check_interval": "PRIORITY_CHECK_INTERVAL",
	"notify_priority_changes": "NOTIFY_PRIORITY_CHANGES",
	"digest_time":             "DIGEST_TIME",
	"timezone":                "TIMEZONE",
	"log_level":               "LOG_LEVEL",
}

// Load reads configuration from an optional YAML file and environment
// variables with sane defaults. Environment variables win over the file.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("database_url", "activity_planner.db")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("priority_check_interval", "1h")
	v.SetDefault("notify_priority_changes", false)
	v.SetDefault("timezone", "Local")
	v.SetDefault("log_level", "info")

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		DatabaseURL:           strings.TrimSpace(v.GetString("database_url")),
		HTTPAddr:              strings.TrimSpace(v.GetString("http_addr")),
		TelegramToken:         strings.TrimSpace(v.GetString("telegram_token")),
		PriorityCheckInterval: parseInterval(strings.TrimSpace(v.GetString("priority_check_interval"))),
		NotifyPriorityChanges: v.GetBool("notify_priority_changes"),
		DigestTime:            strings.TrimSpace(v.GetString("digest_time")),
		Timezone:              strings.TrimSpace(v.GetString("timezone")),
		LogLevel:              strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
	}

	if raw := strings.TrimSpace(v.GetString("telegram_chat_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("telegram_chat_id %q: %w", raw, err)
		}
		cfg.TelegramChatID = id
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "activity_planner.db"
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return cfg, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}
	if _, err := cfg.Location(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// parseInterval accepts a Go duration ("90m") or a bare number of hours
// ("5"). Zero disables the periodic job.
func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
