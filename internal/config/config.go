// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultAPIEndpoint = "https://api.telegram.org/bot%s/%s"

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"` // public forum URL, used for webhook and post links
}

type SiteConfig struct {
	Title  string `yaml:"title"`
	Locale string `yaml:"locale"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port      int    `yaml:"port"`
	JWTSecret string `yaml:"jwt_secret"`
}

type SecurityConfig struct {
	// EncryptionKey seals the bot token and webhook secret in Redis when set.
	EncryptionKey string `yaml:"encryption_key"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type WorkerConfig struct {
	Count int `yaml:"count"`
	Queue int `yaml:"queue"`
}

// TelegramDefaults seed the runtime settings the first time the service starts.
type TelegramDefaults struct {
	Enabled        bool     `yaml:"enabled"`
	AccessToken    string   `yaml:"access_token"`
	EnableAllTypes bool     `yaml:"enable_all_notification_types"`
	EnabledTypes   []string `yaml:"enabled_notification_types"`
}

type TelegramConfig struct {
	APIEndpoint string `yaml:"api_endpoint"`
	// LinkRetention bounds how long message links are kept. Zero keeps them forever.
	LinkRetention time.Duration    `yaml:"link_retention"`
	Defaults      TelegramDefaults `yaml:"defaults"`
}

type ForumConfig struct {
	MinPostLength    int           `yaml:"min_post_length"`
	MaxPostLength    int           `yaml:"max_post_length"`
	UndoActionWindow time.Duration `yaml:"undo_action_window"` // 0: no limit
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Site     SiteConfig     `yaml:"site"`
	Log      LogConfig      `yaml:"log"`
	Admin    AdminConfig    `yaml:"admin"`
	Security SecurityConfig `yaml:"security"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Workers  WorkerConfig   `yaml:"workers"`
	Telegram TelegramConfig `yaml:"telegram"`
	Forum    ForumConfig    `yaml:"forum"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(configPath string, dev bool) (*Config, error) {
	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

// Parse decodes YAML bytes, applies defaults and validates the result.
func Parse(b []byte, dev bool) (*Config, error) {
	// Defaults that an explicit zero may override are set before decoding.
	cfg := Config{Forum: ForumConfig{UndoActionWindow: 10 * time.Minute}}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	cfg.Server.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Server.BaseURL), "/")
	if cfg.Site.Locale == "" {
		cfg.Site.Locale = "en"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Workers.Count <= 0 {
		cfg.Workers.Count = 4
	}
	if cfg.Workers.Queue <= 0 {
		cfg.Workers.Queue = cfg.Workers.Count * 64
	}
	if cfg.Telegram.APIEndpoint == "" {
		cfg.Telegram.APIEndpoint = DefaultAPIEndpoint
	}
	if cfg.Telegram.LinkRetention < 0 {
		cfg.Telegram.LinkRetention = 0
	}
	if cfg.Forum.MinPostLength <= 0 {
		cfg.Forum.MinPostLength = 20
	}
	if cfg.Forum.MaxPostLength <= 0 {
		cfg.Forum.MaxPostLength = 32000
	}
	// 0 disables the undo window.
	if cfg.Forum.UndoActionWindow < 0 {
		cfg.Forum.UndoActionWindow = 0
	}

	// Minimal validation
	if cfg.Server.BaseURL == "" {
		return nil, errors.New("server.base_url is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Admin.JWTSecret == "" && !dev {
		return nil, errors.New("admin.jwt_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
