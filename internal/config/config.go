package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"biblebot/internal/paging"
)

// DefaultPath is where the bot looks for its configuration.
var DefaultPath = filepath.Join(".biblebot", "config.json")

type Config struct {
	Display  DisplayConfig  `json:"display"`
	Discord  DiscordConfig  `json:"discord"`
	Search   SearchConfig   `json:"search"`
	Store    StoreConfig    `json:"store"`
	Audit    AuditConfig    `json:"audit"`
	Logging  LoggingConfig  `json:"logging"`
	Language LanguageConfig `json:"language"`
}

type DisplayConfig struct {
	BotName       string `json:"bot_name"`
	Version       string `json:"version"`
	IconURL       string `json:"icon_url"`
	Color         int    `json:"color"`
	CommandPrefix string `json:"command_prefix"`
}

type DiscordConfig struct {
	Enabled         bool     `json:"enabled"`
	Token           string   `json:"token,omitempty"`
	TokenEnv        string   `json:"token_env,omitempty"`
	AllowGuilds     []string `json:"allow_guilds,omitempty"`
	AllowChannels   []string `json:"allow_channels,omitempty"`
	AllowUsers      []string `json:"allow_users,omitempty"`
	RateLimitPerMin int      `json:"rate_limit_per_min,omitempty"`
	PageTimeoutSecs int      `json:"page_timeout_seconds,omitempty"`
}

type SearchConfig struct {
	DefaultVersion  string `json:"default_version"`
	BaseURL         string `json:"base_url"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
	CacheTTLSeconds int    `json:"cache_ttl_seconds"`
}

type StoreConfig struct {
	Path string `json:"path"`
}

type AuditConfig struct {
	Path string `json:"path"`
}

type LoggingConfig struct {
	Level string `json:"level"`
}

type LanguageConfig struct {
	Default string `json:"default"`
}

func Default() Config {
	return Config{
		Display: DisplayConfig{
			BotName:       "BibleBot",
			Version:       "v9.0.0",
			IconURL:       "https://i.imgur.com/hr4RXpy.png",
			Color:         303102,
			CommandPrefix: "+",
		},
		Discord: DiscordConfig{
			Enabled:         false,
			TokenEnv:        "DISCORD_BOT_TOKEN",
			RateLimitPerMin: 20,
			PageTimeoutSecs: 600,
		},
		Search: SearchConfig{
			DefaultVersion:  "RSV",
			BaseURL:         "https://www.biblegateway.com",
			TimeoutSeconds:  15,
			CacheTTLSeconds: 600,
		},
		Store: StoreConfig{
			Path: filepath.Join(".biblebot", "biblebot.db"),
		},
		Audit: AuditConfig{
			Path: filepath.Join(".biblebot", "interactions.jsonl"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Language: LanguageConfig{
			Default: "english",
		},
	}
}

func (c *Config) ApplyDefaults() {
	d := Default()
	if c.Display.BotName == "" {
		c.Display.BotName = d.Display.BotName
	}
	if c.Display.Version == "" {
		c.Display.Version = d.Display.Version
	}
	if c.Display.IconURL == "" {
		c.Display.IconURL = d.Display.IconURL
	}
	if c.Display.Color == 0 {
		c.Display.Color = d.Display.Color
	}
	if c.Display.CommandPrefix == "" {
		c.Display.CommandPrefix = d.Display.CommandPrefix
	}
	if c.Discord.TokenEnv == "" {
		c.Discord.TokenEnv = d.Discord.TokenEnv
	}
	if c.Discord.RateLimitPerMin == 0 {
		c.Discord.RateLimitPerMin = d.Discord.RateLimitPerMin
	}
	if c.Discord.PageTimeoutSecs == 0 {
		c.Discord.PageTimeoutSecs = d.Discord.PageTimeoutSecs
	}
	if c.Search.DefaultVersion == "" {
		c.Search.DefaultVersion = d.Search.DefaultVersion
	}
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = d.Search.BaseURL
	}
	if c.Search.TimeoutSeconds == 0 {
		c.Search.TimeoutSeconds = d.Search.TimeoutSeconds
	}
	if c.Search.CacheTTLSeconds == 0 {
		c.Search.CacheTTLSeconds = d.Search.CacheTTLSeconds
	}
	if c.Store.Path == "" {
		c.Store.Path = d.Store.Path
	}
	if c.Audit.Path == "" {
		c.Audit.Path = d.Audit.Path
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Language.Default == "" {
		c.Language.Default = d.Language.Default
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Display.BotName) == "" {
		return errors.New("display.bot_name is required")
	}
	if c.Display.Color < 0 || c.Display.Color > 0xFFFFFF {
		return fmt.Errorf("display.color out of range: %d", c.Display.Color)
	}
	if strings.ContainsAny(c.Display.CommandPrefix, " \t\n") {
		return fmt.Errorf("display.command_prefix cannot contain whitespace: %q", c.Display.CommandPrefix)
	}
	if c.Display.IconURL != "" {
		if _, err := url.ParseRequestURI(c.Display.IconURL); err != nil {
			return fmt.Errorf("display.icon_url: %w", err)
		}
	}
	if c.Discord.RateLimitPerMin < 1 {
		return errors.New("discord.rate_limit_per_min must be >= 1")
	}
	if c.Discord.PageTimeoutSecs < 1 {
		return errors.New("discord.page_timeout_seconds must be >= 1")
	}
	for _, id := range append(append(append([]string{}, c.Discord.AllowGuilds...), c.Discord.AllowChannels...), c.Discord.AllowUsers...) {
		if strings.TrimSpace(id) == "" {
			return errors.New("discord allowlists cannot contain empty entries")
		}
	}
	u, err := url.Parse(c.Search.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("search.base_url must be an http(s) URL: %q", c.Search.BaseURL)
	}
	if c.Search.TimeoutSeconds < 1 {
		return errors.New("search.timeout_seconds must be >= 1")
	}
	if c.Search.CacheTTLSeconds < 1 {
		return errors.New("search.cache_ttl_seconds must be >= 1")
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return errors.New("store.path is required")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("unsupported logging.level: %q", c.Logging.Level)
	}
	return nil
}

// PagingDisplay converts the display section into the constants stamped on pages.
func (c Config) PagingDisplay() paging.Display {
	return paging.Display{
		BotName:       c.Display.BotName,
		Version:       c.Display.Version,
		IconURL:       c.Display.IconURL,
		Color:         c.Display.Color,
		CommandPrefix: c.Display.CommandPrefix,
	}
}

// DiscordToken resolves the bot token, preferring the inline value.
func (c Config) DiscordToken() string {
	token := strings.TrimSpace(c.Discord.Token)
	if token == "" && c.Discord.TokenEnv != "" {
		token = strings.TrimSpace(os.Getenv(c.Discord.TokenEnv))
	}
	return token
}

func (c Config) SearchTimeout() time.Duration {
	return time.Duration(c.Search.TimeoutSeconds) * time.Second
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Search.CacheTTLSeconds) * time.Second
}

func (c Config) PageTimeout() time.Duration {
	return time.Duration(c.Discord.PageTimeoutSecs) * time.Second
}

func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, err
	}
	return Load(path)
}

func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func Save(path string, cfg Config) error {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	buf, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	buf = append(buf, '\n')

	return WriteAtomic(path, buf, 0o600)
}
