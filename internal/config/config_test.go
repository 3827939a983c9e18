package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	bad := `{"display":{"command_prefix":"bible bot"}}`
	if err := WriteAtomic(path, []byte(bad), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "command_prefix") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := WriteAtomic(path, []byte(`{"display":{"bot_name":"VerseBot","color":0},"search":{"timeout_seconds":0}}`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Display.BotName != "VerseBot" {
		t.Fatalf("expected bot name override, got %q", cfg.Display.BotName)
	}
	if cfg.Display.Color != 303102 {
		t.Fatalf("expected default color, got %d", cfg.Display.Color)
	}
	if cfg.SearchTimeout().Seconds() != 15 {
		t.Fatalf("expected default timeout, got %s", cfg.SearchTimeout())
	}

	d := cfg.PagingDisplay()
	if d.BotName != "VerseBot" || d.CommandPrefix != "+" || d.Color != 303102 {
		t.Fatalf("unexpected paging display: %+v", d)
	}
}

func TestConfigRoundtripAndBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Discord.AllowGuilds = []string{"guild-1"}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("first save: %v", err)
	}

	cfg.Display.CommandPrefix = "!"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Display.CommandPrefix != "!" {
		t.Fatalf("expected prefix !, got %q", loaded.Display.CommandPrefix)
	}
	if len(loaded.Discord.AllowGuilds) != 1 {
		t.Fatalf("expected allow guild to persist, got %v", loaded.Discord.AllowGuilds)
	}

	bak, err := Load(filepath.Join(dir, "config.json.bak"))
	if err != nil {
		t.Fatalf("expected readable backup config, got: %v", err)
	}
	if bak.Display.CommandPrefix != "+" {
		t.Fatalf("expected backup to hold previous prefix, got %q", bak.Display.CommandPrefix)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode 0600, got %o", info.Mode().Perm())
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load or default: %v", err)
	}
	if cfg.Search.DefaultVersion != "RSV" {
		t.Fatalf("expected default version RSV, got %q", cfg.Search.DefaultVersion)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "color", mutate: func(c *Config) { c.Display.Color = 0x1000000 }, want: "display.color"},
		{name: "base url", mutate: func(c *Config) { c.Search.BaseURL = "ftp://example.org" }, want: "search.base_url"},
		{name: "empty allowlist entry", mutate: func(c *Config) { c.Discord.AllowUsers = []string{" "} }, want: "allowlists"},
		{name: "log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, want: "logging.level"},
		{name: "rate limit", mutate: func(c *Config) { c.Discord.RateLimitPerMin = -1 }, want: "rate_limit"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tc.want)
			}
		})
	}
}

func TestDiscordTokenFromEnv(t *testing.T) {
	t.Setenv("BIBLEBOT_TEST_TOKEN", " secret ")
	cfg := Default()
	cfg.Discord.TokenEnv = "BIBLEBOT_TEST_TOKEN"
	if got := cfg.DiscordToken(); got != "secret" {
		t.Fatalf("DiscordToken() = %q", got)
	}
	cfg.Discord.Token = "inline"
	if got := cfg.DiscordToken(); got != "inline" {
		t.Fatalf("DiscordToken() = %q", got)
	}
}
