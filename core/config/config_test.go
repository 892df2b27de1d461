package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "t", RunMode: "polling"}}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
	if cfg.RateLimit.Burst != 1 {
		t.Fatalf("burst = %d", cfg.RateLimit.Burst)
	}
}

func TestNormalizeRejects(t *testing.T) {
	cases := map[string]*Config{
		"missing token": {},
		"bad mode":      {Telegram: TelegramConfig{Token: "t", RunMode: "smoke"}},
		"webhook url":   {Telegram: TelegramConfig{Token: "t", RunMode: "webhook"}},
		"exclude":       {Telegram: TelegramConfig{Token: "t"}, RateLimit: RateLimitConfig{ExcludeUpdates: []string{"poll"}}},
	}
	for name, cfg := range cases {
		if err := Normalize(cfg); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadOverlaysEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := "telegram:\n  token: from-file\n  admin_id: 5\nrate_limit:\n  exclude_updates: [Callback]\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DOTENV_PATH", filepath.Join(dir, "missing.env"))
	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.AdminID != 5 {
		t.Fatalf("admin id = %d", cfg.Telegram.AdminID)
	}
	if cfg.RateLimit.ExcludeUpdates[0] != UpdateCallback {
		t.Fatalf("exclude = %v", cfg.RateLimit.ExcludeUpdates)
	}
}
