package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Site.Name != "蝉時雨" {
		t.Fatalf("name = %q", cfg.Site.Name)
	}
	if cfg.Site.SyncInterval != 10*time.Minute || cfg.Site.PostCacheTTL != 5*time.Minute {
		t.Fatalf("durations = %v, %v", cfg.Site.SyncInterval, cfg.Site.PostCacheTTL)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	file := filepath.Join(dir, "shigure.yaml")
	body := "url: https://blog.example.com/\ngithub:\n  owner: file-owner\n  repo: blog\nsync_interval: 1m\n"
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHIGURE_GITHUB_OWNER", "env-owner")

	v := viper.New()
	v.SetConfigFile(file)
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Site.URL != "https://blog.example.com" {
		t.Fatalf("url = %q", cfg.Site.URL)
	}
	if cfg.Site.GitHubOwner != "env-owner" {
		t.Fatalf("owner = %q, env should win over file", cfg.Site.GitHubOwner)
	}
	if cfg.Site.GitHubRepo != "blog" {
		t.Fatalf("repo = %q", cfg.Site.GitHubRepo)
	}
	if cfg.Site.SyncInterval != time.Minute {
		t.Fatalf("sync interval = %v", cfg.Site.SyncInterval)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SHIGURE_SYNC_INTERVAL", "often")
	if _, err := Load(viper.New()); err == nil || !strings.Contains(err.Error(), "sync_interval") {
		t.Fatalf("expected sync_interval error, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	var cfg Config
	cfg.Site.AdminPassword = "secret"
	cfg.Site.SessionSecret = "short"
	cfg.Site.RedisURL = "localhost:6379"

	err := Check(cfg)
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"session_secret", "redis_url"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error to mention %q, got %q", want, err)
		}
	}

	cfg.Site.SessionSecret = strings.Repeat("k", 32)
	cfg.Site.RedisURL = "redis://localhost:6379/0"
	if err := Check(cfg); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
