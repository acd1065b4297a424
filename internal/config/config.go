// Package config resolves shigure settings with precedence
// defaults < config file < SHIGURE_* environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/eringen/shigure"
)

// Option is a config key with its default and meaning.
type Option struct {
	Key     string
	Default any
	Comment string
}

// Options lists every supported key.
func Options() []Option {
	return []Option{
		{Key: "name", Default: "蝉時雨", Comment: "Site name"},
		{Key: "url", Default: "http://localhost:3000", Comment: "Canonical site URL"},
		{Key: "description", Default: "", Comment: "Site description for feeds and meta tags"},
		{Key: "author", Default: "", Comment: "Author shown in JSON-LD and the footer"},
		{Key: "addr", Default: ":3000", Comment: "HTTP listen address"},
		{Key: "database_path", Default: "data/shigure.db", Comment: "SQLite mirror of the issue posts"},

		{Key: "github.owner", Default: "", Comment: "Owner of the repository whose issues are posts"},
		{Key: "github.repo", Default: "", Comment: "Repository name"},
		{Key: "github.token", Default: "", Comment: "API token, raises the rate limit"},
		{Key: "github.creator", Default: "", Comment: "Only mirror issues opened by this login"},
		{Key: "github.api", Default: "", Comment: "API base URL for GitHub Enterprise"},

		{Key: "sync_interval", Default: "10m", Comment: "How often the mirror is refreshed"},
		{Key: "post_cache_ttl", Default: "5m", Comment: "In-memory post cache lifetime"},
		{Key: "redis_url", Default: "", Comment: "Keep view counts in redis instead of SQLite"},

		{Key: "admin_password", Default: "", Comment: "Enables /admin/ when set"},
		{Key: "session_secret", Default: "", Comment: "Cookie signing key, required with admin_password"},
		{Key: "cookie_secure", Default: false, Comment: "Mark cookies Secure (HTTPS only)"},

		{Key: "sanitize_html", Default: false, Comment: "Filter rendered post HTML through a sanitizer"},
		{Key: "highlight_style", Default: "github", Comment: "chroma style for code blocks"},

		{Key: "log_level", Default: "info", Comment: "debug, info, warn or error"},
		{Key: "log_file", Default: "", Comment: "Also write logs to this file"},
	}
}

// Config is the resolved process configuration.
type Config struct {
	Site     shigure.SiteConfig
	LogLevel string
	LogFile  string
}

// Load reads .env, the config file and SHIGURE_* variables into v and returns
// the result. A missing config file is not an error.
func Load(v *viper.Viper) (Config, error) {
	_ = godotenv.Load()

	if v.ConfigFileUsed() == "" {
		v.SetConfigName("shigure")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "shigure"))
		}
		v.AddConfigPath(".")
	}
	for _, o := range Options() {
		v.SetDefault(o.Key, o.Default)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("shigure")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	syncInterval, err := duration(v, "sync_interval")
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := duration(v, "post_cache_ttl")
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Site: shigure.SiteConfig{
			Name:           v.GetString("name"),
			URL:            strings.TrimRight(v.GetString("url"), "/"),
			Description:    v.GetString("description"),
			Author:         v.GetString("author"),
			Addr:           v.GetString("addr"),
			DatabasePath:   v.GetString("database_path"),
			GitHubOwner:    v.GetString("github.owner"),
			GitHubRepo:     v.GetString("github.repo"),
			GitHubToken:    v.GetString("github.token"),
			GitHubCreator:  v.GetString("github.creator"),
			GitHubAPI:      v.GetString("github.api"),
			SyncInterval:   syncInterval,
			PostCacheTTL:   cacheTTL,
			RedisURL:       v.GetString("redis_url"),
			AdminPassword:  v.GetString("admin_password"),
			SessionSecret:  v.GetString("session_secret"),
			CookieSecure:   v.GetBool("cookie_secure"),
			SanitizeHTML:   v.GetBool("sanitize_html"),
			HighlightStyle: v.GetString("highlight_style"),
		},
		LogLevel: v.GetString("log_level"),
		LogFile:  v.GetString("log_file"),
	}
	return cfg, Check(cfg)
}

// duration accepts Go duration strings ("90s", "10m").
func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

// Check reports every invalid combination at once.
func Check(cfg Config) error {
	var problems []string
	if cfg.Site.AdminPassword != "" && len(cfg.Site.SessionSecret) < 32 {
		problems = append(problems, "session_secret must be at least 32 bytes when admin_password is set")
	}
	if u := cfg.Site.RedisURL; u != "" && !hasAnyPrefix(u, "redis://", "rediss://", "unix://") {
		problems = append(problems, "redis_url must be a redis://, rediss:// or unix:// URL")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
