package shigure

import (
	"time"

	"go.uber.org/zap"

	"github.com/eringen/shigure/uistate"
)

// SiteConfig holds all configuration for a shigure site.
type SiteConfig struct {
	Name        string // Site name (default "蝉時雨")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/shigure.db")

	GitHubOwner   string // Required: owner of the repository whose issues are posts
	GitHubRepo    string // Required: repository name
	GitHubToken   string // Optional API token, raises the rate limit
	GitHubCreator string // Only mirror issues opened by this login
	GitHubAPI     string // API base URL (default api.github.com)

	SyncInterval time.Duration // Mirror refresh interval (default 10min)
	PostCacheTTL time.Duration // Post cache TTL (default 5min)
	RedisURL     string        // When set, view counts live in redis instead of SQLite

	AdminPassword string // Enables the admin area when set
	SessionSecret string // Required with AdminPassword
	CookieSecure  bool   // Set true for HTTPS

	SanitizeHTML   bool   // Filter rendered post HTML through a sanitizer
	HighlightStyle string // chroma style for code blocks (default "github")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "蝉時雨"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/shigure.db"
	}
	if c.SyncInterval == 0 {
		c.SyncInterval = 10 * time.Minute
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.HighlightStyle == "" {
		c.HighlightStyle = "github"
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger sets the application logger (default: no-op).
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.Log = l
		}
	}
}

// WithIssueSource replaces the GitHub client used for syncing.
func WithIssueSource(src IssueSource) Option {
	return func(a *App) {
		a.source = src
	}
}

// WithHitCounter replaces the view counter.
func WithHitCounter(h HitCounter) Option {
	return func(a *App) {
		a.Hits = h
	}
}

// WithUIStore replaces the shared UI state store.
func WithUIStore(s *uistate.Store) Option {
	return func(a *App) {
		a.UI = s
	}
}

// WithoutScheduler disables the periodic background sync.
func WithoutScheduler() Option {
	return func(a *App) {
		a.noScheduler = true
	}
}

// WithViews replaces the built-in views.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
