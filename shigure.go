// Package shigure is a blog front-end that mirrors GitHub issues as posts,
// renders them with a customised markdown pipeline, and keeps a small shared
// UI state with timed effects for the browser.
//
// The App wires the issue client, the SQLite mirror, caches, handlers and
// views together. Views are replaceable through ViewFuncs.
package shigure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/shigure/issues"
	"github.com/eringen/shigure/markdown"
	"github.com/eringen/shigure/post"
	"github.com/eringen/shigure/uistate"
	"github.com/eringen/shigure/views"
)

// ViewFuncs holds the components the handlers render. DefaultViews fills it
// from the views package.
type ViewFuncs struct {
	Index          func(posts []post.Post, activeLabel string, labels []string) templ.Component
	Post           func(r post.Rendered) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(posts []post.Post, message string, csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// DefaultViews returns the built-in views for cfg.
func DefaultViews(cfg SiteConfig) ViewFuncs {
	vc := views.SiteConfig{
		Name:        cfg.Name,
		URL:         cfg.URL,
		Description: cfg.Description,
		Author:      cfg.Author,
	}
	return ViewFuncs{
		Index: func(posts []post.Post, activeLabel string, labels []string) templ.Component {
			return views.Index(vc, posts, activeLabel, labels)
		},
		Post: func(r post.Rendered) templ.Component {
			return views.PostPage(vc, r)
		},
		AdminLogin: func(showError bool, csrfToken string) templ.Component {
			return views.AdminLogin(vc, showError, csrfToken)
		},
		AdminDashboard: func(posts []post.Post, message string, csrfToken string) templ.Component {
			return views.AdminDashboard(vc, posts, message, csrfToken)
		},
		NotFound:    func() templ.Component { return views.NotFound(vc) },
		ServerError: func() templ.Component { return views.ServerError(vc) },
	}
}

// App is the central shigure application.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *Store
	Cache    *PostCache
	Covers   *CoverCache
	Hits     HitCounter
	UI       *uistate.Store
	Markdown *markdown.Renderer
	Renderer *post.Renderer
	Syncer   *Syncer
	Views    ViewFuncs
	Log      *zap.Logger

	source       IssueSource
	loginLimiter *RateLimiter
	apiLimiter   *RateLimiter
	customRoutes []func(*App)
	staticDir    string
	noScheduler  bool
	initialized  bool
	stopSync     func()
}

// New creates an App with cfg. Nothing is opened until Init or Start.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     DefaultViews(cfg),
		Log:       zap.NewNop(),
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init opens the store and wires caches, counters, renderers, middleware and
// routes without starting the server.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if a.Config.AdminPassword != "" && a.Config.SessionSecret == "" {
		return fmt.Errorf("shigure: SessionSecret is required when AdminPassword is set")
	}
	if a.source == nil {
		if a.Config.GitHubOwner == "" || a.Config.GitHubRepo == "" {
			return fmt.Errorf("shigure: GitHubOwner and GitHubRepo are required")
		}
		var opts []issues.Option
		if a.Config.GitHubAPI != "" {
			opts = append(opts, issues.WithBaseURL(a.Config.GitHubAPI))
		}
		if a.Config.GitHubCreator != "" {
			opts = append(opts, issues.WithCreator(a.Config.GitHubCreator))
		}
		a.source = issues.New(a.Config.GitHubOwner, a.Config.GitHubRepo, a.Config.GitHubToken, opts...)
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("shigure: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)
	a.Covers = NewCoverCache(nil)

	if a.Hits == nil {
		if a.Config.RedisURL != "" {
			h, err := NewRedisHits(a.Config.RedisURL)
			if err != nil {
				return fmt.Errorf("shigure: init redis hits: %w", err)
			}
			a.Hits = h
		} else {
			a.Hits = SQLiteHits{Store: a.Store}
		}
	}
	if a.UI == nil {
		a.UI = uistate.NewStore(uistate.WithLogger(a.Log.Named("uistate")))
	}

	mdOpts := []markdown.Option{markdown.WithStyle(a.Config.HighlightStyle)}
	if a.Config.SanitizeHTML {
		mdOpts = append(mdOpts, markdown.WithSanitizer(markdown.SanitizePolicy()))
	}
	a.Markdown = markdown.New(mdOpts...)
	a.Renderer = post.NewRenderer(a.Markdown)

	a.Syncer = &Syncer{
		Source: a.source,
		Store:  a.Store,
		Cache:  a.Cache,
		Covers: a.Covers,
		Log:    a.Log.Named("sync"),
	}

	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.apiLimiter = NewRateLimiter(120, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Start initializes the App, schedules background syncs and serves HTTP until
// the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	if !a.noScheduler {
		go func() {
			if _, err := a.Syncer.Sync(context.Background()); err != nil {
				a.Log.Error("initial sync failed", zap.Error(err))
			}
		}()
		a.stopSync = a.Syncer.Start(a.Config.SyncInterval)
	}
	a.Log.Info("listening", zap.String("addr", a.Config.Addr))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded assets are matched before the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/post.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/highlight.css", a.handleHighlightCSS)

	e.Static("/public", a.staticDir)
	e.GET("/favicon.ico", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/post/:number/", a.handlePost)
	e.GET("/cover/:number/", a.handleCover)

	api := e.Group("/api/ui", a.apiLimiter.Middleware())
	api.GET("/state", a.handleUIState)
	api.POST("/state", a.handleUIUpdate)
	api.POST("/mascot/hide", a.handleUIHideMascot)
	api.POST("/tips", a.handleUITip)
	api.GET("/ws", a.handleUIStream)

	if a.adminEnabled() {
		e.GET("/admin/", a.handleAdmin)
		e.POST("/admin/login/", a.handleAdminLogin)
		e.POST("/admin/logout/", handleAdminLogout)
		e.POST("/admin/sync/", a.handleAdminSync)
	}
}

func (a *App) adminEnabled() bool {
	return a.Config.AdminPassword != ""
}

// Close stops background work and releases the store and counters.
func (a *App) Close() error {
	if a.stopSync != nil {
		a.stopSync()
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.apiLimiter != nil {
		a.apiLimiter.Stop()
	}
	var errs []error
	if c, ok := a.Hits.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	_ = a.Log.Sync()
	return errors.Join(errs...)
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("shigure: required environment variable %s is not set", key)
	}
	return v
}
