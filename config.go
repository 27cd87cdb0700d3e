package pubfs

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eringen/pubfs/markdown"
	"github.com/eringen/pubfs/views"
)

// SiteConfig holds all configuration for a pubfs site.
type SiteConfig struct {
	Name        string `mapstructure:"name"`        // Site name (default "Blog")
	URL         string `mapstructure:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `mapstructure:"description"` // Site description for feeds and meta tags
	Author      string `mapstructure:"author"`      // Author name for feeds and JSON-LD

	Addr       string `mapstructure:"addr"`        // Listen address (default ":3000")
	ContentDir string `mapstructure:"content_dir"` // Post sources (default "posts")
	Timezone   string `mapstructure:"timezone"`    // Zone for dates without an offset (default "UTC")

	PageSize       int    `mapstructure:"page_size"`        // Posts per listing page (default 10)
	FeedMaxEntries int    `mapstructure:"feed_max_entries"` // Entries per feed (default 20)
	HighlightStyle string `mapstructure:"highlight_style"`  // Chroma style for code blocks (default "github")

	DisableWatch bool          `mapstructure:"disable_watch"` // Skip the live-reload watcher
	WatchDelay   time.Duration `mapstructure:"watch_delay"`   // Debounce delay (default 250ms)

	AdminPassword string `mapstructure:"admin_password"` // Enables /admin/ when set
	SessionSecret string `mapstructure:"session_secret"` // Required with AdminPassword
	CookieSecure  bool   `mapstructure:"cookie_secure"`  // Set true for HTTPS

	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout"`  // Graceful shutdown limit (default 10s)
	ConcurrencyLimit int           `mapstructure:"concurrency_limit"` // Requests handled at once; others wait (default 256)
	MaxConnections   int           `mapstructure:"max_connections"`   // Open connections accepted at once (0 = unlimited)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "posts"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.PageSize <= 0 {
		c.PageSize = 10
	}
	if c.FeedMaxEntries <= 0 {
		c.FeedMaxEntries = 20
	}
	if c.HighlightStyle == "" {
		c.HighlightStyle = markdown.DefaultStyle
	}
	if c.WatchDelay <= 0 {
		c.WatchDelay = 250 * time.Millisecond
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.ConcurrencyLimit <= 0 {
		c.ConcurrencyLimit = 256
	}
}

func (c *SiteConfig) validate() error {
	if c.AdminPassword != "" && c.SessionSecret == "" {
		return fmt.Errorf("pubfs: SessionSecret is required when AdminPassword is set")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("pubfs: timezone: %w", err)
	}
	return nil
}

func (c *SiteConfig) location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AdminEnabled reports whether the admin routes are served.
func (c *SiteConfig) AdminEnabled() bool { return c.AdminPassword != "" }

func (c *SiteConfig) site() views.SiteConfig {
	return views.SiteConfig{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
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

// WithLogger sets the logger shared by the server, store and watcher.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithRenderer replaces the markdown renderer, for example to register
// extra highlighters.
func WithRenderer(r *markdown.Renderer) Option {
	return func(a *App) {
		a.Renderer = r
	}
}
