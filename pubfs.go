// Package pubfs is a file-backed blog engine built with Go, Echo, and templ.
// Posts are markdown files with a YAML header; the engine renders them
// into an in-memory index, serves pages and feeds from it, and rebuilds it
// whenever the files change.
//
// Sites can replace any page through the ViewFuncs struct; pubfs handles
// the content pipeline, handler logic, and middleware.
package pubfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	"github.com/eringen/pubfs/content"
	"github.com/eringen/pubfs/feed"
	"github.com/eringen/pubfs/markdown"
	"github.com/eringen/pubfs/views"
	"github.com/eringen/pubfs/watcher"
)

// ViewFuncs holds the templ components the framework calls when rendering
// pages. Nil fields fall back to the views package.
type ViewFuncs struct {
	Home           func(site views.SiteConfig, l views.Listing) templ.Component
	Post           func(site views.SiteConfig, post *content.Post, related []*content.Post) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(site views.SiteConfig, d views.Dashboard) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
	Unavailable    func() templ.Component
}

// DefaultViews returns the built-in pages.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:           views.Home,
		Post:           views.Post,
		AdminLogin:     views.AdminLogin,
		AdminDashboard: views.AdminDashboard,
		NotFound:       views.NotFound,
		ServerError:    views.ServerError,
		Unavailable:    views.Unavailable,
	}
}

func (v *ViewFuncs) fill() {
	d := DefaultViews()
	if v.Home == nil {
		v.Home = d.Home
	}
	if v.Post == nil {
		v.Post = d.Post
	}
	if v.AdminLogin == nil {
		v.AdminLogin = d.AdminLogin
	}
	if v.AdminDashboard == nil {
		v.AdminDashboard = d.AdminDashboard
	}
	if v.NotFound == nil {
		v.NotFound = d.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = d.ServerError
	}
	if v.Unavailable == nil {
		v.Unavailable = d.Unavailable
	}
}

// App is the central pubfs application. It wires together the content
// store, feeds, handlers, middleware, and views.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *content.Store
	Renderer *markdown.Renderer
	Feeds    *feed.Builder
	Cache    *DocumentCache
	Views    ViewFuncs

	logger       *zap.Logger
	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
	ready        bool
}

// New creates a new App with the given configuration and views.
func New(cfg SiteConfig, v ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()
	v.fill()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     v,
		Cache:     NewDocumentCache(),
		logger:    zap.NewNop(),
		staticDir: "public",
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true
	a.Echo.Server.ReadHeaderTimeout = 10 * time.Second
	a.Echo.Server.ReadTimeout = 30 * time.Second
	a.Echo.Server.WriteTimeout = time.Minute
	a.Echo.Server.IdleTimeout = 2 * time.Minute

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Init builds the content index for the first time and registers
// middleware and routes. Sources that fail to build are logged and left
// out; an unreadable content directory is an error.
func (a *App) Init(ctx context.Context) error {
	if a.ready {
		return nil
	}
	if err := a.Config.validate(); err != nil {
		return err
	}

	if a.Renderer == nil {
		a.Renderer = markdown.New(markdown.WithHighlighters(markdown.NewHighlighters(a.Config.HighlightStyle)))
	}
	builder := &content.Builder{
		Renderer: a.Renderer,
		Options:  content.LoadOptions{Location: a.Config.location()},
	}
	a.Store = content.NewStore(a.Config.ContentDir, builder, content.WithLogger(a.logger.Named("content")))
	a.Feeds = feed.New(feed.Config{
		Title:       a.Config.Name,
		Link:        a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
		MaxEntries:  a.Config.FeedMaxEntries,
	})

	if _, err := a.Store.Refresh(ctx, nil); err != nil {
		return fmt.Errorf("pubfs: initial build: %w", err)
	}

	if a.Config.AdminEnabled() {
		a.loginLimiter = NewLoginLimiter(5, time.Minute)
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start initializes the app, watches the content directory and serves
// HTTP until ctx is cancelled, then shuts the server down gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.Config.MaxConnections > 0 {
		l, err := net.Listen("tcp", a.Config.Addr)
		if err != nil {
			return fmt.Errorf("pubfs: listen: %w", err)
		}
		a.Echo.Listener = netutil.LimitListener(l, a.Config.MaxConnections)
	}

	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		a.watch(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("listening", zap.String("addr", a.Config.Addr), zap.String("url", a.Config.URL))
		serveErr <- a.Echo.Start(a.Config.Addr)
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	}

	a.logger.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer stop()
	if serr := a.Echo.Shutdown(shutdownCtx); serr != nil && err == nil {
		err = fmt.Errorf("pubfs: shutdown: %w", serr)
	}
	cancel()
	<-watchDone
	return err
}

// watch keeps the store in step with the content directory until ctx is
// done. A watch that cannot be set up is logged and the site keeps serving
// the snapshot it has.
func (a *App) watch(ctx context.Context) {
	if a.Config.DisableWatch {
		return
	}
	w := watcher.New(a.Config.ContentDir, a.Store,
		watcher.WithDelay(a.Config.WatchDelay),
		watcher.WithLogger(a.logger.Named("watcher")),
	)
	if err := w.Run(ctx); err != nil {
		a.logger.Error("live reload disabled", zap.Error(err))
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework assets are served under /public/ ahead of the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/base.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/highlight.css", a.handleHighlightCSS)

	// User's static assets
	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/healthz", a.handleHealth)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/atom.xml", a.handleAtom)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/", a.handleHome)
	e.GET("/tag/:tag/", a.handleTag)
	e.GET("/blog/:slug/", a.handlePost)

	// Admin routes
	if a.Config.AdminEnabled() {
		e.GET("/admin/", a.handleAdmin)
		e.POST("/admin/login/", a.handleAdminLogin)
		e.POST("/admin/logout/", handleAdminLogout)
		e.POST("/admin/refresh/", a.handleAdminRefresh)
	}
}

// Close releases background resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Close()
	}
	return nil
}
