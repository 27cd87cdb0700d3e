package pubfs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/pubfs/content"
	"github.com/eringen/pubfs/feed"
	"github.com/eringen/pubfs/views"
)

const relatedLimit = 5

func (a *App) handleHome(c echo.Context) error {
	idx, err := a.Store.Snapshot()
	if err != nil {
		return err
	}
	if notModified(c, pageETag(idx)) {
		return nil
	}
	page := idx.Paginate(pageParam(c), a.Config.PageSize)
	if page.Page > 1 && len(page.Posts) == 0 {
		return echo.ErrNotFound
	}
	return Render(c, a.Views.Home(a.Config.site(), views.Listing{
		Page:     page,
		Tags:     idx.Tags(),
		BasePath: "/",
	}))
}

func (a *App) handleTag(c echo.Context) error {
	tag := content.NormalizeTag(c.Param("tag"))
	idx, err := a.Store.Snapshot()
	if err != nil {
		return err
	}
	if len(idx.TagSlugs(tag)) == 0 {
		return echo.ErrNotFound
	}
	if notModified(c, pageETag(idx)) {
		return nil
	}
	page := idx.PaginateTag(tag, pageParam(c), a.Config.PageSize)
	return Render(c, a.Views.Home(a.Config.site(), views.Listing{
		Page:      page,
		ActiveTag: tag,
		Tags:      idx.Tags(),
		BasePath:  views.TagPath(tag),
	}))
}

func (a *App) handlePost(c echo.Context) error {
	idx, err := a.Store.Snapshot()
	if err != nil {
		return err
	}
	post, ok := idx.Get(c.Param("slug"))
	if !ok {
		return content.ErrNotFound
	}
	if notModified(c, pageETag(idx)) {
		return nil
	}
	return Render(c, a.Views.Post(a.Config.site(), post, idx.Related(post, relatedLimit)))
}

func (a *App) handleFeed(c echo.Context) error {
	return a.serveDocument(c, feed.KindRSS, a.Feeds.RSS)
}

func (a *App) handleAtom(c echo.Context) error {
	return a.serveDocument(c, feed.KindAtom, a.Feeds.Atom)
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.serveDocument(c, kindSitemap, a.buildSitemap)
}

func (a *App) serveDocument(c echo.Context, kind string, build func(*content.Index) (feed.Document, error)) error {
	idx, err := a.Store.Snapshot()
	if err != nil {
		return err
	}
	doc, err := a.Cache.Get(kind, idx, build)
	if err != nil {
		return err
	}
	if notModified(c, doc.ETag()) {
		return nil
	}
	return c.Blob(http.StatusOK, doc.ContentType, doc.Body)
}

func (a *App) handleHealth(c echo.Context) error {
	h := a.Store.Health()
	code := http.StatusOK
	if h.State == content.StateEmpty {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, h)
}

func (a *App) handleHighlightCSS(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/css; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return a.Renderer.Highlighters().WriteCSS(c.Response())
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.staticDir + "/robots.txt")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	switch {
	case errors.Is(err, content.ErrNotFound):
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	case errors.Is(err, content.ErrNotYetInitialized):
		c.Response().Header().Set("Retry-After", "5")
		_ = RenderStatus(c, http.StatusServiceUnavailable, a.Views.Unavailable())
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.logger.Error("server error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

func pageParam(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
