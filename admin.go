package pubfs

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/pubfs/content"
	"github.com/eringen/pubfs/views"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	a.logger.Warn("failed admin login", zap.String("ip", ip))
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleAdminRefresh rebuilds every post, as if all files had changed.
func (a *App) handleAdminRefresh(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	out, err := a.Store.Refresh(c.Request().Context(), nil)
	var msg string
	switch {
	case errors.Is(err, content.ErrRebuildDiscarded):
		msg = "A newer rebuild finished first."
	case err != nil:
		a.logger.Error("manual refresh failed", zap.Error(err))
		msg = "Rebuild failed: " + err.Error()
	default:
		msg = "Rebuilt version " + formatUint(out.Version) + "."
	}
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	idx, err := a.Store.Snapshot()
	if err != nil && !errors.Is(err, content.ErrNotYetInitialized) {
		return err
	}
	d := views.Dashboard{
		Health:    a.Store.Health(),
		Message:   msg,
		CSRFToken: CsrfToken(c),
	}
	if idx != nil {
		for _, p := range idx.All() {
			d.Posts = append(d.Posts, p.Summarize())
		}
	}
	return Render(c, a.Views.AdminDashboard(a.Config.site(), d))
}
