package pubfs

import (
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubfs/content"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// pageETag identifies pages rendered from one index version of one
// process.
func pageETag(idx *content.Index) string {
	tag := "v" + formatUint(idx.Version())
	if e := idx.Epoch(); e != "" {
		tag = e + "-" + tag
	}
	return `W/"` + tag + `"`
}

// notModified sets the ETag header and, when the client already holds
// that version, answers 304 and reports true.
func notModified(c echo.Context, etag string) bool {
	c.Response().Header().Set("ETag", etag)
	for _, candidate := range strings.Split(c.Request().Header.Get("If-None-Match"), ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == etag || candidate == "*" {
			_ = c.NoContent(http.StatusNotModified)
			return true
		}
	}
	return false
}

func formatUint(n uint64) string {
	return strconv.FormatUint(n, 10)
}
