package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// writer accumulates the first error so components can be written as a
// flat sequence of calls.
type writer struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (p *writer) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *writer) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *writer) attr(name, value string) {
	p.raw(" " + name + `="`)
	p.text(value)
	p.raw(`"`)
}

func (p *writer) component(c templ.Component) {
	if p.err == nil && c != nil {
		p.err = c.Render(p.ctx, p.w)
	}
}

func component(fn func(p *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &writer{ctx: ctx, w: w}
		fn(p)
		return p.err
	})
}

// layout wraps body in the site chrome.
func layout(site SiteConfig, meta PageMeta, jsonLD string, body templ.Component) templ.Component {
	return component(func(p *writer) {
		title := site.Name
		if meta.Title != "" && meta.Title != site.Name {
			title = meta.Title + " | " + site.Name
		}
		p.raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
		p.raw("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n<title>")
		p.text(title)
		p.raw("</title>\n")
		if meta.Description != "" {
			p.raw("<meta name=\"description\"")
			p.attr("content", meta.Description)
			p.raw(">\n<meta property=\"og:description\"")
			p.attr("content", meta.Description)
			p.raw(">\n")
		}
		if meta.URL != "" {
			p.raw("<link rel=\"canonical\"")
			p.attr("href", meta.URL)
			p.raw(">\n<meta property=\"og:url\"")
			p.attr("content", meta.URL)
			p.raw(">\n")
		}
		if meta.NoIndex {
			p.raw("<meta name=\"robots\"")
			p.attr("content", robotsRestrictive)
			p.raw(">\n")
		}
		p.raw("<meta property=\"og:title\"")
		p.attr("content", title)
		p.raw(">\n")
		if meta.OGType != "" {
			p.raw("<meta property=\"og:type\"")
			p.attr("content", meta.OGType)
			p.raw(">\n")
		}
		p.raw("<link rel=\"alternate\" type=\"application/rss+xml\"")
		p.attr("title", site.Name)
		p.raw(" href=\"/feed.xml\">\n<link rel=\"alternate\" type=\"application/atom+xml\"")
		p.attr("title", site.Name)
		p.raw(" href=\"/atom.xml\">\n")
		p.raw("<link rel=\"stylesheet\" href=\"/public/base.css\">\n<link rel=\"stylesheet\" href=\"/public/highlight.css\">\n")
		if jsonLD != "" {
			p.raw("<script type=\"application/ld+json\">")
			p.raw(jsonLD)
			p.raw("</script>\n")
		}
		p.raw("</head>\n<body>\n<header class=\"site-header\"><a class=\"site-name\" href=\"/\">")
		p.text(site.Name)
		p.raw("</a>")
		if site.Description != "" {
			p.raw("<p class=\"site-description\">")
			p.text(site.Description)
			p.raw("</p>")
		}
		p.raw("</header>\n<main>\n")
		p.component(body)
		p.raw("</main>\n<footer class=\"site-footer\"><a href=\"/feed.xml\">RSS</a> <a href=\"/atom.xml\">Atom</a></footer>\n</body>\n</html>\n")
	})
}
