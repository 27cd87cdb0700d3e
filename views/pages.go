package views

import (
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/pubfs/content"
	"github.com/eringen/pubfs/markdown"
)

// Home renders a page of published posts, optionally narrowed to one tag.
func Home(site SiteConfig, l Listing) templ.Component {
	meta := PageMeta{
		Title:       site.Name,
		Description: site.Description,
		URL:         buildURL(site.URL),
		OGType:      "website",
	}
	if l.ActiveTag != "" {
		meta.Title = "Posts tagged " + l.ActiveTag
		meta.URL = buildURL(site.URL, "tag", l.ActiveTag)
	}
	return layout(site, meta, WebsiteJsonLD(site), component(func(p *writer) {
		tagList(p, l.Tags, l.ActiveTag)
		if l.ActiveTag != "" {
			p.raw("<h1 class=\"listing-title\">Posts tagged <em>")
			p.text(l.ActiveTag)
			p.raw("</em></h1>\n")
		}
		if len(l.Page.Posts) == 0 {
			p.raw("<p class=\"empty\">Nothing published yet.</p>\n")
		}
		p.raw("<ul class=\"post-list\">\n")
		for _, s := range l.Page.Posts {
			postItem(p, s)
		}
		p.raw("</ul>\n")
		pager(p, l)
	}))
}

func tagList(p *writer, tags []string, active string) {
	if len(tags) == 0 {
		return
	}
	p.raw("<nav class=\"tags\">")
	for _, t := range tags {
		p.raw("<a")
		p.attr("class", TagClass(t == active))
		p.attr("href", TagPath(t))
		p.raw(">")
		p.text(t)
		p.raw("</a>")
	}
	p.raw("</nav>\n")
}

func postItem(p *writer, s content.PostSummary) {
	p.raw("<li class=\"post-item\"><a")
	p.attr("href", s.Link)
	p.raw(">")
	p.text(s.Title)
	p.raw("</a> ")
	dateTag(p, s.Date)
	if s.Summary != "" {
		p.raw("<p class=\"summary\">")
		p.text(s.Summary)
		p.raw("</p>")
	}
	p.raw("</li>\n")
}

func dateTag(p *writer, t time.Time) {
	p.raw("<time")
	p.attr("datetime", t.Format(time.RFC3339))
	p.raw(">")
	p.text(FormatDate(t))
	p.raw("</time>")
}

func pager(p *writer, l Listing) {
	if !l.Page.HasPrev() && !l.Page.HasNext() {
		return
	}
	base := l.BasePath
	if base == "" {
		base = "/"
	}
	p.raw("<nav class=\"pager\">")
	if l.Page.HasPrev() {
		p.raw("<a rel=\"prev\"")
		p.attr("href", PagePath(base, l.Page.Page-1))
		p.raw(">Newer</a>")
	}
	p.raw(" <span>Page " + strconv.Itoa(l.Page.Page) + "</span> ")
	if l.Page.HasNext() {
		p.raw("<a rel=\"next\"")
		p.attr("href", PagePath(base, l.Page.Page+1))
		p.raw(">Older</a>")
	}
	p.raw("</nav>\n")
}

// Post renders a single post with links to related posts.
func Post(site SiteConfig, post *content.Post, related []*content.Post) templ.Component {
	meta := PageMeta{
		Title:       post.Title,
		Description: post.Summary,
		URL:         buildURL(site.URL, "blog", post.Slug),
		OGType:      "article",
		NoIndex:     post.Draft,
	}
	return layout(site, meta, BlogPostingJsonLD(site, post), component(func(p *writer) {
		p.raw("<article class=\"post\">\n<h1>")
		p.text(post.Title)
		p.raw("</h1>\n<p class=\"post-meta\">")
		dateTag(p, post.Date)
		if post.Draft {
			p.raw(" <span class=\"draft\">draft</span>")
		}
		p.raw("</p>\n")
		tagList(p, post.Tags, "")
		p.raw("<div class=\"post-body\">\n")
		p.component(markdown.HTML(post.HTML))
		p.raw("</div>\n</article>\n")
		if len(related) > 0 {
			p.raw("<aside class=\"related\"><h2>Related</h2><ul>\n")
			for _, r := range related {
				postItem(p, r.Summarize())
			}
			p.raw("</ul></aside>\n")
		}
	}))
}

// NotFound renders the 404 page.
func NotFound() templ.Component {
	return message("Not found", "There is nothing at this address.")
}

// ServerError renders the 500 page.
func ServerError() templ.Component {
	return message("Something went wrong", "The server could not complete the request.")
}

// Unavailable is shown while the first content build has not finished.
func Unavailable() templ.Component {
	return message("Starting up", "Content is still loading. Try again in a moment.")
}

func message(title, text string) templ.Component {
	return component(func(p *writer) {
		p.raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head><meta charset=\"utf-8\"><title>")
		p.text(title)
		p.raw("</title><link rel=\"stylesheet\" href=\"/public/base.css\"></head>\n<body><main class=\"message\"><h1>")
		p.text(title)
		p.raw("</h1><p>")
		p.text(text)
		p.raw("</p><p><a href=\"/\">Home</a></p></main></body>\n</html>\n")
	})
}
