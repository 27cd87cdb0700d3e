package views

import (
	"strconv"
	"time"

	"github.com/a-h/templ"
)

// AdminLogin renders the password form.
func AdminLogin(showError bool, csrfToken string) templ.Component {
	return component(func(p *writer) {
		p.raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head><meta charset=\"utf-8\"><title>Admin</title><link rel=\"stylesheet\" href=\"/public/base.css\"></head>\n<body><main class=\"admin\">\n<h1>Admin</h1>\n")
		if showError {
			p.raw("<p class=\"error\">Wrong password.</p>\n")
		}
		p.raw("<form method=\"post\" action=\"/admin/login/\">")
		csrfField(p, csrfToken)
		p.raw("<label>Password <input type=\"password\" name=\"password\" autofocus></label> <button type=\"submit\">Log in</button></form>\n</main></body>\n</html>\n")
	})
}

// AdminDashboard renders the content health report and every post,
// drafts included.
func AdminDashboard(site SiteConfig, d Dashboard) templ.Component {
	return component(func(p *writer) {
		p.raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head><meta charset=\"utf-8\"><title>Admin | ")
		p.text(site.Name)
		p.raw("</title><link rel=\"stylesheet\" href=\"/public/base.css\"></head>\n<body><main class=\"admin\">\n<h1>Content</h1>\n")
		if d.Message != "" {
			p.raw("<p class=\"message\">")
			p.text(d.Message)
			p.raw("</p>\n")
		}

		h := d.Health
		p.raw("<dl class=\"health\"><dt>State</dt><dd")
		p.attr("class", "state-"+h.State.String())
		p.raw(">")
		p.text(h.State.String())
		p.raw("</dd><dt>Version</dt><dd>" + strconv.FormatUint(h.Version, 10) + "</dd>")
		p.raw("<dt>Posts</dt><dd>" + strconv.Itoa(h.Posts) + "</dd>")
		if !h.UpdatedAt.IsZero() {
			p.raw("<dt>Updated</dt><dd>")
			p.text(h.UpdatedAt.Format(time.RFC3339))
			p.raw("</dd>")
		}
		p.raw("</dl>\n")

		p.raw("<form method=\"post\" action=\"/admin/refresh/\">")
		csrfField(p, d.CSRFToken)
		p.raw("<button type=\"submit\">Rebuild now</button></form>\n")

		if len(h.Errors) > 0 {
			p.raw("<h2>Excluded sources</h2>\n<ul class=\"excluded\">\n")
			for _, x := range h.Errors {
				p.raw("<li><code>")
				p.text(x.Path)
				p.raw("</code> ")
				if x.Err != nil {
					p.text(x.Err.Error())
				}
				p.raw("</li>\n")
			}
			p.raw("</ul>\n")
		}

		p.raw("<h2>Posts</h2>\n<table class=\"posts\"><thead><tr><th>Title</th><th>Date</th><th>Tags</th><th>Status</th></tr></thead><tbody>\n")
		for _, s := range d.Posts {
			p.raw("<tr><td><a")
			p.attr("href", s.Link)
			p.raw(">")
			p.text(s.Title)
			p.raw("</a></td><td>")
			p.text(s.Date.Format("2006-01-02"))
			p.raw("</td><td>")
			p.text(JoinTags(s.Tags))
			p.raw("</td><td>")
			if s.Draft {
				p.raw("draft")
			} else {
				p.raw("published")
			}
			p.raw("</td></tr>\n")
		}
		p.raw("</tbody></table>\n")

		p.raw("<form method=\"post\" action=\"/admin/logout/\">")
		csrfField(p, d.CSRFToken)
		p.raw("<button type=\"submit\">Log out</button></form>\n</main></body>\n</html>\n")
	})
}

func csrfField(p *writer, token string) {
	p.raw("<input type=\"hidden\" name=\"_csrf\"")
	p.attr("value", token)
	p.raw(">")
}
