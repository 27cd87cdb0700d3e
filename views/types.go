package views

import "github.com/eringen/pubfs/content"

// SiteConfig holds the site-wide settings every page needs.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	NoIndex     bool   // ask crawlers to skip the page
}

// robotsRestrictive is sent for pages that are reachable but not meant to
// be indexed, such as drafts.
const robotsRestrictive = "noindex, nofollow, noarchive, nocache, nosnippet, noimageindex"

// Listing is the data behind the home and tag pages.
type Listing struct {
	Page      content.Page
	ActiveTag string
	Tags      []string
	BasePath  string // path the page links are relative to, "/" or "/tag/x/"
}

// Dashboard is the data behind the admin page.
type Dashboard struct {
	Health    content.Health
	Posts     []content.PostSummary
	Message   string
	CSRFToken string
}
