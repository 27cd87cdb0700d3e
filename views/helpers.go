package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/pubfs/content"
)

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
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

// PathEscape wraps url.PathEscape for use in templates.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// TagPath returns the listing path for tag.
func TagPath(tag string) string {
	return "/tag/" + PathEscape(tag) + "/"
}

// PagePath returns the path of listing page n below base.
func PagePath(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "?page=" + strconv.Itoa(n)
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	if active {
		return "tag tag-active"
	}
	return "tag"
}

// FormatDate renders a post date for display.
func FormatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

// JoinTags formats a tag slice as a comma-separated string.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

type ldThing struct {
	Type string `json:"@type"`
	Name string `json:"name,omitempty"`
	ID   string `json:"@id,omitempty"`
}

type ldWebsite struct {
	Context     string   `json:"@context"`
	Type        string   `json:"@type"`
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Description string   `json:"description,omitempty"`
	Author      *ldThing `json:"author,omitempty"`
}

type ldPosting struct {
	Context          string   `json:"@context"`
	Type             string   `json:"@type"`
	Headline         string   `json:"headline"`
	Description      string   `json:"description,omitempty"`
	DatePublished    string   `json:"datePublished"`
	DateModified     string   `json:"dateModified,omitempty"`
	URL              string   `json:"url"`
	Keywords         string   `json:"keywords,omitempty"`
	Author           *ldThing `json:"author,omitempty"`
	Publisher        ldThing  `json:"publisher"`
	MainEntityOfPage ldThing  `json:"mainEntityOfPage"`
}

func ldAuthor(name string) *ldThing {
	if name == "" {
		return nil
	}
	return &ldThing{Type: "Person", Name: name}
}

func marshalLD(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) string {
	return marshalLD(ldWebsite{
		Context:     "https://schema.org",
		Type:        "WebSite",
		Name:        cfg.Name,
		URL:         buildURL(cfg.URL),
		Description: cfg.Description,
		Author:      ldAuthor(cfg.Author),
	})
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
// The modification date is the source file's mtime.
func BlogPostingJsonLD(cfg SiteConfig, post *content.Post) string {
	postURL := buildURL(cfg.URL, "blog", post.Slug)
	ld := ldPosting{
		Context:          "https://schema.org",
		Type:             "BlogPosting",
		Headline:         post.Title,
		Description:      post.Summary,
		DatePublished:    post.Date.Format(time.RFC3339),
		URL:              postURL,
		Keywords:         strings.Join(post.Tags, ", "),
		Author:           ldAuthor(cfg.Author),
		Publisher:        ldThing{Type: "Organization", Name: cfg.Name},
		MainEntityOfPage: ldThing{Type: "WebPage", ID: postURL},
	}
	if !post.ModTime.IsZero() {
		ld.DateModified = post.ModTime.Format(time.RFC3339)
	}
	return marshalLD(ld)
}
