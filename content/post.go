package content

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"time"
)

// Post is a fully built post. A Post is never modified after it is built;
// a changed source produces a new Post in a new Index.
type Post struct {
	Slug        string
	Title       string
	Date        time.Time
	Tags        []string
	Draft       bool
	Summary     string
	Body        string
	HTML        string
	Fingerprint string
	Path        string
	ModTime     time.Time
	Size        int64
	Extra       map[string]any
}

// Link returns the site-relative URL of the post.
func (p *Post) Link() string {
	return "/blog/" + p.Slug + "/"
}

// HasTag reports whether the post carries tag, compared case-insensitively.
func (p *Post) HasTag(tag string) bool {
	tag = NormalizeTag(tag)
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PostSummary is the listing view of a post, without body or HTML.
type PostSummary struct {
	Slug    string
	Title   string
	Date    time.Time
	Tags    []string
	Summary string
	Link    string
	Draft   bool
}

// Summarize returns the listing view of p.
func (p *Post) Summarize() PostSummary {
	return PostSummary{
		Slug:    p.Slug,
		Title:   p.Title,
		Date:    p.Date,
		Tags:    p.Tags,
		Summary: p.Summary,
		Link:    p.Link(),
		Draft:   p.Draft,
	}
}

// Renderer turns a markdown body into HTML and a plain-text excerpt.
// Implementations must be safe for concurrent use.
type Renderer interface {
	Render(body []byte) string
	Summary(body []byte) string
}

// Fingerprint returns the hex SHA-256 of the normalized source bytes.
func Fingerprint(raw []byte) string {
	sum := sha256.Sum256(normalize(raw))
	return hex.EncodeToString(sum[:])
}

// Builder combines the source loader and a Renderer into Posts.
type Builder struct {
	Renderer Renderer
	Options  LoadOptions
}

// Result is the outcome of building one source location: either a built
// Post or the error that excluded it.
type Result struct {
	Path   string
	Post   *Post
	Err    error
	Reused bool
}

// Built reports whether the result carries a Post.
func (r Result) Built() bool { return r.Err == nil && r.Post != nil }

// Build reads and renders the post at path.
func (b *Builder) Build(path string) Result {
	src, err := LoadSource(path, b.Options)
	if err != nil {
		return Result{Path: path, Err: err}
	}
	return b.fromSource(src)
}

// FromBytes builds a Post from raw source bytes. info may be nil.
func (b *Builder) FromBytes(path string, raw []byte, info fs.FileInfo) Result {
	src, err := ParseSource(path, raw, b.Options)
	if err != nil {
		return Result{Path: path, Err: err}
	}
	if info != nil {
		src.ModTime = info.ModTime()
		src.Size = info.Size()
	}
	return b.fromSource(src)
}

func (b *Builder) fromSource(src Source) Result {
	body := []byte(src.Body)
	summary := src.Fields.Summary
	if summary == "" {
		summary = b.Renderer.Summary(body)
	}
	return Result{Path: src.Path, Post: &Post{
		Slug:        src.Slug,
		Title:       src.Fields.Title,
		Date:        src.Fields.Date,
		Tags:        src.Fields.Tags,
		Draft:       src.Fields.Draft,
		Summary:     summary,
		Body:        src.Body,
		HTML:        b.Renderer.Render(body),
		Fingerprint: Fingerprint(src.Raw),
		Path:        src.Path,
		ModTime:     src.ModTime,
		Size:        src.Size,
		Extra:       src.Fields.Extra,
	}}
}
