// Package feed renders RSS 2.0 and Atom 1.0 documents from a content index.
package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/pubfs/content"
)

// DefaultMaxEntries caps a feed when Config.MaxEntries is zero.
const DefaultMaxEntries = 20

// Generator names the software in every document.
const Generator = "pubfs"

// Content types served with each format.
const (
	RSSContentType  = "application/rss+xml; charset=utf-8"
	AtomContentType = "application/atom+xml; charset=utf-8"
)

// Config describes the site a feed belongs to.
type Config struct {
	Title       string
	Link        string // absolute site URL, no trailing slash
	Description string
	Author      string
	MaxEntries  int
}

// Document kinds.
const (
	KindRSS  = "rss"
	KindAtom = "atom"
)

// Document is a rendered feed stamped with the index version it came from.
type Document struct {
	Kind        string
	Epoch       string
	Version     uint64
	ContentType string
	Updated     time.Time
	Body        []byte
}

// ETag returns a weak validator that changes whenever the index does.
// The epoch keeps validators from one process from matching another's.
func (d Document) ETag() string {
	tag := d.Kind + "-"
	if d.Epoch != "" {
		tag += d.Epoch + "-"
	}
	return `W/"` + tag + strconv.FormatUint(d.Version, 10) + `"`
}

// Builder renders feeds for one site.
type Builder struct {
	Config Config
}

// New returns a Builder for cfg.
func New(cfg Config) *Builder {
	return &Builder{Config: cfg}
}

func (b *Builder) maxEntries() int {
	if b.Config.MaxEntries > 0 {
		return b.Config.MaxEntries
	}
	return DefaultMaxEntries
}

func (b *Builder) entries(idx *content.Index) []*content.Post {
	posts := idx.Published()
	if n := b.maxEntries(); len(posts) > n {
		posts = posts[:n]
	}
	return posts
}

// updated is the date of the newest published post, or the Unix epoch for
// an empty feed.
func updated(posts []*content.Post) time.Time {
	if len(posts) == 0 {
		return time.Unix(0, 0).UTC()
	}
	return posts[0].Date
}

func (b *Builder) absolute(path string) string {
	return strings.TrimSuffix(b.Config.Link, "/") + path
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("feed: encode: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
