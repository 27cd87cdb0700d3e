package pubfs

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/eringen/pubfs/content"
	"github.com/eringen/pubfs/feed"
)

const kindSitemap = "sitemap"

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// buildSitemap lists the home page, every tag page and every published post.
func (a *App) buildSitemap(idx *content.Index) (feed.Document, error) {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
	}
	for _, t := range idx.Tags() {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, "tag", t)})
	}
	for _, p := range idx.Published() {
		lastMod := p.Date
		if p.ModTime.After(lastMod) {
			lastMod = p.ModTime
		}
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "blog", p.Slug),
			LastMod: lastMod.Format("2006-01-02"),
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}); err != nil {
		return feed.Document{}, fmt.Errorf("pubfs: sitemap: %w", err)
	}
	return feed.Document{
		Kind:        kindSitemap,
		Epoch:       idx.Epoch(),
		Version:     idx.Version(),
		ContentType: "application/xml; charset=utf-8",
		Updated:     time.Now(),
		Body:        buf.Bytes(),
	}, nil
}
