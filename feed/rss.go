package feed

import (
	"encoding/xml"
	"strconv"
	"time"

	"github.com/eringen/pubfs/content"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Content string     `xml:"xmlns:content,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Generator     string    `xml:"generator"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string     `xml:"title"`
	Link        string     `xml:"link"`
	Description string     `xml:"description"`
	Content     rssEncoded `xml:"content:encoded"`
	PubDate     string     `xml:"pubDate"`
	GUID        rssGUID    `xml:"guid"`
	Categories  []string   `xml:"category"`
}

type rssEncoded struct {
	Data string `xml:",cdata"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// RSS renders idx as an RSS 2.0 document.
func (b *Builder) RSS(idx *content.Index) (Document, error) {
	posts := b.entries(idx)
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		link := b.absolute(p.Link())
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        link,
			Description: p.Summary,
			Content:     rssEncoded{Data: p.HTML},
			PubDate:     p.Date.Format(time.RFC1123Z),
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			Categories:  p.Tags,
		})
	}

	up := updated(posts)
	body, err := encode(rssXML{
		Version: "2.0",
		Content: "http://purl.org/rss/1.0/modules/content/",
		Channel: rssChannel{
			Title:         b.Config.Title,
			Link:          b.Config.Link,
			Description:   b.Config.Description,
			LastBuildDate: up.Format(time.RFC1123Z),
			Generator:     Generator + " " + strconv.FormatUint(idx.Version(), 10),
			Items:         items,
		},
	})
	if err != nil {
		return Document{}, err
	}
	return Document{
		Kind:        KindRSS,
		Epoch:       idx.Epoch(),
		Version:     idx.Version(),
		ContentType: RSSContentType,
		Updated:     up,
		Body:        body,
	}, nil
}
