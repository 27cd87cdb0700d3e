package feed

import (
	"encoding/xml"
	"strconv"
	"time"

	"github.com/eringen/pubfs/content"
)

const atomNS = "http://www.w3.org/2005/Atom"

type atomXML struct {
	XMLName   xml.Name      `xml:"feed"`
	NS        string        `xml:"xmlns,attr"`
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Subtitle  string        `xml:"subtitle,omitempty"`
	Updated   string        `xml:"updated"`
	Links     []atomLink    `xml:"link"`
	Author    *atomPerson   `xml:"author,omitempty"`
	Generator atomGenerator `xml:"generator"`
	Entries   []atomEntry   `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
	Type string `xml:"type,attr,omitempty"`
}

type atomPerson struct {
	Name string `xml:"name"`
}

type atomGenerator struct {
	Version string `xml:"version,attr"`
	Value   string `xml:",chardata"`
}

type atomText struct {
	Type  string `xml:"type,attr,omitempty"`
	Value string `xml:",chardata"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Title      string         `xml:"title"`
	Links      []atomLink     `xml:"link"`
	Published  string         `xml:"published"`
	Updated    string         `xml:"updated"`
	Summary    atomText       `xml:"summary"`
	Content    atomText       `xml:"content"`
	Categories []atomCategory `xml:"category"`
}

// Atom renders idx as an Atom 1.0 document.
func (b *Builder) Atom(idx *content.Index) (Document, error) {
	posts := b.entries(idx)
	entries := make([]atomEntry, 0, len(posts))
	for _, p := range posts {
		link := b.absolute(p.Link())
		date := p.Date.Format(time.RFC3339)
		cats := make([]atomCategory, len(p.Tags))
		for i, t := range p.Tags {
			cats[i] = atomCategory{Term: t}
		}
		entries = append(entries, atomEntry{
			ID:         link,
			Title:      p.Title,
			Links:      []atomLink{{Href: link, Rel: "alternate", Type: "text/html"}},
			Published:  date,
			Updated:    date,
			Summary:    atomText{Type: "text", Value: p.Summary},
			Content:    atomText{Type: "html", Value: p.HTML},
			Categories: cats,
		})
	}

	var author *atomPerson
	if b.Config.Author != "" {
		author = &atomPerson{Name: b.Config.Author}
	}
	up := updated(posts)
	body, err := encode(atomXML{
		NS:       atomNS,
		ID:       b.absolute("/"),
		Title:    b.Config.Title,
		Subtitle: b.Config.Description,
		Updated:  up.Format(time.RFC3339),
		Links: []atomLink{
			{Href: b.absolute("/")},
			{Href: b.absolute("/atom.xml"), Rel: "self", Type: "application/atom+xml"},
		},
		Author:    author,
		Generator: atomGenerator{Version: strconv.FormatUint(idx.Version(), 10), Value: Generator},
		Entries:   entries,
	})
	if err != nil {
		return Document{}, err
	}
	return Document{
		Kind:        KindAtom,
		Epoch:       idx.Epoch(),
		Version:     idx.Version(),
		ContentType: AtomContentType,
		Updated:     up,
		Body:        body,
	}, nil
}
