package feed

import (
	"encoding/xml"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubfs/content"
)

func post(slug, date string, draft bool, tags ...string) content.Result {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return content.Result{Path: slug + ".md", Post: &content.Post{
		Slug:    slug,
		Title:   "Title " + slug,
		Date:    d,
		Tags:    tags,
		Draft:   draft,
		Summary: "Summary of " + slug,
		HTML:    "<p>Body of <em>" + slug + "</em></p>\n",
	}}
}

func testBuilder() *Builder {
	return New(Config{
		Title:       "Test Site",
		Link:        "https://example.com",
		Description: "A test site",
		Author:      "Tester",
	})
}

type parsedAtom struct {
	Updated   string `xml:"updated"`
	Generator struct {
		Version string `xml:"version,attr"`
	} `xml:"generator"`
	Entries []struct {
		ID         string `xml:"id"`
		Published  string `xml:"published"`
		Content    string `xml:"content"`
		Categories []struct {
			Term string `xml:"term,attr"`
		} `xml:"category"`
	} `xml:"entry"`
}

type parsedRSS struct {
	Channel struct {
		LastBuildDate string `xml:"lastBuildDate"`
		Generator     string `xml:"generator"`
		Items         []struct {
			Link       string   `xml:"link"`
			PubDate    string   `xml:"pubDate"`
			Encoded    string   `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
			Categories []string `xml:"category"`
		} `xml:"item"`
	} `xml:"channel"`
}

func TestAtomOrderingAndUpdated(t *testing.T) {
	idx := content.BuildIndex(3, []content.Result{
		post("jan-first", "2024-01-01", false),
		post("feb-first", "2024-02-01", false, "go"),
		post("jan-mid", "2024-01-15", false),
	})

	doc, err := testBuilder().Atom(idx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), doc.Version)
	assert.Equal(t, AtomContentType, doc.ContentType)
	assert.True(t, doc.Updated.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))

	var got parsedAtom
	require.NoError(t, xml.Unmarshal(doc.Body, &got))
	assert.Equal(t, "2024-02-01T00:00:00Z", got.Updated)
	assert.Equal(t, "3", got.Generator.Version)
	require.Len(t, got.Entries, 3)
	assert.Equal(t, "https://example.com/blog/feb-first/", got.Entries[0].ID)
	assert.Equal(t, "https://example.com/blog/jan-mid/", got.Entries[1].ID)
	assert.Equal(t, "https://example.com/blog/jan-first/", got.Entries[2].ID)
	assert.Equal(t, "<p>Body of <em>feb-first</em></p>\n", got.Entries[0].Content)
	require.Len(t, got.Entries[0].Categories, 1)
	assert.Equal(t, "go", got.Entries[0].Categories[0].Term)
}

func TestRSSOrderingAndUpdated(t *testing.T) {
	idx := content.BuildIndex(7, []content.Result{
		post("jan-first", "2024-01-01", false),
		post("feb-first", "2024-02-01", false, "go", "web"),
		post("jan-mid", "2024-01-15", false),
	})

	doc, err := testBuilder().RSS(idx)
	require.NoError(t, err)
	assert.Equal(t, RSSContentType, doc.ContentType)

	var got parsedRSS
	require.NoError(t, xml.Unmarshal(doc.Body, &got))
	assert.Equal(t, "Thu, 01 Feb 2024 00:00:00 +0000", got.Channel.LastBuildDate)
	assert.Equal(t, "pubfs 7", got.Channel.Generator)
	require.Len(t, got.Channel.Items, 3)
	assert.Equal(t, "https://example.com/blog/feb-first/", got.Channel.Items[0].Link)
	assert.Equal(t, "https://example.com/blog/jan-mid/", got.Channel.Items[1].Link)
	assert.Equal(t, "https://example.com/blog/jan-first/", got.Channel.Items[2].Link)
	assert.Equal(t, []string{"go", "web"}, got.Channel.Items[0].Categories)
	assert.Equal(t, "<p>Body of <em>feb-first</em></p>\n", got.Channel.Items[0].Encoded)
}

func TestDraftsLeftOut(t *testing.T) {
	idx := content.BuildIndex(1, []content.Result{
		post("public", "2024-01-01", false),
		post("secret", "2024-03-01", true),
	})

	doc, err := testBuilder().Atom(idx)
	require.NoError(t, err)
	assert.NotContains(t, string(doc.Body), "secret")
	assert.True(t, doc.Updated.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestEmptyFeed(t *testing.T) {
	idx := content.BuildIndex(1, nil)

	doc, err := testBuilder().RSS(idx)
	require.NoError(t, err)
	assert.True(t, doc.Updated.Equal(time.Unix(0, 0)))

	var got parsedRSS
	require.NoError(t, xml.Unmarshal(doc.Body, &got))
	assert.Empty(t, got.Channel.Items)
}

func TestMaxEntries(t *testing.T) {
	var results []content.Result
	for i := 1; i <= 30; i++ {
		results = append(results, post(fmt.Sprintf("p%02d", i), fmt.Sprintf("2024-01-%02d", i), false))
	}
	idx := content.BuildIndex(1, results)

	b := testBuilder()
	doc, err := b.Atom(idx)
	require.NoError(t, err)
	var got parsedAtom
	require.NoError(t, xml.Unmarshal(doc.Body, &got))
	assert.Len(t, got.Entries, DefaultMaxEntries)
	assert.Equal(t, "https://example.com/blog/p30/", got.Entries[0].ID)

	b.Config.MaxEntries = 5
	doc, err = b.Atom(idx)
	require.NoError(t, err)
	got = parsedAtom{}
	require.NoError(t, xml.Unmarshal(doc.Body, &got))
	assert.Len(t, got.Entries, 5)
}

func TestETag(t *testing.T) {
	idx := content.BuildIndex(4, nil)
	b := testBuilder()

	rss, err := b.RSS(idx)
	require.NoError(t, err)
	atom, err := b.Atom(idx)
	require.NoError(t, err)

	assert.Equal(t, `W/"rss-4"`, rss.ETag())
	assert.Equal(t, `W/"atom-4"`, atom.ETag())

	next, err := b.RSS(content.BuildIndex(5, nil))
	require.NoError(t, err)
	assert.NotEqual(t, rss.ETag(), next.ETag())

	stamped := Document{Kind: KindRSS, Epoch: "abc", Version: 4}
	assert.Equal(t, `W/"rss-abc-4"`, stamped.ETag())
}
