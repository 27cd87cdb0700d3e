package pubfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubfs/content"
	"github.com/eringen/pubfs/feed"
)

func countingBuild(calls *int) func(*content.Index) (feed.Document, error) {
	return func(idx *content.Index) (feed.Document, error) {
		*calls++
		return feed.Document{Kind: "test", Version: idx.Version()}, nil
	}
}

func TestDocumentCacheKeyedByVersion(t *testing.T) {
	c := NewDocumentCache()
	calls := 0
	build := countingBuild(&calls)

	v1 := content.BuildIndex(1, nil)
	v2 := content.BuildIndex(2, nil)

	doc, err := c.Get("rss", v1, build)
	require.NoError(t, err)
	assert.EqualValues(t, 1, doc.Version)
	_, _ = c.Get("rss", v1, build)
	assert.Equal(t, 1, calls)

	doc, err = c.Get("rss", v2, build)
	require.NoError(t, err)
	assert.EqualValues(t, 2, doc.Version)
	assert.Equal(t, 2, calls)

	// A reader still holding the old snapshot gets a fresh build that
	// does not replace the newer entry.
	doc, _ = c.Get("rss", v1, build)
	assert.EqualValues(t, 1, doc.Version)
	doc, _ = c.Get("rss", v2, build)
	assert.EqualValues(t, 2, doc.Version)
	assert.Equal(t, 3, calls)
}

func TestBuildURL(t *testing.T) {
	assert.Equal(t, "https://example.com/", BuildURL("https://example.com"))
	assert.Equal(t, "https://example.com/blog/x/", BuildURL("https://example.com", "blog", "x"))
	assert.Equal(t, "https://example.com/sub/tag/go/", BuildURL("https://example.com/sub/", "tag", "go"))
}
