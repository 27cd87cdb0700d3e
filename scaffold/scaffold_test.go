package scaffold

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubfs/content"
)

func TestRenderPostParsesBack(t *testing.T) {
	date := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	raw, err := RenderPost(Post{
		Title: `Colons: "quotes" & #hashes`,
		Date:  date,
		Tags:  []string{"Go", "notes"},
		Draft: true,
	})
	require.NoError(t, err)

	src, err := content.ParseSource("posts/new.md", raw, content.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, `Colons: "quotes" & #hashes`, src.Fields.Title)
	assert.True(t, src.Fields.Date.Equal(date))
	assert.Equal(t, []string{"go", "notes"}, src.Fields.Tags)
	assert.True(t, src.Fields.Draft)
}

func TestRenderPostWithoutTags(t *testing.T) {
	raw, err := RenderPost(Post{Title: "Plain", Date: time.Now()})
	require.NoError(t, err)
	assert.Contains(t, string(raw), "tags: []")
	assert.NotContains(t, string(raw), "draft:")
}
