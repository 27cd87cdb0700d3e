package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderBuild(t *testing.T) {
	dir := t.TempDir()
	path := writePost(t, dir, "code-post.md", "---\ntitle: Code\ndate: 2024-01-01\ntags: [go]\n---\nIntro <b>text</b>.\n\n```go\nfunc main() {}\n```\n")

	r := newTestBuilder().Build(path)
	require.True(t, r.Built(), "build failed: %v", r.Err)

	p := r.Post
	assert.Equal(t, "code-post", p.Slug)
	assert.Equal(t, "/blog/code-post/", p.Link())
	assert.Equal(t, "Intro text.", p.Summary)
	assert.Contains(t, p.HTML, "code-lang-go")
	assert.NotContains(t, p.HTML, "<b>")
	assert.Equal(t, path, p.Path)
	assert.Len(t, p.Fingerprint, 64)
	assert.True(t, p.HasTag("GO"))
}

func TestBuilderFrontMatterSummaryWins(t *testing.T) {
	r := newTestBuilder().FromBytes("s.md", []byte("---\ntitle: S\ndate: 2024-01-01\nsummary: Given\n---\nBody text.\n"), nil)
	require.True(t, r.Built())
	assert.Equal(t, "Given", r.Post.Summary)
}

func TestBuilderReportsLocation(t *testing.T) {
	dir := t.TempDir()
	path := writePost(t, dir, "broken.md", "no front matter here")

	r := newTestBuilder().Build(path)
	assert.False(t, r.Built())
	assert.Equal(t, path, r.Path)
	assert.ErrorIs(t, r.Err, ErrMalformedFrontMatter)
	assert.True(t, strings.HasPrefix(r.Err.Error(), path))
}

func TestFingerprintNormalizesLineEndings(t *testing.T) {
	lf := Fingerprint([]byte("a\nb\n"))
	assert.Equal(t, lf, Fingerprint([]byte("a\r\nb\r\n")))
	assert.Equal(t, lf, Fingerprint([]byte("\xEF\xBB\xBFa\nb\n")))
	assert.NotEqual(t, lf, Fingerprint([]byte("a\nc\n")))
}

func TestFingerprintStableAcrossBuilds(t *testing.T) {
	dir := t.TempDir()
	path := writePost(t, dir, "p.md", postSource("P", "2024-01-01", false))
	b := newTestBuilder()

	first := b.Build(path)
	second := b.Build(path)
	require.True(t, first.Built())
	require.True(t, second.Built())
	assert.Equal(t, first.Post.Fingerprint, second.Post.Fingerprint)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "p.md"), []byte(strings.Replace(postSource("P", "2024-01-01", false), "Body", "body", 1)), 0o644))
	third := b.Build(path)
	require.True(t, third.Built())
	assert.NotEqual(t, first.Post.Fingerprint, third.Post.Fingerprint)
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "b.md", "x")
	writePost(t, dir, "a.markdown", "x")
	writePost(t, dir, "nested/c.md", "x")
	writePost(t, dir, ".hidden/d.md", "x")
	writePost(t, dir, "e.txt", "x")

	paths, err := Scan(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.markdown"),
		filepath.Join(dir, "b.md"),
		filepath.Join(dir, "nested", "c.md"),
	}, paths)
}
