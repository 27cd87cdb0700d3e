package markdown

import (
	"html"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// ClassPrefix is prepended to every token class emitted by the chroma
// highlighter. The companion stylesheet uses the same prefix.
const ClassPrefix = "hl-"

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "github"

// Highlighter writes a code block for one language. Implementations must
// escape every character of code they emit.
type Highlighter interface {
	Highlight(w io.Writer, lang, code string) error
}

// HighlighterFunc adapts a function to the Highlighter interface.
type HighlighterFunc func(w io.Writer, lang, code string) error

// Highlight calls f(w, lang, code).
func (f HighlighterFunc) Highlight(w io.Writer, lang, code string) error {
	return f(w, lang, code)
}

// Plain renders code escaped and unhighlighted. It is the fallback for
// unknown or missing language tags.
var Plain Highlighter = HighlighterFunc(func(w io.Writer, lang, code string) error {
	var b strings.Builder
	b.WriteString(`<pre class="code-block"><code`)
	if lang != "" {
		b.WriteString(` class="language-` + lang + `"`)
	}
	b.WriteString(">")
	b.WriteString(html.EscapeString(code))
	b.WriteString("</code></pre>")
	_, err := io.WriteString(w, b.String())
	return err
})

// Highlighters is a lookup table of highlighting strategies keyed by
// language tag. Lookups fall back to chroma's lexer registry and then to
// Plain. Register entries before the table is shared between goroutines.
type Highlighters struct {
	byLang    map[string]Highlighter
	formatter *chromahtml.Formatter
	style     *chroma.Style
	fallback  Highlighter
}

// NewHighlighters returns a table backed by chroma using the named style.
func NewHighlighters(style string) *Highlighters {
	if style == "" {
		style = DefaultStyle
	}
	return &Highlighters{
		byLang: make(map[string]Highlighter),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.ClassPrefix(ClassPrefix),
		),
		style:    styles.Get(style),
		fallback: Plain,
	}
}

// Register installs h for lang, overriding chroma.
func (hs *Highlighters) Register(lang string, h Highlighter) {
	hs.byLang[cleanLang(lang)] = h
}

// Lookup returns the strategy for lang.
func (hs *Highlighters) Lookup(lang string) Highlighter {
	if lang == "" {
		return hs.fallback
	}
	if h, ok := hs.byLang[lang]; ok {
		return h
	}
	if lexer := lexers.Get(lang); lexer != nil {
		return &chromaHighlighter{lexer: chroma.Coalesce(lexer), formatter: hs.formatter, style: hs.style}
	}
	return hs.fallback
}

// WriteCSS writes the stylesheet matching the token classes.
func (hs *Highlighters) WriteCSS(w io.Writer) error {
	return hs.formatter.WriteCSS(w, hs.style)
}

type chromaHighlighter struct {
	lexer     chroma.Lexer
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

func (c *chromaHighlighter) Highlight(w io.Writer, lang, code string) error {
	it, err := c.lexer.Tokenise(nil, code)
	if err != nil {
		return Plain.Highlight(w, lang, code)
	}
	return c.formatter.Format(w, c.style, it)
}

// cleanLang reduces a fence info string to a safe, lowercase language tag.
func cleanLang(info string) string {
	if i := strings.IndexAny(info, " \t{"); i >= 0 {
		info = info[:i]
	}
	info = strings.ToLower(info)
	var b strings.Builder
	for _, r := range info {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', strings.ContainsRune("+#._-", r):
			b.WriteRune(r)
		}
		if b.Len() >= 32 {
			break
		}
	}
	return b.String()
}
