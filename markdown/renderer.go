// Package markdown renders post bodies to HTML with goldmark and
// class-based syntax highlighting for fenced code blocks.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Renderer converts markdown to HTML. Raw HTML in the source is never
// passed through. A Renderer is safe for concurrent use.
type Renderer struct {
	md           goldmark.Markdown
	highlighters *Highlighters
	summaryLen   int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithHighlighters replaces the default chroma-backed table.
func WithHighlighters(h *Highlighters) Option {
	return func(r *Renderer) {
		r.highlighters = h
	}
}

// WithSummaryLength caps generated summaries at n runes.
func WithSummaryLength(n int) Option {
	return func(r *Renderer) {
		r.summaryLen = n
	}
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{summaryLen: 280}
	for _, opt := range opts {
		opt(r)
	}
	if r.highlighters == nil {
		r.highlighters = NewHighlighters(DefaultStyle)
	}
	r.md = goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithXHTML(),
			renderer.WithNodeRenderers(
				util.Prioritized(&codeBlockRenderer{highlighters: r.highlighters}, 100),
			),
		),
	)
	return r
}

// Highlighters returns the strategy table used for fenced code.
func (r *Renderer) Highlighters() *Highlighters { return r.highlighters }

// Render returns the HTML for body. It never fails: if conversion errors,
// the escaped source is returned inside a <pre> block.
func (r *Renderer) Render(body []byte) string {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return "<pre>" + html.EscapeString(string(body)) + "</pre>"
	}
	return buf.String()
}

// Component returns a templ.Component that renders body as HTML.
func (r *Renderer) Component(body string) templ.Component {
	return HTML(r.Render([]byte(body)))
}

// HTML wraps already-rendered post HTML as a templ.Component.
func HTML(rendered string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, rendered)
		return err
	})
}

// codeBlockRenderer replaces goldmark's fenced code output with the
// strategy registered for the block's language.
type codeBlockRenderer struct {
	highlighters *Highlighters
}

func (c *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, c.renderFencedCodeBlock)
}

func (c *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var lang string
	if n.Info != nil {
		lang = cleanLang(string(n.Info.Segment.Value(source)))
	}

	var code strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	if lang == "" {
		return ast.WalkSkipChildren, Plain.Highlight(w, "", code.String())
	}
	_, _ = w.WriteString(`<div class="code-block-wrapper"><span class="code-lang code-lang-` + lang + `">` + lang + `</span>`)
	if err := c.highlighters.Lookup(lang).Highlight(w, lang, code.String()); err != nil {
		return ast.WalkStop, err
	}
	_, _ = w.WriteString("</div>\n")
	return ast.WalkSkipChildren, nil
}
