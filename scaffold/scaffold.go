// Package scaffold provides the embedded templates used by `pubfs new`.
package scaffold

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"text/template"
	"time"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

// Post holds the template variables for a new post.
type Post struct {
	Title string
	Date  time.Time
	Tags  []string
	Draft bool
}

var funcs = template.FuncMap{
	// yaml renders v as a JSON scalar or flow sequence, which YAML reads
	// back unchanged whatever characters it contains.
	"yaml": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}

// RenderPost executes templates/post.md.tmpl for p.
func RenderPost(p Post) ([]byte, error) {
	tmpl, err := template.New("post.md.tmpl").Funcs(funcs).ParseFS(Templates, "templates/post.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse post template: %w", err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("execute post template: %w", err)
	}
	return buf.Bytes(), nil
}
