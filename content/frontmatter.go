package content

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const delim = "---"

// dateLayouts are tried in order; zone-less layouts use the loader's location.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// FrontMatter holds the recognized header fields of a post. Keys the loader
// does not know are kept in Extra.
type FrontMatter struct {
	Title   string
	Date    time.Time
	Tags    []string
	Draft   bool
	Slug    string
	Summary string
	Extra   map[string]any
}

// splitFrontMatter separates the header block from the markdown body. The
// opening delimiter line is optional; the closing one is not.
func splitFrontMatter(text string) (header, body string, ok bool) {
	text = strings.TrimPrefix(text, delim+"\n")
	if strings.HasPrefix(text, delim+"\n") {
		return "", text[len(delim)+1:], true
	}
	if text == delim {
		return "", "", true
	}
	if i := strings.Index(text, "\n"+delim+"\n"); i >= 0 {
		return text[:i], text[i+len(delim)+2:], true
	}
	if strings.HasSuffix(text, "\n"+delim) {
		return strings.TrimSuffix(text, "\n"+delim), "", true
	}
	return "", "", false
}

func parseFrontMatter(path, header string, loc *time.Location) (FrontMatter, error) {
	var fm FrontMatter

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(header), &doc); err != nil {
		return fm, sourceErrorf(path, ErrMalformedFrontMatter, "%v", err)
	}

	var root *yaml.Node
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root = doc.Content[0]
	}
	if root != nil && root.Kind != yaml.MappingNode {
		return fm, sourceErrorf(path, ErrMalformedFrontMatter, "header is not a key/value mapping")
	}

	var haveDate bool
	seen := make(map[string]struct{})
	if root != nil {
		for i := 0; i+1 < len(root.Content); i += 2 {
			key, val := root.Content[i].Value, root.Content[i+1]
			if _, dup := seen[key]; dup {
				return fm, sourceErrorf(path, ErrMalformedFrontMatter, "key %q defined twice", key)
			}
			seen[key] = struct{}{}

			switch key {
			case "title":
				s, err := scalarString(path, key, val)
				if err != nil {
					return fm, err
				}
				fm.Title = strings.TrimSpace(s)
			case "date":
				s, err := scalarString(path, key, val)
				if err != nil {
					return fm, err
				}
				if strings.TrimSpace(s) == "" {
					continue
				}
				t, err := parseDate(s, loc)
				if err != nil {
					return fm, sourceErrorf(path, ErrInvalidDate, "%q", s)
				}
				fm.Date = t
				haveDate = true
			case "tags":
				tags, err := parseTags(path, val)
				if err != nil {
					return fm, err
				}
				fm.Tags = tags
			case "draft":
				if val.Kind != yaml.ScalarNode {
					return fm, sourceErrorf(path, ErrMalformedFrontMatter, "draft must be a boolean")
				}
				if err := val.Decode(&fm.Draft); err != nil {
					return fm, sourceErrorf(path, ErrMalformedFrontMatter, "draft must be a boolean: %v", err)
				}
			case "slug":
				s, err := scalarString(path, key, val)
				if err != nil {
					return fm, err
				}
				fm.Slug = strings.TrimSpace(s)
			case "summary":
				s, err := scalarString(path, key, val)
				if err != nil {
					return fm, err
				}
				fm.Summary = strings.TrimSpace(s)
			default:
				var v any
				if err := val.Decode(&v); err != nil {
					return fm, sourceErrorf(path, ErrMalformedFrontMatter, "field %q: %v", key, err)
				}
				if fm.Extra == nil {
					fm.Extra = make(map[string]any)
				}
				fm.Extra[key] = v
			}
		}
	}

	if fm.Title == "" {
		return fm, sourceErrorf(path, ErrMissingRequiredField, "title")
	}
	if !haveDate {
		return fm, sourceErrorf(path, ErrMissingRequiredField, "date")
	}
	return fm, nil
}

func scalarString(path, key string, n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", sourceErrorf(path, ErrMalformedFrontMatter, "%s must be a single value", key)
	}
	if n.Tag == "!!null" {
		return "", nil
	}
	return n.Value, nil
}

// parseTags accepts a YAML list or a comma-separated string.
func parseTags(path string, n *yaml.Node) ([]string, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		tags := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, sourceErrorf(path, ErrMalformedFrontMatter, "tags must be a list of strings")
			}
			tags = append(tags, item.Value)
		}
		return normalizeTags(tags), nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
		return normalizeTags(strings.Split(n.Value, ",")), nil
	default:
		return nil, sourceErrorf(path, ErrMalformedFrontMatter, "tags must be a list of strings")
	}
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no layout matches %q", s)
}
