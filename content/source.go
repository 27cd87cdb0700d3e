package content

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Source is the raw record read from one post file, before rendering.
type Source struct {
	Path    string
	Slug    string
	Fields  FrontMatter
	Body    string
	Raw     []byte
	ModTime time.Time
	Size    int64
}

// LoadOptions controls how sources are interpreted.
type LoadOptions struct {
	// Location is used for dates written without a zone. Defaults to UTC.
	Location *time.Location
}

// LoadSource reads and parses the post file at path.
func LoadSource(path string, opts LoadOptions) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Source{}, &SourceError{Path: path, Err: wrapUnreadable(err)}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Source{}, &SourceError{Path: path, Err: wrapUnreadable(err)}
	}
	src, err := ParseSource(path, raw, opts)
	if err != nil {
		return Source{}, err
	}
	src.ModTime = info.ModTime()
	src.Size = info.Size()
	return src, nil
}

// ParseSource parses raw post bytes. path is used for the default slug and
// for error reporting only.
func ParseSource(path string, raw []byte, opts LoadOptions) (Source, error) {
	header, body, ok := splitFrontMatter(string(normalize(raw)))
	if !ok {
		return Source{}, sourceErrorf(path, ErrMalformedFrontMatter, "no %q line closing the header", delim)
	}
	fm, err := parseFrontMatter(path, header, opts.Location)
	if err != nil {
		return Source{}, err
	}

	slug := fm.Slug
	if slug == "" {
		base := filepath.Base(path)
		slug = strings.TrimSuffix(base, filepath.Ext(base))
	}
	slug = Slugify(slug)
	if slug == "" {
		return Source{}, sourceErrorf(path, ErrMalformedFrontMatter, "slug resolves to an empty string")
	}

	return Source{
		Path:   path,
		Slug:   slug,
		Fields: fm,
		Body:   body,
		Raw:    raw,
		Size:   int64(len(raw)),
	}, nil
}

func wrapUnreadable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnreadableSource, err)
}

// normalize strips a UTF-8 byte order mark and converts CRLF line endings.
func normalize(raw []byte) []byte {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if bytes.IndexByte(raw, '\r') < 0 {
		return raw
	}
	return bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
}
