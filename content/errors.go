package content

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnreadableSource is returned when a source file cannot be read.
	ErrUnreadableSource = errors.New("unreadable source")
	// ErrMalformedFrontMatter is returned when the front-matter block is missing or invalid.
	ErrMalformedFrontMatter = errors.New("malformed front matter")
	// ErrMissingRequiredField is returned when title or date is absent.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrInvalidDate is returned when the date field cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrNotYetInitialized is returned by reads before the first successful build.
	ErrNotYetInitialized = errors.New("content store not yet initialized")
	// ErrNotFound is returned when a requested post does not exist.
	ErrNotFound = errors.New("post not found")
	// ErrRebuildDiscarded is returned by Refresh when a newer build was installed first.
	ErrRebuildDiscarded = errors.New("rebuild superseded by a newer build")
)

// SourceError scopes a load or render failure to one source file.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *SourceError) Unwrap() error { return e.Err }

func sourceErrorf(path string, kind error, format string, args ...any) *SourceError {
	return &SourceError{Path: path, Err: fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))}
}

// DuplicateSlugError is reported for every source that resolves to a slug
// claimed by another source in the same build.
type DuplicateSlugError struct {
	Slug   string
	Path   string
	Others []string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("%s: duplicate slug %q (also claimed by %s)", e.Path, e.Slug, strings.Join(e.Others, ", "))
}

// Exclusion records a source location that was left out of an index.
type Exclusion struct {
	Path string
	Err  error
}

func (x Exclusion) Error() string {
	return x.Err.Error()
}
