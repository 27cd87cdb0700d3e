package content

import (
	"slices"
	"sort"
	"strings"
	"time"
)

// Index is an immutable, versioned view of every post built from the
// content directory. Slices returned by its methods are shared between
// readers and must not be modified.
type Index struct {
	version   uint64
	epoch     string
	builtAt   time.Time
	bySlug    map[string]*Post
	all       []*Post
	published []*Post
	byTag     map[string][]string
	tags      []string
	excluded  []Exclusion
}

// BuildIndex assembles an Index from per-source build results. Failed
// results and every source claiming a duplicated slug are excluded and
// reported by Excluded.
func BuildIndex(version uint64, results []Result) *Index {
	idx := &Index{
		version: version,
		builtAt: time.Now(),
		bySlug:  make(map[string]*Post, len(results)),
		byTag:   make(map[string][]string),
	}

	claims := make(map[string][]*Post, len(results))
	for _, r := range results {
		if !r.Built() {
			idx.excluded = append(idx.excluded, Exclusion{Path: r.Path, Err: r.Err})
			continue
		}
		claims[r.Post.Slug] = append(claims[r.Post.Slug], r.Post)
	}

	for slug, posts := range claims {
		if len(posts) == 1 {
			idx.bySlug[slug] = posts[0]
			idx.all = append(idx.all, posts[0])
			continue
		}
		paths := make([]string, len(posts))
		for i, p := range posts {
			paths[i] = p.Path
		}
		sort.Strings(paths)
		for i, path := range paths {
			others := slices.Concat(paths[:i:i], paths[i+1:])
			idx.excluded = append(idx.excluded, Exclusion{
				Path: path,
				Err:  &DuplicateSlugError{Slug: slug, Path: path, Others: others},
			})
		}
	}
	sort.Slice(idx.excluded, func(i, j int) bool {
		return idx.excluded[i].Path < idx.excluded[j].Path
	})

	slices.SortFunc(idx.all, comparePosts)
	for _, p := range idx.all {
		if p.Draft {
			continue
		}
		idx.published = append(idx.published, p)
		for _, t := range p.Tags {
			idx.byTag[t] = append(idx.byTag[t], p.Slug)
		}
	}
	for t := range idx.byTag {
		idx.tags = append(idx.tags, t)
	}
	sort.Strings(idx.tags)

	return idx
}

// comparePosts orders by date descending, then slug ascending.
func comparePosts(a, b *Post) int {
	if c := b.Date.Compare(a.Date); c != 0 {
		return c
	}
	return strings.Compare(a.Slug, b.Slug)
}

// Version returns the monotonically increasing index version.
func (idx *Index) Version() uint64 { return idx.version }

// Epoch identifies the Store that installed the index. Versions restart at
// one in every process, so validators handed to clients combine the two.
// It is empty for an Index built outside a Store.
func (idx *Index) Epoch() string { return idx.epoch }

// BuiltAt returns when the index was assembled.
func (idx *Index) BuiltAt() time.Time { return idx.builtAt }

// Len returns the number of posts in the index, drafts included.
func (idx *Index) Len() int { return len(idx.all) }

// Get returns the post with slug, drafts included.
func (idx *Index) Get(slug string) (*Post, bool) {
	p, ok := idx.bySlug[slug]
	return p, ok
}

// All returns every post, drafts included, in publication order.
func (idx *Index) All() []*Post { return idx.all }

// Published returns non-draft posts, newest first.
func (idx *Index) Published() []*Post { return idx.published }

// Tagged returns published posts carrying tag, newest first.
func (idx *Index) Tagged(tag string) []*Post {
	slugs := idx.byTag[NormalizeTag(tag)]
	posts := make([]*Post, 0, len(slugs))
	for _, s := range slugs {
		posts = append(posts, idx.bySlug[s])
	}
	return posts
}

// TagSlugs returns the ordered slugs filed under tag.
func (idx *Index) TagSlugs(tag string) []string { return idx.byTag[NormalizeTag(tag)] }

// Tags returns every tag used by a published post, sorted.
func (idx *Index) Tags() []string { return idx.tags }

// Excluded returns the sources left out of this index and why.
func (idx *Index) Excluded() []Exclusion { return idx.excluded }

// Related returns published posts sharing at least one tag with p.
func (idx *Index) Related(p *Post, limit int) []*Post {
	var related []*Post
	for _, other := range idx.published {
		if other.Slug == p.Slug {
			continue
		}
		for _, t := range other.Tags {
			if p.HasTag(t) {
				related = append(related, other)
				break
			}
		}
		if limit > 0 && len(related) == limit {
			break
		}
	}
	return related
}

// Page is one page of published post summaries.
type Page struct {
	Posts   []PostSummary
	Page    int
	Limit   int
	Total   int
	Version uint64
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool { return p.Page*p.Limit < p.Total }

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool { return p.Page > 1 }

// Paginate returns the 1-based page of published posts. A limit of zero or
// less returns every post on one page.
func (idx *Index) Paginate(page, limit int) Page {
	return paginate(idx.published, page, limit, idx.version)
}

// PaginateTag is Paginate restricted to published posts carrying tag.
func (idx *Index) PaginateTag(tag string, page, limit int) Page {
	return paginate(idx.Tagged(tag), page, limit, idx.version)
}

func paginate(posts []*Post, page, limit int, version uint64) Page {
	total := len(posts)
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = total
		page = 1
	}
	out := Page{Page: page, Limit: limit, Total: total, Version: version}
	start := (page - 1) * limit
	if start >= total {
		return out
	}
	end := min(start+limit, total)
	out.Posts = summarize(posts[start:end])
	return out
}

func summarize(posts []*Post) []PostSummary {
	out := make([]PostSummary, len(posts))
	for i, p := range posts {
		out[i] = p.Summarize()
	}
	return out
}
