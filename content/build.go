package content

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// IsSourceFile reports whether name looks like a post file rather than a
// hidden file or an editor's temporary copy.
func IsSourceFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "#") || strings.HasSuffix(base, "~") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// Scan returns every post file under root in lexical order. Hidden
// directories are skipped.
func Scan(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && IsSourceFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// buildJob is one source location scheduled for a rebuild.
type buildJob struct {
	path    string
	info    fs.FileInfo
	prev    *Post
	changed bool
}

// buildAll builds every job on a bounded worker pool. Results keep the job
// order so that a build is deterministic regardless of scheduling.
func (b *Builder) buildAll(ctx context.Context, jobs []buildJob, workers int) []Result {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(jobs))
	next := make(chan int)

	var wg sync.WaitGroup
	for range min(workers, len(jobs)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				results[i] = b.buildOne(jobs[i])
			}
		}()
	}

feed:
	for i := range jobs {
		select {
		case next <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(next)
	wg.Wait()
	return results
}

// buildOne reuses the previous Post when the file is untouched, reuses its
// rendering when only the metadata changed, and builds from scratch
// otherwise.
func (b *Builder) buildOne(job buildJob) Result {
	prev := job.prev
	if prev != nil && !job.changed && job.info != nil &&
		prev.ModTime.Equal(job.info.ModTime()) && prev.Size == job.info.Size() {
		return Result{Path: job.path, Post: prev, Reused: true}
	}

	src, err := LoadSource(job.path, b.Options)
	if err != nil {
		return Result{Path: job.path, Err: err}
	}
	if prev != nil && prev.Fingerprint == Fingerprint(src.Raw) {
		p := *prev
		p.ModTime, p.Size = src.ModTime, src.Size
		return Result{Path: job.path, Post: &p, Reused: true}
	}
	return b.fromSource(src)
}
