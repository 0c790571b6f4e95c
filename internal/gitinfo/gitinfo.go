// Package gitinfo reads last-modified information of content files from git history.
package gitinfo

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/page"
)

// Reader caches opened repositories and per-file results. A Reader belongs to one
// snapshot; a reload starts with a fresh one.
type Reader struct {
	mu      sync.Mutex
	repos   map[string]*repo
	results map[string]*page.Updated
}

type repo struct {
	r    *git.Repository
	root string
}

// NewReader returns an empty Reader.
func NewReader() *Reader {
	return &Reader{repos: map[string]*repo{}, results: map[string]*page.Updated{}}
}

// LastUpdated returns the author and time of the newest commit touching file.
// Files outside a repository or without history yield nil without error.
func (r *Reader) LastUpdated(file string) (*page.Updated, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.results[abs]; ok {
		return u, nil
	}

	rp, err := r.open(filepath.Dir(abs))
	if err != nil || rp == nil {
		return nil, err
	}
	rel, err := filepath.Rel(rp.root, abs)
	if err != nil {
		return nil, err
	}
	rel = filepath.ToSlash(rel)

	iter, err := rp.r.Log(&git.LogOptions{FileName: &rel, Order: git.LogOrderCommitterTime})
	if err != nil {
		// An empty repository has no HEAD yet.
		r.results[abs] = nil
		return nil, nil
	}
	defer iter.Close()

	var updated *page.Updated
	errStop := errors.New("stop")
	err = iter.ForEach(func(c *object.Commit) error {
		updated = &page.Updated{Time: c.Author.When, Author: c.Author.Name}
		return errStop
	})
	if err != nil && !errors.Is(err, errStop) {
		return nil, derrors.WrapError(err, derrors.CategoryGit, "failed to walk git log").
			WithContext("file", abs).Build()
	}
	r.results[abs] = updated
	return updated, nil
}

func (r *Reader) open(dir string) (*repo, error) {
	if rp, ok := r.repos[dir]; ok {
		return rp, nil
	}
	gr, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			r.repos[dir] = nil
			return nil, nil
		}
		return nil, derrors.WrapError(err, derrors.CategoryGit, "failed to open git repository").
			WithContext("path", dir).Build()
	}
	wt, err := gr.Worktree()
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryGit, "repository has no worktree").
			WithContext("path", dir).Build()
	}
	rp := &repo{r: gr, root: wt.Filesystem.Root()}
	r.repos[dir] = rp
	return rp, nil
}
