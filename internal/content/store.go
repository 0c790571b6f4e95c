package content

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Store is the immutable set of entities and posts of one snapshot.
// It is populated by Build and must not be mutated afterwards.
type Store struct {
	entities    map[Key]*Entity
	byPermalink map[string]*Entity
	posts       []*BlogPost
	skipped     []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		entities:    map[Key]*Entity{},
		byPermalink: map[string]*Entity{},
	}
}

// Add registers e. Keys and permalinks must be unique.
func (s *Store) Add(e *Entity) error {
	k := e.Key()
	if _, dup := s.entities[k]; dup {
		return fmt.Errorf("duplicate entity %q (language %q, version %q)", k.ID, k.Language, k.Version)
	}
	p := normalizePermalink(e.Permalink)
	if other, dup := s.byPermalink[p]; dup {
		return fmt.Errorf("permalink %q of %q already used by %q", e.Permalink, e.ID, other.ID)
	}
	s.entities[k] = e
	s.byPermalink[p] = e
	return nil
}

// Get looks an entity up by key.
func (s *Store) Get(k Key) (*Entity, bool) {
	e, ok := s.entities[k]
	return e, ok
}

// ByPermalink looks an entity up by permalink. A leading "/" is ignored.
func (s *Store) ByPermalink(permalink string) (*Entity, bool) {
	e, ok := s.byPermalink[normalizePermalink(permalink)]
	return e, ok
}

// Entities returns all entities ordered by permalink.
func (s *Store) Entities() []*Entity {
	out := make([]*Entity, 0, len(s.entities))
	for _, e := range s.entities {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *Entity) int { return cmp.Compare(a.Permalink, b.Permalink) })
	return out
}

// Len returns the number of entities.
func (s *Store) Len() int {
	return len(s.entities)
}

// Posts returns the blog posts, newest first. Callers must not modify the slice.
func (s *Store) Posts() []*BlogPost {
	return s.posts
}

// Skipped lists the source files left out because they could not be parsed.
func (s *Store) Skipped() []string {
	return s.skipped
}

// setPosts orders posts by date descending, then by path descending.
func (s *Store) setPosts(posts []*BlogPost) {
	slices.SortStableFunc(posts, func(a, b *BlogPost) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.Path, a.Path)
	})
	s.posts = posts
}

func normalizePermalink(p string) string {
	return strings.TrimPrefix(p, "/")
}
