package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserve/internal/config"
)

type fixture struct {
	t     *testing.T
	site  *config.Site
	roots config.Roots
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	site := &config.Site{Title: "T", BaseURL: "/", CustomDocsPath: "docs", BlogPostsPerPage: 10}
	return &fixture{t: t, site: site, roots: config.RootsFor(filepath.Join(base, "website"), site)}
}

func (f *fixture) write(root, rel, content string) {
	f.t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(f.t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(f.t, os.WriteFile(p, []byte(content), 0o600))
}

func (f *fixture) build() *Store {
	f.t.Helper()
	s, err := Build(context.Background(), f.site, f.roots, nil)
	require.NoError(f.t, err)
	return s
}

func TestBuild_CanonicalDocs(t *testing.T) {
	f := newFixture(t)
	f.write(f.roots.Docs, "intro.md", "---\nid: intro\ntitle: Introduction\n---\nHello\n")
	f.write(f.roots.Docs, "guides/setup.md", "---\nid: setup\n---\nSetup\n")
	f.write(f.roots.Docs, "plain.md", "No front matter\n")
	f.write(f.roots.Docs, "assets/readme.md", "ignored\n")

	s := f.build()
	require.Equal(t, 3, s.Len())

	intro, ok := s.ByPermalink("/docs/intro.html")
	require.True(t, ok)
	assert.Equal(t, "intro", intro.ID)
	assert.Equal(t, "intro.md", intro.Source)
	assert.Equal(t, "en", intro.Language)
	assert.Equal(t, "Introduction", intro.Title)
	assert.True(t, intro.Canonical())

	setup, ok := s.Get(Key{ID: "guides/setup", Language: "en"})
	require.True(t, ok)
	assert.Equal(t, "docs/guides/setup.html", setup.Permalink)

	plain, ok := s.ByPermalink("docs/plain.html")
	require.True(t, ok)
	assert.Equal(t, "plain", plain.Title)
}

func TestBuild_MalformedFrontMatterIsSkipped(t *testing.T) {
	f := newFixture(t)
	f.write(f.roots.Docs, "good.md", "---\ntitle: Good\n---\n")
	f.write(f.roots.Docs, "bad.md", "---\ntitle: [broken\n---\n")
	f.write(f.roots.Docs, "unclosed.md", "---\ntitle: x\n")

	s := f.build()
	assert.Equal(t, 1, s.Len())
	assert.ElementsMatch(t, []string{"bad.md", "unclosed.md"}, s.Skipped())
}

func TestBuild_MissingRootsYieldEmptyStore(t *testing.T) {
	f := newFixture(t)
	s := f.build()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Posts())
}

func TestBuild_TranslationsAndDefaults(t *testing.T) {
	f := newFixture(t)
	f.site.Languages = []config.Language{{Tag: "en", Enabled: true}, {Tag: "fr", Enabled: true}, {Tag: "de"}}
	f.write(f.roots.Docs, "intro.md", "---\nid: intro\ntitle: Intro\n---\n")
	f.write(f.roots.Docs, "other.md", "---\nid: other\ntitle: Other\n---\n")
	f.write(f.roots.Translated, "fr/intro.md", "---\nid: intro\ntitle: Présentation\n---\n")
	f.write(f.roots.Translated, "fr/other.md", "---\ntitle: [bad\n---\n")

	s := f.build()

	en, ok := s.ByPermalink("docs/en/intro.html")
	require.True(t, ok)
	assert.Equal(t, "en", en.Language)

	fr, ok := s.ByPermalink("docs/fr/intro.html")
	require.True(t, ok)
	assert.Equal(t, "fr", fr.Language)
	assert.Equal(t, "Présentation", fr.Title)
	assert.Equal(t, "intro.md", fr.Source)
	assert.Empty(t, fr.OriginalID)
	assert.False(t, fr.Canonical())

	_, ok = s.ByPermalink("docs/fr/other.html")
	assert.False(t, ok, "malformed translation is skipped")
	_, ok = s.ByPermalink("docs/de/intro.html")
	assert.False(t, ok, "disabled language gets no entities")
}

func TestBuild_UntranslatedDocKeepsEnglishFrontMatter(t *testing.T) {
	f := newFixture(t)
	f.site.Languages = []config.Language{{Tag: "en", Enabled: true}, {Tag: "ja", Enabled: true}}
	f.write(f.roots.Docs, "intro.md", "---\nid: intro\ntitle: Intro\n---\n")

	s := f.build()
	ja, ok := s.Get(Key{ID: "intro", Language: "ja"})
	require.True(t, ok)
	assert.Equal(t, "Intro", ja.Title)
	assert.Equal(t, "docs/ja/intro.html", ja.Permalink)
}

func TestBuild_VersionsWithFallback(t *testing.T) {
	f := newFixture(t)
	f.site.Versions = []string{"2.0", "1.0"}
	f.write(f.roots.Docs, "intro.md", "---\nid: intro\n---\n")
	f.write(f.roots.Versioned, "version-1.0/intro.md", "---\nid: version-1.0-intro\ntitle: Old\n---\n")
	f.write(f.roots.Versioned, "version-1.0/api.md", "---\nid: version-1.0-api\n---\n")
	f.write(f.roots.Versioned, "version-2.0/intro.md", "---\nid: version-2.0-intro\ntitle: New\n---\n")

	s := f.build()

	next, ok := s.ByPermalink("docs/next/intro.html")
	require.True(t, ok)
	assert.Equal(t, "intro", next.ID)

	latest, ok := s.ByPermalink("docs/intro.html")
	require.True(t, ok)
	assert.Equal(t, "version-2.0-intro", latest.ID)
	assert.Equal(t, "intro", latest.OriginalID)
	assert.Equal(t, "2.0", latest.Version)
	assert.Equal(t, "version-2.0/intro.md", latest.Source)
	assert.Equal(t, "New", latest.Title)

	old, ok := s.ByPermalink("docs/1.0/intro.html")
	require.True(t, ok)
	assert.Equal(t, "version-1.0/intro.md", old.Source)

	inherited, ok := s.ByPermalink("docs/api.html")
	require.True(t, ok, "2.0 inherits api from 1.0")
	assert.Equal(t, "version-2.0-api", inherited.ID)
	assert.Equal(t, "version-1.0/api.md", inherited.Source)
}

func TestEntity_VersionSegment(t *testing.T) {
	unversioned := &config.Site{}
	versioned := &config.Site{Versions: []string{"2.0", "1.0"}}

	assert.Empty(t, (&Entity{}).VersionSegment(unversioned))
	assert.Empty(t, (&Entity{}).VersionSegment(versioned))
	assert.Empty(t, (&Entity{Version: "2.0"}).VersionSegment(versioned))
	assert.Equal(t, "1.0", (&Entity{Version: "1.0"}).VersionSegment(versioned))
}

func TestBuild_BlogPostsNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.write(f.roots.Blog, "2017-12-14-hello.md", "---\ntitle: Hello\nauthor: Ann\nauthorURL: https://ann.example\ntags: [intro]\n---\nFirst post\n")
	f.write(f.roots.Blog, "2018-01-02-second.md", "---\ntitle: Second\n---\nBody\n")
	f.write(f.roots.Blog, "2016-05-05-dated.md", "---\ntitle: Dated\ndate: 2019-03-01\n---\n")
	f.write(f.roots.Blog, "notes.md", "no date prefix\n")
	f.write(f.roots.Blog, "2018-02-02-bad.md", "---\ntitle: [bad\n---\n")

	s := f.build()
	posts := s.Posts()
	require.Len(t, posts, 3)
	assert.Equal(t, "Dated", posts[0].Title)
	assert.Equal(t, "2018/01/02/second.html", posts[1].Path)
	assert.Equal(t, "2017/12/14/hello.html", posts[2].Path)

	hello := posts[2]
	assert.Equal(t, "Hello", hello.ID)
	assert.Equal(t, "Ann", hello.Author)
	assert.Equal(t, "https://ann.example", hello.AuthorURL)
	assert.Equal(t, []string{"intro"}, hello.Tags)
	assert.Equal(t, time.Date(2017, 12, 14, 0, 0, 0, 0, time.UTC), hello.Date)
	assert.Equal(t, "First post\n", hello.RawContent)
	assert.Contains(t, s.Skipped(), "blog/2018-02-02-bad.md")
}

func TestPostPath(t *testing.T) {
	p, ok := PostPath("2017-12-14-hello-world.md")
	require.True(t, ok)
	assert.Equal(t, "2017/12/14/hello-world.html", p)

	_, ok = PostPath("hello.md")
	assert.False(t, ok)
}

func TestStore_RejectsDuplicates(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(&Entity{ID: "a", Language: "en", Permalink: "docs/a.html"}))
	require.Error(t, s.Add(&Entity{ID: "a", Language: "en", Permalink: "docs/b.html"}))
	require.Error(t, s.Add(&Entity{ID: "b", Language: "en", Permalink: "/docs/a.html"}))
	require.NoError(t, s.Add(&Entity{ID: "a", Language: "fr", Permalink: "docs/fr/a.html"}))
	assert.Equal(t, 2, s.Len())
}

func TestBuild_CanceledContext(t *testing.T) {
	f := newFixture(t)
	f.write(f.roots.Docs, "intro.md", "x\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, f.site, f.roots, nil)
	require.ErrorIs(t, err, context.Canceled)
}
