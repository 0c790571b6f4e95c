package router

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserve/internal/assets"
	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/page"
	"git.home.luguber.info/inful/docserve/internal/snapshot"
)

func TestCandidates(t *testing.T) {
	kinds := func(p string) []IntentKind {
		var out []IntentKind
		for _, in := range Candidates(p) {
			out = append(out, in.Kind)
		}
		return out
	}
	assert.Equal(t, []IntentKind{IntentDocs, IntentPage}, kinds("/docs/intro.html"))
	assert.Equal(t, []IntentKind{IntentSitemap}, kinds("/sitemap.xml"))
	assert.Equal(t, []IntentKind{IntentFeed}, kinds("/blog/feed.xml"))
	assert.Equal(t, []IntentKind{IntentBlog, IntentPage}, kinds("/blog/2017/12/14/hello.html"))
	assert.Equal(t, []IntentKind{IntentPage}, kinds("/help.html"))
	assert.Equal(t, []IntentKind{IntentCSS}, kinds("/css/main.css"))
	assert.Equal(t, []IntentKind{IntentRedirect}, kinds("/blog/"))
	assert.Equal(t, []IntentKind{IntentRedirect}, kinds("/docs/1.0/"))
	assert.Equal(t, []IntentKind{IntentRedirect}, kinds("/docs/1.0/guides"))
	assert.Equal(t, []IntentKind{IntentRedirect}, kinds("/"))
	assert.Equal(t, []IntentKind{IntentAsset}, kinds("/img/logo.png"))
	assert.Equal(t, []IntentKind{IntentAsset}, kinds("/other.xml"))
}

func TestClassify_FeedKind(t *testing.T) {
	assert.Equal(t, assets.FeedAtom, Classify("blog/Atom.xml").Feed)
	assert.Equal(t, assets.FeedRSS, Classify("blog/feed.xml").Feed)
}

func TestClassify_RedirectTarget(t *testing.T) {
	assert.Equal(t, "blog/index.html", Classify("/blog").Target)
	assert.Equal(t, "blog/index.html", Classify("/blog/").Target)
	assert.Equal(t, "index.html", Classify("/").Target)
	assert.Equal(t, "docs/1.0/index.html", Classify("/docs/1.0/").Target)
}

func TestSiteRelative(t *testing.T) {
	rel, ok := SiteRelative("/proj/docs/a.html", "/proj/")
	assert.True(t, ok)
	assert.Equal(t, "docs/a.html", rel)
	rel, ok = SiteRelative("/proj", "/proj/")
	assert.True(t, ok)
	assert.Empty(t, rel)
	_, ok = SiteRelative("/other/a.html", "/proj/")
	assert.False(t, ok)
}

type site struct {
	t       *testing.T
	base    string
	website string
}

func newSite(t *testing.T, config string) *site {
	t.Helper()
	base := t.TempDir()
	s := &site{t: t, base: base, website: filepath.Join(base, "website")}
	s.write("website/siteConfig.yaml", config)
	return s
}

func (s *site) write(rel, body string) {
	s.t.Helper()
	p := filepath.Join(s.base, filepath.FromSlash(rel))
	require.NoError(s.t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(s.t, os.WriteFile(p, []byte(body), 0o600))
}

func (s *site) snapshot() *snapshot.Snapshot {
	s.t.Helper()
	snap, err := snapshot.Build(context.Background(), s.website, 1, nil)
	require.NoError(s.t, err)
	return snap
}

func resolvePath(t *testing.T, snap *snapshot.Snapshot, p string) (*Result, error) {
	t.Helper()
	return NewResolver(nil).Resolve(context.Background(), snap, p)
}

func TestResolve_IntroScenario(t *testing.T) {
	s := newSite(t, "title: Demo\n")
	raw := "---\nid: intro\ntitle: Intro\n---\nSee ![diagram](assets/flow.png) and [setup](setup.md).\n"
	s.write("docs/intro.md", raw)

	res, err := resolvePath(t, s.snapshot(), "/docs/intro.html")
	require.NoError(t, err)
	require.NotNil(t, res.Payload)
	assert.Equal(t, page.KindDoc, res.Payload.Kind)
	assert.Equal(t, filepath.Join(s.base, "docs", "intro.md"), res.Payload.SourceFile)
	assert.Equal(t, "See ![diagram](/docs/assets/flow.png) and [setup](setup.md).\n", res.Payload.Body,
		"only the asset path changes when setup.md is not a known doc")
}

func TestResolve_DocLinksAndTOC(t *testing.T) {
	s := newSite(t, "title: Demo\n")
	s.write("docs/intro.md", "---\nid: intro\n---\n<AUTOGENERATED_TABLE_OF_CONTENTS>\n\n### `run()` starts\n\n[setup](setup.md#top)\n")
	s.write("docs/setup.md", "---\nid: setup\n---\nSetup\n")

	res, err := resolvePath(t, s.snapshot(), "/docs/intro.html")
	require.NoError(t, err)
	assert.Contains(t, res.Payload.Body, "  - [`run()` starts](#run-starts)")
	assert.Contains(t, res.Payload.Body, "[setup](/docs/setup.html#top)")
}

func TestResolve_TranslatedDoc(t *testing.T) {
	s := newSite(t, "title: Demo\n")
	s.write("website/languages.yaml", "- tag: en\n  enabled: true\n- tag: fr\n  enabled: true\n")
	s.write("docs/intro.md", "---\nid: intro\n---\nHello\n")
	s.write("docs/untranslated.md", "---\nid: untranslated\n---\nOnly English\n")
	s.write("website/translated_docs/fr/intro.md", "---\nid: intro\n---\nBonjour\n")
	snap := s.snapshot()

	res, err := resolvePath(t, snap, "/docs/fr/intro.html")
	require.NoError(t, err)
	assert.Equal(t, "fr", res.Payload.Language)
	assert.Equal(t, "Bonjour\n", res.Payload.Body)
	assert.Equal(t, map[string]string{"en": "/docs/en/intro.html", "fr": "/docs/fr/intro.html"}, res.Alternates)

	_, err = resolvePath(t, snap, "/docs/fr/untranslated.html")
	require.Error(t, err, "a registered variant without a translated file falls through and misses")
	assert.True(t, derrors.IsNotFound(err))
}

func TestResolve_DocsMissFallsThroughToPage(t *testing.T) {
	s := newSite(t, "title: Demo\n")
	s.write("website/pages/docs/extra.html", "<html><body><p>extra</p></body></html>")

	res, err := resolvePath(t, s.snapshot(), "/docs/extra.html")
	require.NoError(t, err)
	assert.Equal(t, IntentPage, res.Intent.Kind)
	assert.Equal(t, page.FormatRawHTML, res.Payload.Format)
}

func TestResolve_UnknownPathIsNotFound(t *testing.T) {
	s := newSite(t, "title: Demo\n")
	_, err := resolvePath(t, s.snapshot(), "/docs/missing.html")
	require.Error(t, err)
	assert.True(t, derrors.IsNotFound(err))
}

func TestResolve_BlogPagination(t *testing.T) {
	s := newSite(t, "title: Demo\n")
	for i := 1; i <= 25; i++ {
		s.write(fmt.Sprintf("website/blog/2020-01-%02d-post-%d.md", i, i), fmt.Sprintf("---\ntitle: Post %d\n---\nBody\n", i))
	}
	snap := s.snapshot()

	for p, size := range map[string]int{"/blog/index.html": 10, "/blog/page2/index.html": 10, "/blog/page3/index.html": 5} {
		res, err := resolvePath(t, snap, p)
		require.NoError(t, err, p)
		assert.Equal(t, page.KindBlogPage, res.Payload.Kind)
		assert.Len(t, res.Payload.Listing.Posts, size, p)
	}
	_, err := resolvePath(t, snap, "/blog/page4/index.html")
	require.Error(t, err)
	assert.True(t, derrors.IsNotFound(err))

	res, err := resolvePath(t, snap, "/blog/")
	require.NoError(t, err)
	assert.True(t, res.Redirected)
	assert.Equal(t, "Post 25", res.Payload.Listing.Posts[0].Title)
}

func TestResolve_BlogPost(t *testing.T) {
	s := newSite(t, "title: Demo\nbase_url: /proj/\n")
	s.write("website/blog/2017-12-14-hello.md", "---\ntitle: Hello\nauthor: Ann\n---\n![x](assets/x.png)\n")
	snap := s.snapshot()

	res, err := resolvePath(t, snap, "/proj/blog/2017/12/14/hello.html")
	require.NoError(t, err)
	assert.Equal(t, page.KindBlogPost, res.Payload.Kind)
	assert.Equal(t, "Hello", res.Payload.Title)
	assert.Equal(t, "![x](/proj/blog/assets/x.png)\n", res.Payload.Body)

	_, err = resolvePath(t, snap, "/proj/blog/2017/12/14/missing.html")
	require.Error(t, err)
	assert.True(t, derrors.IsNotFound(err))
}

func TestResolve_GenericPages(t *testing.T) {
	s := newSite(t, "title: Demo\nwrap_pages_html: true\n")
	s.write("website/languages.yaml", "- tag: en\n  enabled: true\n- tag: fr\n  enabled: true\n")
	s.write("website/pages/en/help.html", "<html><head><title>Help</title></head><body><h1>Help</h1></body></html>")
	s.write("website/pages/en/users.md", "---\ntitle: Users\n---\n# Users\n")
	snap := s.snapshot()

	res, err := resolvePath(t, snap, "/help.html")
	require.NoError(t, err)
	assert.Equal(t, page.FormatHTML, res.Payload.Format)
	assert.Equal(t, "<h1>Help</h1>", res.Payload.Body)
	assert.Equal(t, "Help", res.Payload.Title)

	res, err = resolvePath(t, snap, "/fr/users.html")
	require.NoError(t, err)
	assert.Equal(t, page.FormatMarkdown, res.Payload.Format)
	assert.Equal(t, "fr", res.Payload.Language)
	assert.Equal(t, "en/users", res.Payload.PageID)
}

func TestResolve_NonContentIntents(t *testing.T) {
	s := newSite(t, "title: Demo\n")
	snap := s.snapshot()
	for p, kind := range map[string]IntentKind{
		"/sitemap.xml":   IntentSitemap,
		"/blog/atom.xml": IntentFeed,
		"/css/main.css":  IntentCSS,
		"/img/logo.png":  IntentAsset,
	} {
		res, err := resolvePath(t, snap, p)
		require.NoError(t, err, p)
		assert.Equal(t, kind, res.Intent.Kind, p)
		assert.Nil(t, res.Payload)
	}
}

func TestResolve_OutsideBaseURL(t *testing.T) {
	s := newSite(t, "title: Demo\nbase_url: /proj/\n")
	_, err := resolvePath(t, s.snapshot(), "/docs/intro.html")
	assert.True(t, derrors.IsNotFound(err))
}

func TestResolve_SitemapAtServerRoot(t *testing.T) {
	s := newSite(t, "title: Demo\nbase_url: /proj/\n")
	snap := s.snapshot()
	for _, p := range []string{"/sitemap.xml", "/proj/sitemap.xml"} {
		res, err := resolvePath(t, snap, p)
		require.NoError(t, err, p)
		assert.Equal(t, IntentSitemap, res.Intent.Kind, p)
	}
}

func TestResolve_RedirectBelowDottedVersion(t *testing.T) {
	s := newSite(t, "title: Demo\n")
	s.write("website/pages/docs/1.0/index.html", "<html><body>v1</body></html>")
	res, err := resolvePath(t, s.snapshot(), "/docs/1.0/")
	require.NoError(t, err)
	assert.True(t, res.Redirected)
	assert.Equal(t, IntentPage, res.Intent.Kind)
	assert.Equal(t, "docs/1.0/index.html", res.Intent.Path)
}
