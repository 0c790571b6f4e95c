package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserve/internal/hotreload"
	"git.home.luguber.info/inful/docserve/internal/metrics"
)

type fixture struct {
	t       *testing.T
	base    string
	website string
	cache   *hotreload.Cache
	srv     *httptest.Server
}

func (f *fixture) write(rel, body string) {
	f.t.Helper()
	p := filepath.Join(f.base, filepath.FromSlash(rel))
	require.NoError(f.t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(f.t, os.WriteFile(p, []byte(body), 0o600))
}

func newFixture(t *testing.T, withLiveReload bool) *fixture {
	t.Helper()
	f := &fixture{t: t, base: t.TempDir()}
	f.website = filepath.Join(f.base, "website")
	f.write("website/siteConfig.yaml", "title: Demo\nurl: https://example.com\ncolors:\n  primaryColor: \"#2e8555\"\n  secondaryColor: \"#205d3b\"\n")
	f.write("docs/intro.md", "---\nid: intro\ntitle: Intro\n---\nHello\n")
	f.write("docs/assets/flow.png", "png")
	f.write("website/static/img/logo.png", "logo")
	f.write("website/blog/2017-12-14-hello.md", "---\ntitle: Hello\n---\nFirst post\n")

	f.cache = hotreload.NewCache(f.website)
	require.NoError(t, f.cache.Reload(context.Background(), "test"))

	opts := Options{Registry: prom.NewRegistry()}
	opts.Recorder = metrics.NewPrometheusRecorder(opts.Registry)
	if withLiveReload {
		opts.LiveReload = hotreload.NewLiveReloadHub(opts.Recorder)
		t.Cleanup(opts.LiveReload.Shutdown)
	}
	f.srv = httptest.NewServer(New(f.cache, opts).Handler())
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) get(p string, header ...string) (*http.Response, string) {
	f.t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, f.srv.URL+p, nil)
	require.NoError(f.t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(f.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(f.t, err)
	return resp, string(body)
}

// getNoRedirect issues a GET without following redirects.
func (f *fixture) getNoRedirect(p string) (*http.Response, string) {
	f.t.Helper()
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, f.srv.URL+p, nil)
	require.NoError(f.t, err)
	resp, err := client.Do(req)
	require.NoError(f.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(f.t, err)
	return resp, string(body)
}

func TestServer_RendersDoc(t *testing.T) {
	f := newFixture(t, false)
	resp, body := f.get("/docs/intro.html")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))
	assert.Contains(t, body, "<p>Hello</p>")
	assert.NotContains(t, body, "livereload.js")

	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)
	resp, _ = f.get("/docs/intro.html", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
}

func TestServer_InjectsLiveReload(t *testing.T) {
	f := newFixture(t, true)
	_, body := f.get("/docs/intro.html")
	assert.Contains(t, body, `<script async src="/livereload.js"></script></body>`)

	resp, script := f.get("/livereload.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, script, "EventSource('/livereload')")
}

func TestServer_StaticFallbacks(t *testing.T) {
	f := newFixture(t, false)
	resp, body := f.get("/docs/assets/flow.png")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "png", body)

	resp, body = f.get("/img/logo.png")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "logo", body)

	resp, _ = f.get("/img/../../siteConfig.yaml")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_StaticDirectoryIndex(t *testing.T) {
	f := newFixture(t, false)
	f.write("website/static/index.html", "<html><body>home</body></html>")
	f.write("website/static/help/index.html", "<html><body>help</body></html>")

	for p, want := range map[string]string{
		"/":                "home",
		"/help/":           "help",
		"/help/index.html": "help",
	} {
		resp, body := f.getNoRedirect(p)
		assert.Equal(t, http.StatusOK, resp.StatusCode, p)
		assert.Contains(t, body, want, p)
	}

	resp, _ := f.getNoRedirect("/help?x=1")
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/help/?x=1", resp.Header.Get("Location"))
}

func TestServer_ETagChangesAfterConfigReload(t *testing.T) {
	f := newFixture(t, false)
	resp, _ := f.get("/docs/intro.html")
	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)

	f.write("website/siteConfig.yaml", "title: RenamedSite\nurl: https://example.com\n")
	require.NoError(t, f.cache.Reload(context.Background(), "test"))

	resp, body := f.get("/docs/intro.html", "If-None-Match", etag)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "RenamedSite")
	assert.NotEqual(t, etag, resp.Header.Get("ETag"))
}

func TestServer_SitemapAtRootWithBaseURL(t *testing.T) {
	f := newFixture(t, false)
	f.write("website/siteConfig.yaml", "title: Demo\nurl: https://example.com\nbase_url: /proj/\n")
	require.NoError(t, f.cache.Reload(context.Background(), "test"))

	for _, p := range []string{"/sitemap.xml", "/proj/sitemap.xml"} {
		resp, body := f.get(p)
		assert.Equal(t, http.StatusOK, resp.StatusCode, p)
		assert.Equal(t, "application/xml; charset=utf-8", resp.Header.Get("Content-Type"), p)
		assert.Contains(t, body, "https://example.com/proj/docs/intro.html", p)
	}
}

func TestServer_NotFoundIsJSON(t *testing.T) {
	f := newFixture(t, false)
	resp, body := f.get("/docs/missing.html")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	assert.Equal(t, "not_found", payload["code"])
}

func TestServer_GeneratedAssets(t *testing.T) {
	f := newFixture(t, false)

	resp, body := f.get("/sitemap.xml")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<loc>https://example.com/docs/intro.html</loc>")

	resp, body = f.get("/blog/feed.xml")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "application/rss+xml"))
	assert.Contains(t, body, "<title>Hello</title>")

	resp, body = f.get("/blog/atom.xml")
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "application/atom+xml"))
	assert.Contains(t, body, "<feed")

	resp, body = f.get("/css/main.css")
	assert.Equal(t, "text/css; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "rgba(46, 133, 85, 0.07)")
}

func TestServer_BlogIndexRedirectsInProcess(t *testing.T) {
	f := newFixture(t, false)
	resp, body := f.get("/blog")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Hello")
}

func TestServer_BrokenConfigServes503UntilFixed(t *testing.T) {
	f := newFixture(t, false)

	f.write("website/siteConfig.yaml", "title: [unclosed\n")
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, f.srv.URL+"/_docserve/reload", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, body := f.get("/docs/intro.html")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "malformed config file")

	var st hotreload.Status
	_, raw := f.get("/_docserve/status")
	require.NoError(t, json.Unmarshal([]byte(raw), &st))
	assert.False(t, st.Healthy)
	assert.Equal(t, uint64(1), st.Generation, "previous snapshot stays installed")

	f.write("website/siteConfig.yaml", "title: Demo\n")
	require.NoError(t, f.cache.Reload(context.Background(), "test"))
	resp, _ = f.get("/docs/intro.html")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	f := newFixture(t, false)
	f.get("/docs/intro.html")
	resp, body := f.get("/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `docserve_resolutions_total{intent="docs",outcome="found"} 1`)
}

func TestInjectLiveReload(t *testing.T) {
	assert.Equal(t, "<p>x</p>"+liveReloadTag, string(injectLiveReload([]byte("<p>x</p>"))))
	assert.Equal(t, "<body>a"+liveReloadTag+"</body>", string(injectLiveReload([]byte("<body>a</body>"))))
}
