package server

import (
	"bytes"
	"fmt"
	"html"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docserve/internal/assets"
	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/page"
	docrender "git.home.luguber.info/inful/docserve/internal/render"
	"git.home.luguber.info/inful/docserve/internal/router"
	"git.home.luguber.info/inful/docserve/internal/snapshot"
)

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	snap := s.cache.Current()
	lastErr := s.cache.LastError()
	if snap == nil || (lastErr != nil && derrors.IsConfig(lastErr)) {
		s.renderReloadErrorPage(w, lastErr)
		return
	}

	// Static directories answer before the directory redirect rule re-resolves content.
	if rel, ok := router.SiteRelative(r.URL.Path, snap.Site.BaseURL); ok &&
		router.Classify(rel).Kind == router.IntentRedirect && s.serveStatic(w, r, snap) {
		return
	}

	res, err := s.resolver.Resolve(r.Context(), snap, r.URL.Path)
	if err != nil {
		if derrors.IsNotFound(err) && s.serveStatic(w, r, snap) {
			return
		}
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}

	var buf bytes.Buffer
	contentType := "text/html; charset=utf-8"
	switch res.Intent.Kind {
	case router.IntentSitemap:
		pages, err := assets.PagePermalinks(snap.Roots.Pages)
		if err == nil {
			err = assets.WriteSitemap(&buf, snap.Site, snap.Store, pages)
		}
		if err != nil {
			s.adapter.WriteErrorResponse(w, r, err)
			return
		}
		contentType = "application/xml; charset=utf-8"
	case router.IntentFeed:
		if err := assets.WriteFeed(&buf, res.Intent.Feed, snap.Site, snap.Store); err != nil {
			s.adapter.WriteErrorResponse(w, r, err)
			return
		}
		contentType = "application/rss+xml; charset=utf-8"
		if res.Intent.Feed == assets.FeedAtom {
			contentType = "application/atom+xml; charset=utf-8"
		}
	case router.IntentCSS:
		buf.WriteString(snap.MainCSS)
		contentType = "text/css; charset=utf-8"
	case router.IntentAsset:
		if !s.serveStatic(w, r, snap) {
			s.adapter.WriteErrorResponse(w, r, derrors.NotFoundf("no asset at %s", r.URL.Path))
		}
		return
	default:
		if s.notModified(w, r, snap, res.Payload) {
			return
		}
		if err := s.renderer.Render(&buf, docrender.Input{
			Site:        snap.Site,
			Layouts:     snap.Layouts,
			Translator:  snap.Translator,
			Payload:     res.Payload,
			LanguageURL: func(tag string) string { return res.Alternates[tag] },
		}); err != nil {
			s.adapter.WriteErrorResponse(w, r, err)
			return
		}
		s.logger.Debug("Rendered page",
			logfields.Path(r.URL.Path),
			logfields.Intent(string(res.Intent.Kind)),
			logfields.SnapshotID(snap.ID))
	}

	body := buf.Bytes()
	if s.liveReload != nil && strings.HasPrefix(contentType, "text/html") {
		body = injectLiveReload(body)
	}
	w.Header().Set("Content-Type", contentType)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("write response", logfields.Path(r.URL.Path), logfields.Error(err))
	}
}

// notModified answers conditional requests for unchanged payloads. The tag covers the
// snapshot too, since config, layouts and translations shape the page as well.
func (s *Server) notModified(w http.ResponseWriter, r *http.Request, snap *snapshot.Snapshot, p *page.Payload) bool {
	if p == nil {
		return false
	}
	etag := etagFor(snap, p)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

func etagFor(snap *snapshot.Snapshot, p *page.Payload) string {
	return `"` + snap.ID + "-" + p.Fingerprint() + `"`
}

// serveStatic serves files from docs/assets, blog/assets and static/. A directory
// serves its index.html; without a trailing slash it redirects to add one. It reports
// false without writing when no file matches.
func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request, snap *snapshot.Snapshot) bool {
	rel, ok := router.SiteRelative(r.URL.Path, snap.Site.BaseURL)
	if !ok {
		return false
	}
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")

	var file string
	switch {
	case strings.HasPrefix(rel, "docs/assets/"):
		file = filepath.Join(snap.Roots.Docs, "assets", filepath.FromSlash(strings.TrimPrefix(rel, "docs/assets/")))
	case strings.HasPrefix(rel, "blog/assets/"):
		file = filepath.Join(snap.Roots.Blog, "assets", filepath.FromSlash(strings.TrimPrefix(rel, "blog/assets/")))
	default:
		file = filepath.Join(snap.Roots.Static, filepath.FromSlash(rel))
	}
	info, err := os.Stat(file)
	if err != nil {
		return false
	}
	if info.IsDir() {
		file = filepath.Join(file, "index.html")
		if info, err = os.Stat(file); err != nil || info.IsDir() {
			return false
		}
		if !strings.HasSuffix(r.URL.Path, "/") {
			target := r.URL.Path + "/"
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, target, http.StatusMovedPermanently)
			return true
		}
	}
	f, err := os.Open(file)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()
	// ServeContent, unlike ServeFile, does not redirect .../index.html requests.
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}

const liveReloadTag = `<script async src="/livereload.js"></script>`

// injectLiveReload adds the client script before the closing body tag, or appends it.
func injectLiveReload(body []byte) []byte {
	i := bytes.LastIndex(body, []byte("</body>"))
	if i < 0 {
		return append(body, liveReloadTag...)
	}
	out := make([]byte, 0, len(body)+len(liveReloadTag))
	out = append(out, body[:i]...)
	out = append(out, liveReloadTag...)
	return append(out, body[i:]...)
}

// renderReloadErrorPage is shown while the site configuration is broken or before the
// first successful load. It reloads itself once a reload succeeds.
func (s *Server) renderReloadErrorPage(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)

	msg := "The site has not been loaded yet."
	if err != nil {
		msg = err.Error()
	}
	script := ""
	if s.liveReload != nil {
		script = liveReloadTag
	}
	_, _ = fmt.Fprintf(w, `<!doctype html><html><head><meta charset="utf-8"><title>Reload Failed</title><style>body{font-family:sans-serif;max-width:800px;margin:50px auto;padding:20px}h1{color:#d32f2f}pre{background:#f5f5f5;padding:15px;border-radius:4px;overflow-x:auto}</style></head><body><h1>Site configuration error</h1><p>The site could not be loaded. Fix the error below and save to reload automatically.</p><pre>%s</pre>%s</body></html>`, html.EscapeString(msg), script)
}
