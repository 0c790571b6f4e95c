package router

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/docserve/internal/blog"
	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/content"
	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/frontmatter"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/metrics"
	"git.home.luguber.info/inful/docserve/internal/page"
	"git.home.luguber.info/inful/docserve/internal/resolve"
	"git.home.luguber.info/inful/docserve/internal/rewrite"
	"git.home.luguber.info/inful/docserve/internal/snapshot"
	"git.home.luguber.info/inful/docserve/internal/toc"
)

// Result is a resolved request. Payload is set for docs, blog and page intents; the
// other intents are served by the HTTP layer from the snapshot.
type Result struct {
	Intent  Intent
	Payload *page.Payload
	// Alternates maps enabled language tags to the URL of the same doc in that language.
	Alternates map[string]string
	// Redirected is set when the path was re-resolved as a directory index.
	Redirected bool
}

// Resolver resolves request paths against a snapshot.
type Resolver struct {
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewResolver returns a Resolver. A nil logger uses slog.Default.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger, recorder: metrics.NoopRecorder{}}
}

// WithRecorder sets the metrics recorder.
func (r *Resolver) WithRecorder(rec metrics.Recorder) *Resolver {
	r.recorder = rec
	return r
}

// Resolve maps urlPath, a request path including the base URL, to a result. Content
// rules that miss fall through to the next matching rule; when all of them miss the
// error is a not-found error.
func (r *Resolver) Resolve(ctx context.Context, snap *snapshot.Snapshot, urlPath string) (*Result, error) {
	if urlPath == SitemapPath {
		return r.resolveRelative(ctx, snap, strings.TrimPrefix(SitemapPath, "/"), false)
	}
	rel, ok := SiteRelative(urlPath, snap.Site.BaseURL)
	if !ok {
		return nil, derrors.NotFoundf("path %s is outside base URL %s", urlPath, snap.Site.BaseURL)
	}
	return r.resolveRelative(ctx, snap, rel, true)
}

// SiteRelative strips baseURL from urlPath. "/proj" counts as inside "/proj/".
func SiteRelative(urlPath, baseURL string) (string, bool) {
	if urlPath+"/" == baseURL {
		return "", true
	}
	if !strings.HasPrefix(urlPath, baseURL) {
		return "", false
	}
	return strings.TrimPrefix(strings.TrimPrefix(urlPath, baseURL), "/"), true
}

func (r *Resolver) resolveRelative(ctx context.Context, snap *snapshot.Snapshot, rel string, allowRedirect bool) (*Result, error) {
	var lastErr error
	for _, in := range Candidates(rel) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		res, err := r.resolveIntent(ctx, snap, in, allowRedirect)
		r.recorder.ObserveResolveDuration(string(in.Kind), time.Since(start))
		switch {
		case err == nil:
			r.recorder.IncResolution(string(in.Kind), metrics.OutcomeFound)
			r.logger.Debug("Resolved request path", logfields.Path(rel), logfields.Intent(string(in.Kind)))
			return res, nil
		case derrors.IsNotFound(err) && in.content():
			r.recorder.IncResolution(string(in.Kind), metrics.OutcomeNotFound)
			r.logger.Debug("Rule missed; falling through", logfields.Path(rel), logfields.Intent(string(in.Kind)), logfields.Error(err))
			lastErr = err
		default:
			outcome := metrics.OutcomeError
			if derrors.IsNotFound(err) {
				outcome = metrics.OutcomeNotFound
			}
			r.recorder.IncResolution(string(in.Kind), outcome)
			return nil, err
		}
	}
	if lastErr == nil {
		lastErr = derrors.NotFoundf("no rule matched %s", rel)
	}
	return nil, lastErr
}

func (r *Resolver) resolveIntent(ctx context.Context, snap *snapshot.Snapshot, in Intent, allowRedirect bool) (*Result, error) {
	switch in.Kind {
	case IntentDocs:
		return r.resolveDoc(snap, in)
	case IntentBlog:
		return r.resolveBlog(snap, in)
	case IntentPage:
		return r.resolvePage(snap, in)
	case IntentRedirect:
		if !allowRedirect {
			return nil, derrors.NotFoundf("nested redirect for %s", in.Path)
		}
		res, err := r.resolveRelative(ctx, snap, in.Target, false)
		if err != nil {
			return nil, err
		}
		res.Redirected = true
		return res, nil
	default:
		return &Result{Intent: in}, nil
	}
}

func (r *Resolver) resolveDoc(snap *snapshot.Snapshot, in Intent) (*Result, error) {
	e, ok := snap.Store.ByPermalink(in.Path)
	if !ok {
		return nil, derrors.NotFoundError("no doc with this permalink").WithContext("path", in.Path).Build()
	}
	file, data, err := resolve.Read(e, snap.Site.TranslationEnabled(), snap.Roots)
	if err != nil {
		return nil, err
	}
	doc, err := frontmatter.Parse(data)
	if err != nil {
		return nil, malformed(err, file)
	}

	body := toc.Expand(doc.Body)
	body = rewrite.Document(body, e, snap.Links, snap.Site)

	p := &page.Payload{
		Kind:       page.KindDoc,
		Title:      e.Title,
		Language:   e.Language,
		Layout:     e.Layout,
		Format:     page.FormatMarkdown,
		Body:       body,
		Doc:        e,
		SourceFile: file,
	}
	if snap.Site.EnableUpdateTime && snap.Git != nil {
		updated, err := snap.Git.LastUpdated(file)
		if err != nil {
			r.logger.Debug("No git history for doc", logfields.File(file), logfields.Error(err))
		}
		p.LastUpdated = updated
	}
	return &Result{Intent: in, Payload: p, Alternates: alternates(snap, e)}, nil
}

// alternates lists the same entity in every enabled language.
func alternates(snap *snapshot.Snapshot, e *content.Entity) map[string]string {
	if !snap.Site.TranslationEnabled() {
		return nil
	}
	out := map[string]string{}
	for _, tag := range snap.Site.EnabledLanguages() {
		if other, ok := snap.Store.Get(content.Key{ID: e.ID, Language: tag, Version: e.Version}); ok {
			out[tag] = snap.Site.BaseURL + other.Permalink
		}
	}
	return out
}

func (r *Resolver) resolveBlog(snap *snapshot.Snapshot, in Intent) (*Result, error) {
	sub := strings.TrimPrefix(in.Path, "blog/")
	target, err := blog.Resolve(sub, snap.Blog, snap.Roots.Blog)
	if err != nil {
		return nil, err
	}
	lang := ""
	if snap.Site.TranslationEnabled() {
		lang = config.DefaultLanguage
	}

	if target.Kind == blog.TargetPage {
		return &Result{Intent: in, Payload: &page.Payload{
			Kind:     page.KindBlogPage,
			Title:    snap.Site.Title + " Blog",
			Language: lang,
			Format:   page.FormatMarkdown,
			Listing:  target.Page,
		}}, nil
	}

	post, err := readPost(target)
	if err != nil {
		return nil, err
	}
	return &Result{Intent: in, Payload: &page.Payload{
		Kind:       page.KindBlogPost,
		Title:      post.Title,
		Language:   lang,
		Layout:     stringField(post.Fields, "layout"),
		Format:     page.FormatMarkdown,
		Body:       rewrite.Assets(post.RawContent, snap.Site.BaseURL, rewrite.BlogAssets),
		Post:       post,
		SourceFile: target.PostFile,
	}}, nil
}

func readPost(target blog.Target) (*content.BlogPost, error) {
	data, err := readFile(target.PostFile)
	if err != nil {
		return nil, err
	}
	doc, err := frontmatter.Parse(data)
	if err != nil {
		return nil, malformed(err, target.PostFile)
	}
	post, ok := content.PostFromDocument(filepath.Base(target.PostFile), doc)
	if !ok {
		return nil, derrors.NotFoundError("not a blog post file").WithContext("file", target.PostFile).Build()
	}
	if post.Title == "" {
		post.Title = strings.TrimSuffix(path.Base(target.PostPath), ".html")
	}
	return post, nil
}

func malformed(err error, file string) error {
	var ce *derrors.ClassifiedError
	if errors.As(err, &ce) {
		return err
	}
	return derrors.WrapError(err, derrors.CategoryContent, "malformed content file").
		WithContext("file", file).Build()
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}
