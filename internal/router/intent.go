// Package router maps request paths to content. Classification is pure; resolution
// reads from one snapshot and the content roots it names.
package router

import (
	"path"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docserve/internal/assets"
)

// IntentKind is what a request path asks for.
type IntentKind string

const (
	IntentDocs     IntentKind = "docs"
	IntentSitemap  IntentKind = "sitemap"
	IntentFeed     IntentKind = "feed"
	IntentBlog     IntentKind = "blog"
	IntentPage     IntentKind = "page"
	IntentCSS      IntentKind = "css"
	IntentRedirect IntentKind = "redirect"
	IntentAsset    IntentKind = "asset"
)

// SitemapPath is served at the server root regardless of the base URL.
const SitemapPath = "/sitemap.xml"

// Intent is one classification of a site relative path (base URL removed).
type Intent struct {
	Kind IntentKind
	Path string
	// Feed is set for IntentFeed.
	Feed assets.FeedKind
	// Target is the path a redirect re-resolves.
	Target string
}

// content reports whether a miss for this intent falls through to the next candidate.
func (i Intent) content() bool {
	return i.Kind == IntentDocs || i.Kind == IntentBlog || i.Kind == IntentPage
}

type rule struct {
	kind  IntentKind
	match func(p string) bool
}

var (
	docsPattern     = regexp.MustCompile(`^docs/.*\.html$`)
	feedPattern     = regexp.MustCompile(`^blog/.*\.xml$`)
	blogPattern     = regexp.MustCompile(`^blog/.*\.html$`)
	htmlPattern     = regexp.MustCompile(`\.html$`)
	cssPattern      = regexp.MustCompile(`main\.css$`)
	// the last segment has no extension; dotted parent directories such as 1.0/ are fine
	redirectPattern = regexp.MustCompile(`(^|/)[^./]*/?$`)
)

var rules = []rule{
	{IntentDocs, docsPattern.MatchString},
	{IntentSitemap, func(p string) bool { return p == "sitemap.xml" }},
	{IntentFeed, feedPattern.MatchString},
	{IntentBlog, blogPattern.MatchString},
	{IntentPage, htmlPattern.MatchString},
	{IntentCSS, cssPattern.MatchString},
	{IntentRedirect, redirectPattern.MatchString},
}

// Classify returns the first matching intent of p, IntentAsset when no rule matches.
func Classify(p string) Intent {
	return Candidates(p)[0]
}

// Candidates returns every matching intent of p in rule order. The list is never empty:
// a path no rule claims is an asset.
func Candidates(p string) []Intent {
	p = strings.TrimPrefix(p, "/")
	var out []Intent
	for _, r := range rules {
		if !r.match(p) {
			continue
		}
		in := Intent{Kind: r.kind, Path: p}
		switch r.kind {
		case IntentFeed:
			in.Feed = assets.FeedKindFor(path.Base(p))
		case IntentRedirect:
			in.Target = strings.TrimSuffix(p, "/") + "/index.html"
			in.Target = strings.TrimPrefix(in.Target, "/")
		}
		out = append(out, in)
	}
	if len(out) == 0 {
		out = append(out, Intent{Kind: IntentAsset, Path: p})
	}
	return out
}
