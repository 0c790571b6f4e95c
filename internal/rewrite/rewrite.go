// Package rewrite turns relative Markdown links and asset references into absolute,
// version and language aware site URLs.
package rewrite

import (
	"strings"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/content"
	"git.home.luguber.info/inful/docserve/internal/markdown"
)

// AssetRoot selects the directory relative asset references point into.
type AssetRoot string

const (
	DocsAssets AssetRoot = "docs/assets/"
	BlogAssets AssetRoot = "blog/assets/"
)

const assetsPrefix = "assets/"

// Document rewrites links to other docs and relative asset references in the Markdown
// source of current. Only whole link destinations are matched: "](intro.md" and
// "](./intro.md#part" are rewritten, "](my-intro.md" and "](intro.mdx" are not.
func Document(raw string, current *content.Entity, table *LinkTable, site *config.Site) string {
	lang := current.Language
	version := current.VersionSegment(site)
	return apply(raw, func(file string) (string, bool) {
		if link, ok := table.Link(file, lang, version); ok {
			return link, true
		}
		return assetURL(file, site.BaseURL, DocsAssets)
	})
}

// Assets rewrites only relative asset references, e.g. for blog posts.
func Assets(raw, baseURL string, root AssetRoot) string {
	return apply(raw, func(file string) (string, bool) {
		return assetURL(file, baseURL, root)
	})
}

func assetURL(file, baseURL string, root AssetRoot) (string, bool) {
	if !strings.HasPrefix(file, assetsPrefix) {
		return "", false
	}
	return baseURL + string(root) + strings.TrimPrefix(file, assetsPrefix), true
}

// apply replaces every link destination for which lookup returns a URL. The fragment
// and query of the destination are kept.
func apply(raw string, lookup func(file string) (string, bool)) string {
	src := []byte(raw)
	targets := markdown.FindLinkTargets(src)
	if len(targets) == 0 {
		return raw
	}
	edits := make([]markdown.Edit, 0, len(targets))
	for _, tg := range targets {
		file, suffix := splitDestination(strings.TrimPrefix(tg.Dest, "./"))
		url, ok := lookup(file)
		if !ok {
			continue
		}
		edits = append(edits, markdown.Edit{Start: tg.Start, End: tg.End, Replacement: []byte(url + suffix)})
	}
	out, err := markdown.ApplyEdits(src, edits)
	if err != nil {
		// Targets never overlap; keep the source if that ever changes.
		return raw
	}
	return string(out)
}

func splitDestination(dest string) (file, suffix string) {
	if i := strings.IndexAny(dest, "#?"); i >= 0 {
		return dest[:i], dest[i:]
	}
	return dest, ""
}
