package rewrite

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/content"
)

// LinkTable maps canonical source files ("intro.md", "guides/setup.md") to the
// language and version independent remainder of their permalink ("intro.html").
// It is built once per snapshot.
type LinkTable struct {
	baseURL     string
	translation bool
	targets     map[string]string
}

// NewLinkTable indexes the canonical English entities. Versioned and translated
// variants never become link targets.
func NewLinkTable(entities []*content.Entity, site *config.Site) *LinkTable {
	t := &LinkTable{
		baseURL:     site.BaseURL,
		translation: site.TranslationEnabled(),
		targets:     make(map[string]string),
	}
	for _, e := range entities {
		if !e.Canonical() {
			continue
		}
		rest := strings.TrimPrefix(e.Permalink, "/")
		rest = strings.TrimPrefix(rest, "docs/")
		if t.translation {
			rest = strings.TrimPrefix(rest, e.Language+"/")
		}
		if site.VersioningEnabled() {
			rest = strings.TrimPrefix(rest, content.NextVersion+"/")
		}
		t.targets[e.Source] = rest
	}
	return t
}

// Link renders the URL of source for a page in language with the given version segment.
// The language is only used on translated sites; an empty segment means the latest version.
func (t *LinkTable) Link(source, language, versionSegment string) (string, bool) {
	rest, ok := t.targets[source]
	if !ok {
		return "", false
	}
	var b strings.Builder
	b.WriteString(t.baseURL)
	b.WriteString("docs/")
	if t.translation && language != "" {
		b.WriteString(language)
		b.WriteByte('/')
	}
	if versionSegment != "" {
		b.WriteString(versionSegment)
		b.WriteByte('/')
	}
	b.WriteString(rest)
	return b.String(), true
}

// Has reports whether source is a known link target.
func (t *LinkTable) Has(source string) bool {
	_, ok := t.targets[source]
	return ok
}

// Len returns the number of link targets.
func (t *LinkTable) Len() int {
	return len(t.targets)
}

// Sources returns the known source files in sorted order.
func (t *LinkTable) Sources() []string {
	out := make([]string, 0, len(t.targets))
	for s := range t.targets {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}
