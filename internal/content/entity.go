package content

import (
	"time"

	"git.home.luguber.info/inful/docserve/internal/config"
)

// NextVersion is the URL segment of unreleased docs on a versioned site.
const NextVersion = "next"

// Key identifies an entity within the store.
type Key struct {
	ID       string
	Language string
	Version  string
}

// Entity is one logical document.
type Entity struct {
	ID string
	// Permalink is site relative without the base URL, e.g. "docs/en/intro.html".
	Permalink string
	// Source is the Markdown file relative to the root Locate picks for the entity.
	Source   string
	Language string
	// Version is empty for current docs.
	Version string
	// OriginalID is the canonical ID this entity is a versioned variant of.
	OriginalID   string
	Layout       string
	Title        string
	SidebarLabel string
	Fields       map[string]any
}

// Key returns the store key of e.
func (e *Entity) Key() Key {
	return Key{ID: e.ID, Language: e.Language, Version: e.Version}
}

// Canonical reports whether e is an English, unversioned document.
func (e *Entity) Canonical() bool {
	return e.OriginalID == "" && e.Version == "" && e.Language == config.DefaultLanguage
}

// VersionSegment returns the version path segment in effect for links rendered inside e.
// It is empty for current docs, for the latest release and on unversioned sites, so
// links in current docs point at the latest release.
func (e *Entity) VersionSegment(site *config.Site) string {
	if e.Version == "" || e.Version == site.LatestVersion() {
		return ""
	}
	return e.Version
}

// BlogPost is one blog entry. ID is the title and is not unique.
type BlogPost struct {
	ID string
	// Path is the URL path below blog/, e.g. "2017/12/14/hello.html".
	Path       string
	Source     string
	Title      string
	Author     string
	AuthorURL  string
	AuthorFBID string
	Tags       []string
	Date       time.Time
	RawContent string
	Fields     map[string]any
}
