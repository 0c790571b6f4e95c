// Package page defines the render-ready payloads handed to the renderer.
package page

import (
	"strings"
	"time"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/docserve/internal/blog"
	"git.home.luguber.info/inful/docserve/internal/content"
)

// Kind is the type of resolved content.
type Kind string

const (
	KindDoc      Kind = "doc"
	KindBlogPost Kind = "blog_post"
	KindBlogPage Kind = "blog_page"
	KindPage     Kind = "page"
)

// Format tells the renderer how to treat Body.
type Format string

const (
	FormatMarkdown Format = "markdown"
	// FormatHTML bodies are inserted into the site layout as is.
	FormatHTML Format = "html"
	// FormatRawHTML bodies are complete documents and bypass layouts.
	FormatRawHTML Format = "raw_html"
)

// Updated is the last modification of a source file as recorded by git.
type Updated struct {
	Time   time.Time
	Author string
}

// Payload is everything the renderer needs for one response.
type Payload struct {
	Kind     Kind
	Title    string
	Language string
	// Layout selects a registered layout; empty means the default for Kind.
	Layout string
	Format Format
	Body   string

	Doc     *content.Entity
	Post    *content.BlogPost
	Listing *blog.Page
	// PageID is the path of a generic page below pages/ without extension.
	PageID string

	SourceFile  string
	LastUpdated *Updated
}

// Fingerprint is a stable content hash of the payload, used as an ETag.
func (p *Payload) Fingerprint() string {
	header := strings.Join([]string{
		"kind: " + string(p.Kind),
		"title: " + p.Title,
		"language: " + p.Language,
		"layout: " + p.Layout,
		"format: " + string(p.Format),
	}, "\n")
	body := p.Body
	if p.Listing != nil {
		var b strings.Builder
		b.WriteString(p.Listing.Key)
		for _, post := range p.Listing.Posts {
			b.WriteString("\n" + post.Path + "\n" + post.RawContent)
		}
		body = b.String()
	}
	return mdfp.CalculateFingerprintFromParts(header, body)
}
