// Package render turns resolved payloads into HTML.
package render

import (
	"bytes"
	"html/template"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/docserve/internal/config"
	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/page"
)

// TruncateMarker ends the part of a post shown on listing pages.
const TruncateMarker = "<!--truncate-->"

// Input is everything a Renderer receives for one response.
type Input struct {
	Site       *config.Site
	Layouts    *Registry
	Translator Translator
	Payload    *page.Payload
	// LanguageURL returns the URL of the current content in another language.
	LanguageURL func(tag string) string
}

// Renderer turns a payload into markup.
type Renderer interface {
	Render(w io.Writer, in Input) error
}

// HTMLRenderer renders Markdown with goldmark into html/template layouts.
type HTMLRenderer struct {
	md goldmark.Markdown
	// Translators are selected process wide; renders that use one are serialized.
	mu sync.Mutex
}

// NewHTMLRenderer returns the default renderer.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{md: newMarkdown()}
}

// placeholderFuncs lets layouts parse before per-render functions are bound.
var placeholderFuncs = template.FuncMap{
	"url":      func(string) string { return "" },
	"t":        func(_ string, fallback string) string { return fallback },
	"date":     func(time.Time) string { return "" },
	"markdown": func(string) template.HTML { return "" },
}

type view struct {
	Site      *config.Site
	Kind      page.Kind
	Title     string
	Language  string
	Content   template.HTML
	Doc       any
	Post      any
	Listing   any
	Posts     []postView
	Updated   *page.Updated
	Languages []languageLink
}

type postView struct {
	Title     string
	Path      string
	Author    string
	Date      time.Time
	Summary   template.HTML
	Truncated bool
}

type languageLink struct {
	Tag  string
	Name string
	URL  string
}

// Render writes the payload. Raw HTML pages are written unchanged.
func (r *HTMLRenderer) Render(w io.Writer, in Input) error {
	p := in.Payload
	if p.Format == page.FormatRawHTML {
		_, err := io.WriteString(w, p.Body)
		return err
	}

	translator := in.Translator
	if translator == nil {
		translator = NopTranslator{}
	}

	v := view{
		Site:     in.Site,
		Kind:     p.Kind,
		Title:    p.Title,
		Language: p.Language,
		Updated:  p.LastUpdated,
	}
	if p.Doc != nil {
		v.Doc = p.Doc
	}
	if p.Post != nil {
		v.Post = p.Post
	}

	switch {
	case p.Listing != nil:
		v.Listing = p.Listing
		for _, post := range p.Listing.Posts {
			summary, truncated := Summary(post.RawContent)
			html, err := convert(r.md, summary)
			if err != nil {
				return r.renderError(err, p)
			}
			v.Posts = append(v.Posts, postView{
				Title: post.Title, Path: post.Path, Author: post.Author, Date: post.Date,
				Summary: template.HTML(html), Truncated: truncated,
			})
		}
	case p.Format == page.FormatHTML:
		v.Content = template.HTML(p.Body)
	default:
		html, err := convert(r.md, p.Body)
		if err != nil {
			return r.renderError(err, p)
		}
		v.Content = template.HTML(html)
	}

	if in.Site.TranslationEnabled() && in.LanguageURL != nil {
		for _, l := range in.Site.Languages {
			if l.Enabled {
				v.Languages = append(v.Languages, languageLink{Tag: l.Tag, Name: l.Name, URL: in.LanguageURL(l.Tag)})
			}
		}
	}

	tmpl, err := in.Layouts.Lookup(p.Kind, p.Layout).Clone()
	if err != nil {
		return r.renderError(err, p)
	}
	tmpl.Funcs(template.FuncMap{
		"url":  func(rel string) string { return in.Site.BaseURL + strings.TrimPrefix(rel, "/") },
		"t":    translator.Translate,
		"date": func(t time.Time) string { return t.Format("January 2, 2006") },
		"markdown": func(s string) template.HTML {
			out, _ := convert(r.md, s)
			return template.HTML(out)
		},
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	translator.SetLanguage(p.Language)
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, v); err != nil {
		return r.renderError(err, p)
	}
	_, err = buf.WriteTo(w)
	return err
}

func (r *HTMLRenderer) renderError(err error, p *page.Payload) error {
	return derrors.WrapError(err, derrors.CategoryRender, "render failed").
		WithContext("kind", string(p.Kind)).WithContext("layout", p.Layout).Build()
}

// Summary returns the part of a post before TruncateMarker and whether it was cut.
func Summary(raw string) (string, bool) {
	if i := strings.Index(raw, TruncateMarker); i >= 0 {
		return raw[:i], true
	}
	return raw, false
}
