// Package blog partitions posts into listing pages and resolves blog URLs.
package blog

import (
	"strconv"

	"git.home.luguber.info/inful/docserve/internal/content"
)

// Page is one listing page. Index is 0-based; URLs are 1-based and page 0 has no number.
type Page struct {
	Index   int
	PerPage int
	Total   int
	Key     string
	Posts   []*content.BlogPost
}

// HasPrev reports whether a newer page exists.
func (p *Page) HasPrev() bool { return p.Index > 0 }

// HasNext reports whether an older page exists.
func (p *Page) HasNext() bool { return p.Index+1 < p.Total }

// PrevKey returns the key of the newer page.
func (p *Page) PrevKey() string { return PageKey(p.Index - 1) }

// NextKey returns the key of the older page.
func (p *Page) NextKey() string { return PageKey(p.Index + 1) }

// Pagination holds every listing page of a snapshot, computed up front.
type Pagination struct {
	PerPage int
	pages   []*Page
	byKey   map[string]*Page
}

// PageKey returns the URL key of page i below blog/.
func PageKey(i int) string {
	if i <= 0 {
		return "index.html"
	}
	return "page" + strconv.Itoa(i+1) + "/index.html"
}

// Paginate splits posts, already ordered newest first, into pages of perPage.
func Paginate(posts []*content.BlogPost, perPage int) *Pagination {
	if perPage <= 0 {
		perPage = 10
	}
	total := (len(posts) + perPage - 1) / perPage
	p := &Pagination{PerPage: perPage, pages: make([]*Page, 0, total), byKey: make(map[string]*Page, total)}
	for i := range total {
		end := min((i+1)*perPage, len(posts))
		page := &Page{
			Index:   i,
			PerPage: perPage,
			Total:   total,
			Key:     PageKey(i),
			Posts:   posts[i*perPage : end : end],
		}
		p.pages = append(p.pages, page)
		p.byKey[page.Key] = page
	}
	return p
}

// Total returns the number of pages.
func (p *Pagination) Total() int {
	return len(p.pages)
}

// Page returns page i.
func (p *Pagination) Page(i int) (*Page, bool) {
	if i < 0 || i >= len(p.pages) {
		return nil, false
	}
	return p.pages[i], true
}

// Pages returns all pages in order.
func (p *Pagination) Pages() []*Page {
	return p.pages
}

// Lookup finds a page by its exact key.
func (p *Pagination) Lookup(key string) (*Page, bool) {
	page, ok := p.byKey[key]
	return page, ok
}
