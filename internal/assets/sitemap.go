package assets

import (
	"encoding/xml"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/content"
	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URL     []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// AbsoluteURL joins the site URL, base URL and a site relative permalink.
func AbsoluteURL(site *config.Site, permalink string) string {
	return strings.TrimRight(site.URL, "/") + site.BaseURL + strings.TrimPrefix(permalink, "/")
}

// WriteSitemap writes a sitemap listing every doc entity, the blog index, every blog
// post and the given generic page permalinks.
func WriteSitemap(w io.Writer, site *config.Site, store *content.Store, pages []string) error {
	set := urlSet{Xmlns: sitemapNamespace}
	for _, e := range store.Entities() {
		set.URL = append(set.URL, sitemapURL{Loc: AbsoluteURL(site, e.Permalink), ChangeFreq: "hourly", Priority: "1.0"})
	}
	posts := store.Posts()
	if len(posts) > 0 {
		set.URL = append(set.URL, sitemapURL{
			Loc: AbsoluteURL(site, "blog/"), LastMod: posts[0].Date.Format("2006-01-02"),
			ChangeFreq: "weekly", Priority: "0.3",
		})
	}
	for _, p := range posts {
		set.URL = append(set.URL, sitemapURL{
			Loc: AbsoluteURL(site, "blog/"+p.Path), LastMod: p.Date.Format("2006-01-02"),
			ChangeFreq: "weekly", Priority: "0.3",
		})
	}
	for _, p := range pages {
		set.URL = append(set.URL, sitemapURL{Loc: AbsoluteURL(site, p), ChangeFreq: "weekly", Priority: "0.5"})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return derrors.WrapError(err, derrors.CategoryRender, "failed to encode sitemap").Build()
	}
	return enc.Close()
}

// PagePermalinks lists the generic pages below pagesDir as .html permalinks. Localized
// copies under an "en" directory are listed once, at their unprefixed location.
func PagePermalinks(pagesDir string) ([]string, error) {
	seen := map[string]bool{}
	err := filepath.WalkDir(pagesDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == pagesDir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != pagesDir {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(p)
		if ext != ".html" && ext != ".md" {
			return nil
		}
		rel, err := filepath.Rel(pagesDir, p)
		if err != nil {
			return err
		}
		segs := strings.Split(strings.TrimSuffix(filepath.ToSlash(rel), ext)+".html", "/")
		segs = slices.DeleteFunc(segs, func(s string) bool { return s == config.DefaultLanguage })
		seen[strings.Join(segs, "/")] = true
		return nil
	})
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "failed to list pages").
			WithContext("path", pagesDir).Build()
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	slices.Sort(out)
	return out, nil
}
