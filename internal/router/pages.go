package router

import (
	"bytes"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docserve/internal/config"
	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/frontmatter"
	"git.home.luguber.info/inful/docserve/internal/i18n"
	"git.home.luguber.info/inful/docserve/internal/page"
	"git.home.luguber.info/inful/docserve/internal/snapshot"
)

// resolvePage serves files below pages/. HTML files win over Markdown; each is looked
// up at its own path and then in the "en" directory next to it. Markdown pages in a
// localized directory finally fall back to the English directory.
func (r *Resolver) resolvePage(snap *snapshot.Snapshot, in Intent) (*Result, error) {
	site := snap.Site
	lang := i18n.LanguageFromPath(path.Dir(in.Path), site)

	for _, rel := range []string{in.Path, inEnglishDir(in.Path)} {
		data, err := readFile(filepath.Join(snap.Roots.Pages, filepath.FromSlash(rel)))
		if derrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &Result{Intent: in, Payload: htmlPage(site, rel, lang, data)}, nil
	}

	md := strings.TrimSuffix(in.Path, ".html") + ".md"
	candidates := []string{md, inEnglishDir(md)}
	if english, ok := i18n.EnglishPath(md, site); ok {
		candidates = append(candidates, english)
	}
	for _, rel := range candidates {
		file := filepath.Join(snap.Roots.Pages, filepath.FromSlash(rel))
		data, err := readFile(file)
		if derrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		doc, err := frontmatter.Parse(data)
		if err != nil {
			return nil, malformed(err, file)
		}
		id := strings.TrimSuffix(rel, ".md")
		title := doc.String("title")
		if title == "" {
			title = path.Base(id)
		}
		return &Result{Intent: in, Payload: &page.Payload{
			Kind:       page.KindPage,
			Title:      title,
			Language:   lang,
			Layout:     doc.String("layout"),
			Format:     page.FormatMarkdown,
			Body:       doc.Body,
			PageID:     id,
			SourceFile: file,
		}}, nil
	}
	return nil, derrors.NotFoundError("no page file").WithContext("path", in.Path).Build()
}

// htmlPage wraps the body of an HTML file in the site layout when the site asks for it,
// and otherwise passes the file through untouched.
func htmlPage(site *config.Site, rel, lang string, data []byte) *page.Payload {
	id := strings.TrimSuffix(rel, ".html")
	p := &page.Payload{
		Kind:     page.KindPage,
		Title:    path.Base(id),
		Language: lang,
		Format:   page.FormatRawHTML,
		Body:     string(data),
		PageID:   id,
	}
	if !site.WrapPagesHTML {
		return p
	}
	body, title, err := extractBody(data)
	if err != nil {
		return p
	}
	p.Format = page.FormatHTML
	p.Body = body
	if title != "" {
		p.Title = title
	}
	return p
}

// extractBody returns the serialized children of <body> and the document title.
// Fragments without <body> parse into an implied one.
func extractBody(data []byte) (body, title string, err error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", "", err
	}
	var bodyNode *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Body:
				if bodyNode == nil {
					bodyNode = n
				}
			case atom.Title:
				if title == "" && n.FirstChild != nil {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if bodyNode == nil {
		return "", title, nil
	}
	var b strings.Builder
	for c := bodyNode.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", "", err
		}
	}
	return strings.TrimSpace(b.String()), title, nil
}

func inEnglishDir(rel string) string {
	return path.Join(path.Dir(rel), config.DefaultLanguage, path.Base(rel))
}

// readFile reads a content file. Missing files and directories are not-found errors.
func readFile(file string) ([]byte, error) {
	data, err := os.ReadFile(file)
	if err == nil {
		return data, nil
	}
	if os.IsNotExist(err) {
		return nil, derrors.NotFoundError("file not found").WithContext("file", file).Build()
	}
	if info, statErr := os.Stat(file); statErr == nil && info.IsDir() {
		return nil, derrors.NotFoundError("path is a directory").WithContext("file", file).Build()
	}
	return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "failed to read file").
		WithContext("file", file).Build()
}
