package content

import (
	"context"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/docserve/internal/config"
	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/frontmatter"
	"git.home.luguber.info/inful/docserve/internal/logfields"
)

// sourceFile is a parsed Markdown file, Rel being slash separated relative to its root.
type sourceFile struct {
	Rel string
	Doc *frontmatter.Document
}

type builder struct {
	site   *config.Site
	roots  config.Roots
	logger *slog.Logger
	store  *Store
}

// Build reads every content root of the site into a new Store. Files with malformed
// front matter are skipped with a warning; only I/O failures abort the build.
func Build(ctx context.Context, site *config.Site, roots config.Roots, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &builder{site: site, roots: roots, logger: logger, store: NewStore()}

	docs, err := b.scan(ctx, roots.Docs, true)
	if err != nil {
		return nil, err
	}
	canonical := b.addCanonical(docs)
	if site.TranslationEnabled() {
		if err := b.addTranslations(ctx, canonical); err != nil {
			return nil, err
		}
	}
	if site.VersioningEnabled() {
		if err := b.addVersions(ctx); err != nil {
			return nil, err
		}
	}
	if err := b.loadPosts(ctx); err != nil {
		return nil, err
	}
	return b.store, nil
}

func (b *builder) addCanonical(docs []sourceFile) []*Entity {
	out := make([]*Entity, 0, len(docs))
	next := ""
	if b.site.VersioningEnabled() {
		next = NextVersion
	}
	for _, f := range docs {
		id := docID(f.Rel, f.Doc.String("id"))
		e := newEntity(id, f.Rel, config.DefaultLanguage, f.Doc)
		e.Permalink = b.permalink(e.Language, next, id)
		if b.add(e, f.Rel) {
			out = append(out, e)
		}
	}
	return out
}

// addTranslations registers every canonical doc once per additional language, using the
// translated file's front matter when one exists.
func (b *builder) addTranslations(ctx context.Context, canonical []*Entity) error {
	next := ""
	if b.site.VersioningEnabled() {
		next = NextVersion
	}
	for _, lang := range b.otherLanguages() {
		for _, c := range canonical {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, ok, err := b.readTranslated(lang, c.Source)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			e := c.withFrontMatter(doc)
			e.Language = lang
			e.Permalink = b.permalink(lang, next, c.ID)
			b.add(e, path.Join(lang, c.Source))
		}
	}
	return nil
}

// addVersions registers one entity per doc and released version. A version inherits
// every doc it does not contain from the nearest older version.
func (b *builder) addVersions(ctx context.Context) error {
	versions := b.site.Versions
	available := map[string]versionedFile{}
	for i := len(versions) - 1; i >= 0; i-- {
		v := versions[i]
		files, err := b.scan(ctx, filepath.Join(b.roots.Versioned, "version-"+v), false)
		if err != nil {
			return err
		}
		for _, f := range files {
			rawID := strings.TrimPrefix(f.Doc.String("id"), "version-"+v+"-")
			orig := docID(f.Rel, rawID)
			available[orig] = versionedFile{sourceFile: f, version: v}
		}

		segment := v
		if v == b.site.LatestVersion() {
			segment = ""
		}
		for _, orig := range slices.Sorted(maps.Keys(available)) {
			vf := available[orig]
			source := "version-" + vf.version + "/" + vf.Rel
			for _, lang := range b.languages() {
				e := newEntity("version-"+v+"-"+orig, source, lang, vf.Doc)
				if lang != config.DefaultLanguage {
					doc, ok, err := b.readTranslated(lang, source)
					if err != nil {
						return err
					}
					if !ok {
						continue
					}
					e = e.withFrontMatter(doc)
				}
				e.OriginalID = orig
				e.Version = v
				e.Permalink = b.permalink(lang, segment, orig)
				b.add(e, source)
			}
		}
	}
	return nil
}

type versionedFile struct {
	sourceFile
	version string
}

// readTranslated parses translated_docs/<lang>/<rel>. A missing file yields the English
// front matter (nil doc, ok). A malformed file is skipped (ok false).
func (b *builder) readTranslated(lang, rel string) (*frontmatter.Document, bool, error) {
	file := filepath.Join(b.roots.Translated, lang, filepath.FromSlash(rel))
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, true, nil
		}
		return nil, false, derrors.WrapError(err, derrors.CategoryFileSystem, "failed to read translated doc").
			WithContext("path", file).Build()
	}
	doc, err := frontmatter.Parse(data)
	if err != nil {
		b.skip(path.Join(lang, rel), err)
		return nil, false, nil
	}
	return doc, true, nil
}

func (b *builder) add(e *Entity, source string) bool {
	if err := b.store.Add(e); err != nil {
		b.logger.Warn("Skipping duplicate content entity",
			logfields.File(source), logfields.Entity(e.ID), logfields.Language(e.Language), logfields.Error(err))
		return false
	}
	return true
}

func (b *builder) skip(source string, err error) {
	b.store.skipped = append(b.store.skipped, source)
	b.logger.Warn("Skipping malformed content file", logfields.File(source), logfields.Error(err))
}

// permalink builds docs/[lang/][version/]id.html.
func (b *builder) permalink(lang, version, id string) string {
	parts := []string{"docs"}
	if b.site.TranslationEnabled() {
		parts = append(parts, lang)
	}
	if version != "" {
		parts = append(parts, version)
	}
	return strings.Join(append(parts, id), "/") + ".html"
}

func (b *builder) languages() []string {
	if !b.site.TranslationEnabled() {
		return []string{config.DefaultLanguage}
	}
	return append([]string{config.DefaultLanguage}, b.otherLanguages()...)
}

func (b *builder) otherLanguages() []string {
	var out []string
	for _, tag := range b.site.EnabledLanguages() {
		if tag != config.DefaultLanguage {
			out = append(out, tag)
		}
	}
	return out
}

// scan parses every Markdown file below root. A missing root is empty. With recursive
// false only the direct children of root are read.
func (b *builder) scan(ctx context.Context, root string, recursive bool) ([]sourceFile, error) {
	var out []sourceFile
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == root {
				return filepath.SkipDir
			}
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		name := d.Name()
		if d.IsDir() {
			if p != root && (strings.HasPrefix(name, ".") || name == "assets") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || filepath.Ext(name) != ".md" {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !recursive && strings.Contains(rel, "/") {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		doc, err := frontmatter.Parse(data)
		if err != nil {
			b.skip(rel, err)
			return nil
		}
		out = append(out, sourceFile{Rel: rel, Doc: doc})
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "failed to scan content").
			WithContext("path", root).Build()
	}
	return out, nil
}

// docID is the front matter id, prefixed by the file's directory, or the file path
// without extension.
func docID(rel, fmID string) string {
	if fmID == "" {
		return strings.TrimSuffix(rel, ".md")
	}
	if dir := path.Dir(rel); dir != "." && !strings.HasPrefix(fmID, dir+"/") {
		return dir + "/" + fmID
	}
	return fmID
}

func newEntity(id, source, lang string, doc *frontmatter.Document) *Entity {
	e := &Entity{ID: id, Source: source, Language: lang}
	return e.withFrontMatter(doc)
}

// withFrontMatter returns a copy of e whose descriptive fields come from doc.
// A nil doc keeps the current fields.
func (e *Entity) withFrontMatter(doc *frontmatter.Document) *Entity {
	c := *e
	if doc == nil {
		return &c
	}
	c.Fields = doc.Fields
	c.Layout = doc.String("layout")
	c.Title = doc.String("title")
	if c.Title == "" {
		c.Title = path.Base(strings.TrimSuffix(c.Source, ".md"))
	}
	c.SidebarLabel = doc.String("sidebar_label")
	if c.SidebarLabel == "" {
		c.SidebarLabel = c.Title
	}
	return &c
}
