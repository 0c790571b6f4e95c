// Package snapshot assembles everything a request needs from one consistent view of
// the site: configuration, content metadata, link table, blog pages and layouts.
package snapshot

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docserve/internal/assets"
	"git.home.luguber.info/inful/docserve/internal/blog"
	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/content"
	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/gitinfo"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/render"
	"git.home.luguber.info/inful/docserve/internal/rewrite"
)

// Snapshot is immutable once built. Readers share it without locking.
type Snapshot struct {
	ID         string
	Generation uint64
	LoadedAt   time.Time
	ConfigHash string

	Site       *config.Site
	Roots      config.Roots
	Store      *content.Store
	Links      *rewrite.LinkTable
	Blog       *blog.Pagination
	Layouts    *render.Registry
	Translator *render.Catalog
	Git        *gitinfo.Reader
	MainCSS    string
}

// Build loads websiteDir from scratch. Configuration problems are returned as fatal
// config errors; nothing of a previous generation is reused.
func Build(ctx context.Context, websiteDir string, generation uint64, logger *slog.Logger) (*Snapshot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	site, err := config.Load(websiteDir)
	if err != nil {
		return nil, err
	}
	roots := config.RootsFor(websiteDir, site)

	store, err := content.Build(ctx, site, roots, logger)
	if err != nil {
		return nil, err
	}

	layouts, err := render.NewRegistry(roots.Website, site.Layouts)
	if err != nil {
		return nil, err
	}

	tags := site.EnabledLanguages()
	if len(tags) == 0 {
		tags = []string{config.DefaultLanguage}
	}
	catalog, err := render.LoadCatalog(roots.Website, tags)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "failed to load translations").
			Fatal().WithContext("path", roots.Website).Build()
	}

	css, err := assets.MainCSS(site, roots.Static)
	if err != nil {
		return nil, err
	}
	for _, w := range css.Warnings {
		logger.Warn(w)
	}

	s := &Snapshot{
		ID:         uuid.NewString(),
		Generation: generation,
		LoadedAt:   time.Now(),
		ConfigHash: site.Snapshot(),
		Site:       site,
		Roots:      roots,
		Store:      store,
		Links:      rewrite.NewLinkTable(store.Entities(), site),
		Blog:       blog.Paginate(store.Posts(), site.BlogPostsPerPage),
		Layouts:    layouts,
		Translator: catalog,
		Git:        gitinfo.NewReader(),
		MainCSS:    css.CSS,
	}
	logger.Info("Content snapshot built",
		logfields.SnapshotID(s.ID),
		logfields.Generation(generation),
		slog.String("config_hash", s.ConfigHash),
		slog.Int("entities", store.Len()),
		slog.Int("posts", len(store.Posts())),
		slog.Int("links", s.Links.Len()),
		slog.Int("skipped", len(store.Skipped())))
	return s, nil
}
