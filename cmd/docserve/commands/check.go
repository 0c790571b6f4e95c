package commands

import (
	"context"
	"fmt"
	"strings"

	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/frontmatter"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/markdown"
	"git.home.luguber.info/inful/docserve/internal/resolve"
	"git.home.luguber.info/inful/docserve/internal/snapshot"
)

// CheckCmd reports relative doc links the rewriter cannot resolve.
type CheckCmd struct {
	Strict bool `name:"strict" help:"Exit non-zero when unresolved links are found."`
}

// UnresolvedLink is a relative Markdown link with no matching doc.
type UnresolvedLink struct {
	Source      string
	Destination string
}

func (c *CheckCmd) Run(g *Global, cli *CLI) error {
	snap, err := loadSnapshot(context.Background(), g, cli.Dir)
	if err != nil {
		return err
	}
	links, err := UnresolvedLinks(snap)
	if err != nil {
		return err
	}
	out := g.stdout()
	for _, l := range links {
		if _, err := fmt.Fprintf(out, "%s: %s\n", l.Source, l.Destination); err != nil {
			return err
		}
	}
	g.logger().Info("Link check complete", logfields.Count(len(links)))
	if c.Strict && len(links) > 0 {
		return derrors.ValidationError(fmt.Sprintf("%d unresolved links", len(links))).Build()
	}
	return nil
}

// UnresolvedLinks lists, in entity order, the relative .md links of canonical docs that
// are not link table entries and so stay untouched when the doc is served.
func UnresolvedLinks(snap *snapshot.Snapshot) ([]UnresolvedLink, error) {
	var out []UnresolvedLink
	for _, e := range snap.Store.Entities() {
		if !e.Canonical() {
			continue
		}
		_, data, err := resolve.Read(e, snap.Site.TranslationEnabled(), snap.Roots)
		if err != nil {
			if derrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		doc, err := frontmatter.Parse(data)
		if err != nil {
			continue
		}
		for _, l := range markdown.ExtractLinks([]byte(doc.Body)) {
			if !l.IsRelativeDoc() {
				continue
			}
			file := strings.TrimPrefix(l.Destination, "./")
			if i := strings.IndexAny(file, "#?"); i >= 0 {
				file = file[:i]
			}
			if !snap.Links.Has(file) {
				out = append(out, UnresolvedLink{Source: e.Source, Destination: l.Destination})
			}
		}
	}
	return out, nil
}
