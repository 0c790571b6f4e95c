package commands

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"git.home.luguber.info/inful/docserve/internal/router"
)

// ResolveCmd resolves one request path the way the server would and prints the result.
type ResolveCmd struct {
	Path string `arg:"" help:"Request path including the base URL, e.g. /docs/intro.html"`
	Body bool   `name:"body" default:"true" negatable:"" help:"Print the resolved body."`
}

func (c *ResolveCmd) Run(g *Global, cli *CLI) error {
	ctx := context.Background()
	snap, err := loadSnapshot(ctx, g, cli.Dir)
	if err != nil {
		return err
	}
	res, err := router.NewResolver(g.logger()).Resolve(ctx, snap, c.Path)
	if err != nil {
		return err
	}
	return c.print(g.stdout(), res)
}

func (c *ResolveCmd) print(w io.Writer, res *router.Result) error {
	lines := []string{fmt.Sprintf("intent: %s", res.Intent.Kind)}
	if res.Intent.Path != "" {
		lines = append(lines, "path: "+res.Intent.Path)
	}
	if res.Redirected {
		lines = append(lines, "redirected: true")
	}
	if res.Intent.Kind == router.IntentFeed {
		lines = append(lines, fmt.Sprintf("feed: %s", res.Intent.Feed))
	}
	if p := res.Payload; p != nil {
		lines = append(lines,
			fmt.Sprintf("kind: %s", p.Kind),
			"title: "+p.Title,
			fmt.Sprintf("format: %s", p.Format))
		if p.Language != "" {
			lines = append(lines, "language: "+p.Language)
		}
		if p.Layout != "" {
			lines = append(lines, "layout: "+p.Layout)
		}
		if p.SourceFile != "" {
			lines = append(lines, "file: "+p.SourceFile)
		}
		if p.LastUpdated != nil {
			lines = append(lines, fmt.Sprintf("updated: %s by %s", p.LastUpdated.Time.Format("2006-01-02"), p.LastUpdated.Author))
		}
	}
	for _, tag := range slices.Sorted(maps.Keys(res.Alternates)) {
		lines = append(lines, fmt.Sprintf("alternate %s: %s", tag, res.Alternates[tag]))
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	if c.Body && res.Payload != nil {
		if _, err := fmt.Fprintf(w, "\n%s\n", res.Payload.Body); err != nil {
			return err
		}
	}
	return nil
}
