// Package commands implements the docserve subcommands.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docserve/internal/snapshot"
)

// Global is passed to every subcommand.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Dir     string           `short:"d" help:"Website directory holding siteConfig.yaml" default:"website" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve   ServeCmd   `cmd:"" default:"withargs" help:"Serve the site with hot reload"`
	Resolve ResolveCmd `cmd:"" help:"Resolve a single request path and print the result"`
	Check   CheckCmd   `cmd:"" help:"List relative Markdown links that do not point at a known doc"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// loadSnapshot builds a one-off snapshot for the commands that do not serve.
func loadSnapshot(ctx context.Context, g *Global, dir string) (*snapshot.Snapshot, error) {
	return snapshot.Build(ctx, dir, 1, g.logger())
}
