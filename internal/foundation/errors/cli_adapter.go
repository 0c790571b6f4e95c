package errors

import (
	"context"
	"log/slog"
)

// CLIErrorAdapter turns command errors into exit codes and log records.
type CLIErrorAdapter struct {
	logger *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{logger: logger}
}

// ExitCodeFor determines the process exit code for err.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	c, ok := AsClassified(err)
	if !ok {
		return 1
	}
	switch c.Category() {
	case CategoryValidation:
		return 2
	case CategoryNotFound:
		return 3
	case CategoryConfig:
		return 7
	case CategoryFileSystem, CategoryContent, CategoryGit, CategoryRender:
		return 11
	case CategoryRuntime:
		return 12
	case CategoryInternal:
		return 10
	default:
		return 1
	}
}

// Report logs err with its classification and returns the exit code to use.
func (a *CLIErrorAdapter) Report(err error) int {
	if err == nil {
		return 0
	}
	if c, ok := AsClassified(err); ok {
		attrs := []slog.Attr{slog.String("category", string(c.Category()))}
		for k, v := range c.Context() {
			attrs = append(attrs, slog.Any(k, v))
		}
		if c.Cause() != nil {
			attrs = append(attrs, slog.String("cause", c.Cause().Error()))
		}
		a.logger.LogAttrs(context.Background(), slogLevelFromSeverity(c.Severity()), c.Message(), attrs...)
	} else {
		a.logger.Error("Command failed", slog.String("error", err.Error()))
	}
	return a.ExitCodeFor(err)
}
