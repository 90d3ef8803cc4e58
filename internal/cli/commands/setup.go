package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cjmtoolkit/cjmtoolkit/internal/cli/config"
	"github.com/cjmtoolkit/cjmtoolkit/internal/cli/output"
	"github.com/cjmtoolkit/cjmtoolkit/internal/logging"
	"github.com/cjmtoolkit/cjmtoolkit/pkg/settings"
)

// diagnosticsCapacity bounds the diagnostics a command keeps while loading.
const diagnosticsCapacity = 128

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds a CommandContext from the config and logger the
// root command stored in cmd's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
	if cfg.NoColor {
		r.SetNoColor(true)
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: r,
	}
}

// Format returns the configured settings format.
func (c *CommandContext) Format() (settings.Format, error) {
	return settings.ParseFormat(c.Cfg.Format)
}

// Recorder returns a logger writing to the command logger that also keeps
// every diagnostic at debug level or above.
func (c *CommandContext) Recorder() (*slog.Logger, *logging.History) {
	return logging.Record(c.Logger, slog.LevelDebug, diagnosticsCapacity)
}

// LoadDocument loads the configured settings file, reporting to logger. A
// nil logger means the command logger.
func (c *CommandContext) LoadDocument(logger *slog.Logger) (*settings.Document, error) {
	format, err := c.Format()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = c.Logger
	}
	doc := settings.Load(c.Cfg.SettingsFile, format, settings.WithLogger(logger))
	if doc.Status() == settings.StatusNoError {
		logger.Info("settings file loaded successfully", "file", doc.FileName())
	}
	return doc, nil
}

// MustLoadDocument is LoadDocument, failing when the file did not load
// cleanly.
func (c *CommandContext) MustLoadDocument() (*settings.Document, error) {
	doc, err := c.LoadDocument(nil)
	if err != nil {
		return nil, err
	}
	if doc.Status() != settings.StatusNoError {
		logging.Fatal(context.Background(), c.Logger, "failed to initialise the settings file", "file", doc.FileName(), "status", doc.Status())
		return nil, fmt.Errorf("failed to initialise the settings file %s (%s): %w", doc.FileName(), doc.Status(), doc.Err())
	}
	return doc, nil
}

// RootNode returns a cursor on the configured root node of doc.
func (c *CommandContext) RootNode(doc *settings.Document) (settings.Cursor, error) {
	root := doc.Root().Child(c.Cfg.RootNode)
	if !root.Valid() {
		c.Logger.Error("no root settings node", "root", c.Cfg.RootNode)
		return root, fmt.Errorf("no root settings node %q in %s", c.Cfg.RootNode, doc.FileName())
	}
	return root, nil
}

// Resolve finds path in doc. Paths start at the configured root node unless
// absolute is set.
func (c *CommandContext) Resolve(doc *settings.Document, path string, absolute bool) (settings.Cursor, error) {
	if _, err := settings.ParsePath(path); err != nil {
		return settings.Cursor{}, fmt.Errorf("invalid path: %w", err)
	}
	start := doc.Root()
	if !absolute {
		root, err := c.RootNode(doc)
		if err != nil {
			return root, err
		}
		start = root
	}
	target := start.Find(path)
	if !target.Valid() {
		return target, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return target, nil
}
