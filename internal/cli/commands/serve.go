package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cjmtoolkit/cjmtoolkit/internal/logging"
	"github.com/cjmtoolkit/cjmtoolkit/internal/server"
	"github.com/cjmtoolkit/cjmtoolkit/pkg/settings"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port  int
	Watch bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the settings file over HTTP",
		Long: `Start a local, read-only HTTP view of the settings file.

Endpoints:
  GET  /healthz
  GET  /api/status
  GET  /api/tree?path=
  GET  /api/node?path=
  GET  /api/value?path=
  GET  /api/attribute?path=&name=
  GET  /api/diagnostics?level=
  POST /api/reload
  GET  /events            (server-sent events on every reload)

Paths are relative to the top of the document. With --watch the file is
reloaded whenever it changes; an edit that does not parse keeps the
previous tree.`,
		Example: `  # Serve on the configured port
  cjmtoolkit serve

  # Serve on another port without watching
  cjmtoolkit serve --port 9000 --watch=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8770)")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Reload the settings file when it changes")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx := NewCommandContext(cmd)
	doc, err := cmdCtx.LoadDocument(nil)
	if err != nil {
		return err
	}

	// Flags override the config file.
	serverCfg := cmdCtx.Cfg.GetServerConfig()
	port := serverCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	watch := serverCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	store := server.NewStoreFromDocument(doc, cmdCtx.Logger)
	if doc.Status() != settings.StatusNoError {
		cmdCtx.Renderer.Warning(fmt.Sprintf("settings file %s: %s", doc.FileName(), doc.Status()))
	}

	srv := server.New(server.Config{
		Store:       store,
		Port:        port,
		Watch:       watch,
		Diagnostics: logging.Recent,
		Logger:      cmdCtx.Logger,
	})

	cmdCtx.Renderer.Printf("Serving %s on http://localhost:%d\n", store.File(), port)
	cmdCtx.Renderer.Println("Press Ctrl+C to stop")

	ctx, cancel := signal.NotifyContext(contextOf(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return srv.Serve(ctx)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
