package commands

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cjmtoolkit/cjmtoolkit/internal/cli/output"
	"github.com/cjmtoolkit/cjmtoolkit/internal/logging"
	"github.com/cjmtoolkit/cjmtoolkit/internal/window"
	"github.com/cjmtoolkit/cjmtoolkit/pkg/settings"
)

// CheckOutput is the structured output of the check command.
type CheckOutput struct {
	File        string          `json:"file" yaml:"file"`
	Format      string          `json:"format" yaml:"format"`
	Status      string          `json:"status" yaml:"status"`
	Error       string          `json:"error,omitempty" yaml:"error,omitempty"`
	Root        string          `json:"root" yaml:"root"`
	RootFound   bool            `json:"root_found" yaml:"root_found"`
	Window      *window.Config  `json:"window,omitempty" yaml:"window,omitempty"`
	Diagnostics []logging.Entry `json:"diagnostics" yaml:"diagnostics"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the settings file and report problems",
		Long: `Load the settings file the way the application does at start up.

The report shows the load status, the main window configuration read from
<root>/MainWindow and every diagnostic recorded while loading.

The command fails when the file cannot be opened or parsed.`,
		Example: `  # Check the configured settings file
  cjmtoolkit check

  # Check another file and print JSON
  cjmtoolkit check --settings config/settings.xml -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd)
		},
	}
}

func runCheck(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	logger, history := cmdCtx.Recorder()

	doc, err := cmdCtx.LoadDocument(logger)
	if err != nil {
		return err
	}

	result := CheckOutput{
		File:   doc.FileName(),
		Format: doc.Format().String(),
		Status: doc.Status().String(),
		Root:   cmdCtx.Cfg.RootNode,
	}
	if doc.Err() != nil {
		result.Error = doc.Err().Error()
	}

	if doc.Status() == settings.StatusNoError {
		root := doc.Root().Child(cmdCtx.Cfg.RootNode)
		result.RootFound = root.Valid()
		if !root.Valid() {
			logger.Error("no root settings node", "root", cmdCtx.Cfg.RootNode)
		} else if mainWindow := root.Child(window.NodeName); mainWindow.Valid() {
			w := window.FromSettings(mainWindow, logger, filepath.Dir(doc.FileName()))
			result.Window = &w
		} else {
			logger.Warn("no settings for the main window", "node", window.NodeName)
		}
	}
	result.Diagnostics = history.Entries()

	if err := renderCheck(cmdCtx.Renderer, result); err != nil {
		return err
	}

	switch {
	case doc.Status() != settings.StatusNoError:
		return fmt.Errorf("settings file %s: %s: %w", doc.FileName(), doc.Status(), doc.Err())
	case !result.RootFound:
		return fmt.Errorf("no root settings node %q in %s", result.Root, doc.FileName())
	}
	return nil
}

func renderCheck(r *output.Renderer, result CheckOutput) error {
	if ok, err := r.Structured(result); ok {
		return err
	}

	r.Header(1, "Settings check")

	status := "success"
	if result.Status != settings.StatusNoError.String() {
		status = "failed"
	}
	detail := result.Status
	if result.Error != "" {
		detail += ": " + result.Error
	}
	r.StatusLine(result.File, status, detail)
	if result.Status == settings.StatusNoError.String() {
		rootStatus := "success"
		if !result.RootFound {
			rootStatus = "failed"
		}
		r.StatusLine("root node "+result.Root, rootStatus, "")
	}

	if w := result.Window; w != nil {
		r.Println("")
		r.Header(2, "Main window")
		renderKeyValue(r, "title", w.Title)
		renderKeyValue(r, "minimum width", strconv.Itoa(w.MinimumWidth))
		renderKeyValue(r, "minimum height", strconv.Itoa(w.MinimumHeight))
		if active, ok := w.ActiveStyleSheet(); ok {
			renderKeyValue(r, "style sheet", active.File)
		}
		if len(w.StyleSheets) > 0 {
			rows := make([][]string, 0, len(w.StyleSheets))
			for i, s := range w.StyleSheets {
				rows = append(rows, []string{strconv.Itoa(i), s.File, strconv.FormatBool(s.Exists)})
			}
			r.Println("")
			r.Table([]string{"#", "File", "Exists"}, rows)
		}
	}

	r.Println("")
	r.Header(2, fmt.Sprintf("Diagnostics (%d)", len(result.Diagnostics)))
	if len(result.Diagnostics) == 0 {
		r.Println("none")
		return nil
	}
	rows := make([][]string, 0, len(result.Diagnostics))
	for _, e := range result.Diagnostics {
		rows = append(rows, []string{e.Severity, strconv.FormatInt(e.Millis, 10) + "ms", e.Message, formatFields(e.Fields)})
	}
	r.Table([]string{"Severity", "Elapsed", "Message", "Fields"}, rows)
	return nil
}

func renderKeyValue(r *output.Renderer, key, value string) {
	if r.EffectiveMode() == output.ModeText {
		r.Printf("  %s %s\n", r.Styles().Muted.Render(key+":"), r.Styles().Value.Render(value))
		return
	}
	r.Println(output.FormatKeyValue(key, value))
}

func formatFields(fields []logging.Field) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Key+"="+f.Value)
	}
	return strings.Join(parts, " ")
}
