package commands

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cjmtoolkit/cjmtoolkit/internal/cli/output"
	"github.com/cjmtoolkit/cjmtoolkit/pkg/settings"
)

// NewDumpCommand creates the dump command.
func NewDumpCommand() *cobra.Command {
	opts := &GetOptions{}
	cmd := &cobra.Command{
		Use:   "dump [path]",
		Short: "Print a settings subtree",
		Long: `Print every node below path, parents before children.

Output adapts to environment:
  - Terminal: indented tree
  - Piped/Scripted: Markdown table
  - JSON/YAML: flat list of entries with their paths`,
		Example: `  # Whole root node
  cjmtoolkit dump

  # Style sheets as YAML
  cjmtoolkit dump MainWindow/StyleSheet -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runDump(cmd, path, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Absolute, "absolute", false, "Resolve the path from the top of the document")
	return cmd
}

func runDump(cmd *cobra.Command, path string, opts *GetOptions) error {
	cmdCtx := NewCommandContext(cmd)
	doc, err := cmdCtx.MustLoadDocument()
	if err != nil {
		return err
	}
	target, err := cmdCtx.Resolve(doc, path, opts.Absolute)
	if err != nil {
		return err
	}

	entries := target.Entries()
	r := cmdCtx.Renderer
	if ok, err := r.Structured(entries); ok {
		return err
	}
	if r.EffectiveMode() == output.ModeText {
		dumpText(r, entries)
		return nil
	}
	dumpTable(r, entries)
	return nil
}

func dumpText(r *output.Renderer, entries []settings.Entry) {
	if len(entries) == 0 {
		return
	}
	base := entries[0].Depth
	s := r.Styles()
	for _, e := range entries {
		var b strings.Builder
		b.WriteString(strings.Repeat("  ", e.Depth-base))
		name := e.Name
		if name == "" {
			name = "/"
		}
		b.WriteString(s.Path.Render(name))
		if strings.HasSuffix(e.Path, "]") {
			b.WriteString(s.Muted.Render("[" + strconv.Itoa(e.Index) + "]"))
		}
		for _, attr := range slices.Sorted(maps.Keys(e.Attributes)) {
			b.WriteString(" " + s.Muted.Render("@"+attr+"=") + strconv.Quote(e.Attributes[attr]))
		}
		if e.Value != "" {
			b.WriteString(" = " + s.Value.Render(e.Value))
		}
		r.Println(b.String())
	}
}

func dumpTable(r *output.Renderer, entries []settings.Entry) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		attrs := make([]string, 0, len(e.Attributes))
		for _, k := range slices.Sorted(maps.Keys(e.Attributes)) {
			attrs = append(attrs, k+"="+strconv.Quote(e.Attributes[k]))
		}
		rows = append(rows, []string{e.Path, e.Value, strings.Join(attrs, " ")})
	}
	r.Table([]string{"Path", "Value", "Attributes"}, rows)
}
