package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/cjmtoolkit/cjmtoolkit/internal/cli"
	"github.com/cjmtoolkit/cjmtoolkit/internal/cli/config"
)

// configKey documents one key of cjmtoolkit.yaml.
type configKey struct {
	Key         string
	Default     any
	Description string
}

// configKeys lists the configuration keys with their built-in defaults.
func configKeys() []configKey {
	server := config.DefaultServerConfig()
	return []configKey{
		{"settings_file", config.DefaultSettingsFile, "Settings file to load"},
		{"format", config.DefaultFormat, "Settings file format"},
		{"root_node", config.DefaultRootNode, "Name of the root settings node"},
		{"log_file", "", "File that also receives diagnostics"},
		{"log_level", config.DefaultLogLevel, "Minimum diagnostic level"},
		{"verbose", false, "Verbose output"},
		{"no_color", false, "Disable coloured output"},
		{"output", config.DefaultOutput, "Output format"},
		{"server.port", server.Port, "Port for the serve command"},
		{"server.watch", server.Watch, "Reload the settings file when it changes"},
	}
}

// envVar returns the environment variable that sets key.
func envVar(key string) string {
	return config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// sampleConfig renders the defaults as a cjmtoolkit.yaml document.
func sampleConfig(keys []configKey) (string, error) {
	root := map[string]any{}
	for _, k := range keys {
		parts := strings.Split(k.Key, ".")
		m := root
		for _, p := range parts[:len(parts)-1] {
			child, ok := m[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				m[p] = child
			}
			m = child
		}
		m[parts[len(parts)-1]] = k.Default
	}
	out, err := yaml.Marshal(root)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// documented reports whether cmd gets a page of its own.
func documented(cmd *cobra.Command) bool {
	return !cmd.Hidden && cmd.Name() != "help" && cmd.Name() != "__complete"
}

// pageName is the file name, without extension, of cmd's page:
// "dump" for cjmtoolkit dump.
func pageName(cmd *cobra.Command) string {
	path := strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" ")
	return strings.ReplaceAll(path, " ", "-")
}

// generateCLIDocs writes index.md plus one page per command to outDir.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rootCmd := cli.NewRootCmd()
	if err := writePage(outDir, "index", indexPage(rootCmd)); err != nil {
		return fmt.Errorf("failed to generate index: %w", err)
	}

	var walk func(*cobra.Command) error
	walk = func(parent *cobra.Command) error {
		for _, cmd := range parent.Commands() {
			if !documented(cmd) {
				continue
			}
			if err := writePage(outDir, pageName(cmd), commandPage(cmd)); err != nil {
				return fmt.Errorf("failed to generate page for %s: %w", cmd.CommandPath(), err)
			}
			if err := walk(cmd); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(rootCmd)
}

func writePage(outDir, name string, w *MarkdownWriter) error {
	if err := os.WriteFile(filepath.Join(outDir, name+".md"), w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated %s.md", name)
	return nil
}

// indexPage is the CLI overview: commands, global flags and configuration.
func indexPage(rootCmd *cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for cjmtoolkit")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("cjmtoolkit loads a hierarchical XML settings file and lets you check, query, browse and serve it.")

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/cjmtoolkit/cjmtoolkit/cmd/cjmtoolkit@latest")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range rootCmd.Commands() {
		if !documented(cmd) {
			continue
		}
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), pageName(cmd))
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Paragraph("These flags are available for all commands:")
	writeFlagsTable(w, rootCmd.PersistentFlags())

	keys := configKeys()
	w.Header(2, "Configuration")
	w.Paragraph("Settings are read from " + InlineCode("cjmtoolkit.yaml") + " in the working directory, then from the environment, then from flags. Later sources win. Relative paths in the config file are resolved against its directory.")
	if sample, err := sampleConfig(keys); err == nil {
		w.CodeBlock("yaml", sample)
	} else {
		log.Printf("  skipping sample config: %v", err)
	}

	rows = rows[:0]
	for _, k := range keys {
		def := fmt.Sprint(k.Default)
		if s, ok := k.Default.(string); ok {
			def = strconv.Quote(s)
		}
		rows = append(rows, []string{InlineCode(k.Key), InlineCode(envVar(k.Key)), InlineCode(def), k.Description})
	}
	w.Table([]string{"Key", "Variable", "Default", "Description"}, rows)

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), "Error, including a settings file that did not load (details on stderr)"},
	})
	return w
}

// commandPage documents a single command.
func commandPage(cmd *cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.CommandPath(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.CommandPath())
	if cmd.Long != "" {
		w.CodeBlock("", cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	useLine := cmd.UseLine()
	if cmd.HasAvailableSubCommands() {
		useLine = cmd.CommandPath() + " <subcommand> [options]"
	}
	w.CodeBlock("bash", useLine)

	if len(cmd.Aliases) > 0 {
		w.Header(2, "Aliases")
		aliases := make([]string, 0, len(cmd.Aliases))
		for _, alias := range cmd.Aliases {
			aliases = append(aliases, InlineCode(alias))
		}
		w.BulletList(aliases)
	}

	if cmd.HasAvailableSubCommands() {
		w.Header(2, "Subcommands")
		var rows [][]string
		for _, sub := range cmd.Commands() {
			if documented(sub) {
				rows = append(rows, []string{InlineCode(sub.Name()), cleanDescription(sub.Short)})
			}
		}
		w.Table([]string{"Subcommand", "Description"}, rows)
	}

	if cmd.HasAvailableLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags())
	}
	if cmd.HasAvailableInheritedFlags() {
		w.Header(2, "Global Options")
		writeFlagsTable(w, cmd.InheritedFlags())
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", cleanExample(cmd.Example))
	}
	return w
}

// writeFlagsTable writes one row per visible flag.
func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		short := ""
		if f.Shorthand != "" {
			short = InlineCode("-" + f.Shorthand)
		}
		def := f.DefValue
		if def != "" && f.Value.Type() != "bool" {
			def = InlineCode(def)
		}
		rows = append(rows, []string{InlineCode("--" + f.Name), short, def, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Option", "Short", "Default", "Description"}, rows)
}

// cleanExample strips the indentation shared by every non-blank line.
func cleanExample(example string) string {
	lines := strings.Split(example, "\n")

	common := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if common == -1 || n < common {
			common = n
		}
	}
	if common <= 0 {
		return strings.TrimSpace(example)
	}

	for i, line := range lines {
		if len(line) >= common {
			lines[i] = line[common:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
