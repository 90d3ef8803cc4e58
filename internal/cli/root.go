// Package cli provides the command-line interface for cjmtoolkit.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cjmtoolkit/cjmtoolkit/internal/cli/commands"
	"github.com/cjmtoolkit/cjmtoolkit/internal/cli/config"
	"github.com/cjmtoolkit/cjmtoolkit/internal/logging"
	"github.com/cjmtoolkit/cjmtoolkit/internal/version"
)

// skipsConfig lists the commands that run without loading configuration.
var skipsConfig = map[string]bool{
	"help":       true,
	"completion": true,
	"__complete": true,
	"version":    true,
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "cjmtoolkit",
		Short: "cjmtoolkit - hierarchical settings store",
		Long: `cjmtoolkit loads a hierarchical XML settings file into a tree of named,
ordered nodes and lets you inspect it.

Configuration comes from cjmtoolkit.yaml, CJMTOOLKIT_* environment variables
and flags, in increasing order of precedence.`,
		Version: version.Current.String(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipsConfig[cmd.Name()] {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			level, err := logging.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			if cfg.Verbose && level > logging.LevelTrace {
				level = logging.LevelTrace
			}
			if err := logging.Init(logging.Options{
				File:    cfg.LogFile,
				Level:   level,
				NoColor: cfg.NoColor,
				Console: cmd.ErrOrStderr(),
			}); err != nil {
				return fmt.Errorf("failed to initialise logging: %w", err)
			}
			logger, err := logging.Default()
			if err != nil {
				return err
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					logger.Debug("using config file", "file", configFile)
				}
				logger.Debug("using settings file", "file", cfg.SettingsFile, "root", cfg.RootNode)
			}
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return logging.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{.Name}} {{.Version}}
settings library %s
`, version.Common))

	// Global persistent flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./cjmtoolkit.yaml)")
	flags.StringP("settings", "s", "", "Settings file (default: settings.cfg)")
	flags.String("format", "", "Settings file format (xml)")
	flags.String("root", "", "Root settings node (default: CJMToolkit)")
	flags.String("log-file", "", "Also write diagnostics to this file")
	flags.String("log-level", "", "Minimum diagnostic level (trace|debug|info|warn|error|fatal)")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.Bool("no-color", false, "Disable coloured output")
	flags.StringP("output", "o", "", "Output format (auto|text|markdown|json|yaml)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.OutputModes, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"xml"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"trace", "debug", "info", "warn", "error", "fatal"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.MarkPersistentFlagFilename("settings", "xml", "cfg")
	_ = rootCmd.MarkPersistentFlagFilename("config", "yaml", "yml")

	rootCmd.AddCommand(commands.NewVersionCommand(version.Current, version.Common))
	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewGetCommand())
	rootCmd.AddCommand(commands.NewAttrCommand())
	rootCmd.AddCommand(commands.NewDumpCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewBrowseCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		_ = logging.Close()
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for cjmtoolkit.

To load completions:

Bash:
  $ source <(cjmtoolkit completion bash)

Zsh:
  $ cjmtoolkit completion zsh > "${fpath[1]}/_cjmtoolkit"

Fish:
  $ cjmtoolkit completion fish | source

PowerShell:
  PS> cjmtoolkit completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
