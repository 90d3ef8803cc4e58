package commands

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cjmtoolkit/cjmtoolkit/internal/browse"
)

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the settings tree in the terminal",
		Long: `Open an interactive browser on the settings file.

Keys:
  j/k, arrows   move
  l, enter      open the selected node
  h, backspace  go back
  ?             full help
  q             quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			doc, err := cmdCtx.LoadDocument(nil)
			if err != nil {
				return err
			}
			program := tea.NewProgram(browse.New(doc),
				tea.WithAltScreen(),
				tea.WithContext(contextOf(cmd)),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err = program.Run()
			return err
		},
	}
}
