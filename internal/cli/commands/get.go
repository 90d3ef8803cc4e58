package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ErrNotFound is returned when a path or attribute does not exist.
var ErrNotFound = errors.New("not found")

// GetOptions holds options for the get and attr commands.
type GetOptions struct {
	Absolute bool
}

// ValueOutput is the structured output of the get command.
type ValueOutput struct {
	Path  string `json:"path" yaml:"path"`
	Value string `json:"value" yaml:"value"`
}

// AttributeOutput is the structured output of the attr command.
type AttributeOutput struct {
	Path  string `json:"path" yaml:"path"`
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	opts := &GetOptions{}
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Print the value of a settings node",
		Long: `Print the value of the node at path.

Paths are slash separated node names relative to the root node. An index in
brackets picks one of several nodes with the same name, [-1] the last one.`,
		Example: `  # Minimum window width
  cjmtoolkit get MainWindow/Size/Minimum/Width

  # Last style sheet
  cjmtoolkit get 'MainWindow/StyleSheet/file[-1]'

  # Start at the top of the file instead of the root node
  cjmtoolkit get --absolute CJMToolkit/MainWindow/Size/Minimum/Width`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args[0], opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Absolute, "absolute", false, "Resolve the path from the top of the document")
	return cmd
}

func runGet(cmd *cobra.Command, path string, opts *GetOptions) error {
	cmdCtx := NewCommandContext(cmd)
	doc, err := cmdCtx.MustLoadDocument()
	if err != nil {
		return err
	}
	target, err := cmdCtx.Resolve(doc, path, opts.Absolute)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if ok, err := r.Structured(ValueOutput{Path: target.Path(), Value: target.Value()}); ok {
		return err
	}
	r.Println(target.Value())
	return nil
}

// NewAttrCommand creates the attr command.
func NewAttrCommand() *cobra.Command {
	opts := &GetOptions{}
	cmd := &cobra.Command{
		Use:   "attr <path> <name>",
		Short: "Print an attribute of a settings node",
		Long:  `Print the attribute called name of the node at path. Paths work as for get.`,
		Example: `  # Window title
  cjmtoolkit attr MainWindow title`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAttr(cmd, args[0], args[1], opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Absolute, "absolute", false, "Resolve the path from the top of the document")
	return cmd
}

func runAttr(cmd *cobra.Command, path, name string, opts *GetOptions) error {
	cmdCtx := NewCommandContext(cmd)
	doc, err := cmdCtx.MustLoadDocument()
	if err != nil {
		return err
	}
	target, err := cmdCtx.Resolve(doc, path, opts.Absolute)
	if err != nil {
		return err
	}
	value, ok := target.LookupAttribute(name)
	if !ok {
		return fmt.Errorf("%w: attribute %q of %s", ErrNotFound, name, target.Path())
	}

	r := cmdCtx.Renderer
	if ok, err := r.Structured(AttributeOutput{Path: target.Path(), Name: name, Value: value}); ok {
		return err
	}
	r.Println(value)
	return nil
}
