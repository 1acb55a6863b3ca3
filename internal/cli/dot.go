package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anggasct/hfsm/visualization"
)

// DotOptions holds flags for the dot command.
type DotOptions struct {
	Output        string
	RankDirection string
	NoIdentities  bool
	SVG           bool
}

// generator is implemented by the DOT and SVG renderers
type generator interface {
	Generate() (string, error)
	GenerateToFile(filename string) error
}

// NewDotCommand creates the dot command.
func NewDotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DotOptions{}

	cmd := &cobra.Command{
		Use:          "dot <tree.yaml>",
		Short:        "Render a state tree as Graphviz DOT",
		Long: `Render a state tree declaration as Graphviz DOT, or as SVG through the
Graphviz dot binary when --svg is given.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, def, err := loadDefinition(args[0])
			if err != nil {
				return err
			}

			dotOpts := visualization.DefaultDOTOptions()
			dotOpts.RankDirection = opts.RankDirection
			dotOpts.ShowIdentities = !opts.NoIdentities
			var gen generator = visualization.NewDOTGenerator(def, dotOpts)
			if opts.SVG {
				gen = visualization.NewSVGGenerator(def, dotOpts)
			}

			if opts.Output != "" {
				return gen.GenerateToFile(opts.Output)
			}
			content, err := gen.Generate()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), content)
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write DOT to this file instead of stdout")
	cmd.Flags().StringVar(&opts.RankDirection, "rankdir", "TB", "graph rank direction (TB|LR|BT|RL)")
	cmd.Flags().BoolVar(&opts.NoIdentities, "no-ids", false, "omit state identities from labels")
	cmd.Flags().BoolVar(&opts.SVG, "svg", false, "render SVG with the Graphviz dot binary")

	return cmd
}
