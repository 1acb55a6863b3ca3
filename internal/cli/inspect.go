package cli

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/anggasct/hfsm"
	"github.com/anggasct/hfsm/pkg/builders"
)

// StateInfo describes one analyzed state.
type StateInfo struct {
	ID     int    `json:"id"`
	Tag    string `json:"tag"`
	Kind   string `json:"kind"`
	Parent int    `json:"parent"`
	Depth  int    `json:"depth"`
}

// InspectResult is the JSON form of the inspect command.
type InspectResult struct {
	Name     string        `json:"name"`
	States   []StateInfo   `json:"states"`
	Counters hfsm.Counters `json:"counters"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <tree.yaml>",
		Short: "Print state identities and topology counters",
		Long: `Analyze a state tree declaration and print every state's identity
(pre-order, root at 0) together with the derived counters.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			decl, def, err := loadDefinition(args[0])
			if err != nil {
				return err
			}
			return writeInspect(cmd.OutOrStdout(), rootOpts.Format, inspect(decl.Name, def))
		},
	}

	return cmd
}

func loadDefinition(path string) (*builders.Declaration, *hfsm.Definition, error) {
	decl, err := builders.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	def, err := decl.Define()
	if err != nil {
		return nil, nil, err
	}
	return decl, def, nil
}

func inspect(name string, def *hfsm.Definition) InspectResult {
	res := InspectResult{Name: name, Counters: def.Counters()}
	for i := 0; i < def.Len(); i++ {
		id := hfsm.StateID(i)
		res.States = append(res.States, StateInfo{
			ID:     i,
			Tag:    def.Tag(id),
			Kind:   def.KindOf(id).String(),
			Parent: int(def.Parent(id)),
			Depth:  def.Depth(id),
		})
	}
	return res
}

func writeInspect(w io.Writer, format string, res InspectResult) error {
	if format == "json" {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", res.Name)
	for _, s := range res.States {
		suffix := ""
		if s.Kind != hfsm.Leaf.String() {
			suffix = " (" + s.Kind + ")"
		}
		fmt.Fprintf(&b, "%3d %s%s%s\n", s.ID, strings.Repeat("  ", s.Depth), s.Tag, suffix)
	}
	c := res.Counters
	fmt.Fprintf(&b, "states: %d\n", c.StateCount)
	fmt.Fprintf(&b, "composites: %d\n", c.CompositeCount)
	fmt.Fprintf(&b, "orthogonals: %d\n", c.OrthogonalCount)
	fmt.Fprintf(&b, "deep width: %d\n", c.DeepWidth)
	fmt.Fprintf(&b, "orthogonal units: %d\n", c.OrthogonalUnits)
	fmt.Fprintf(&b, "prongs: %d\n", c.ProngCount)
	_, err := io.WriteString(w, b.String())
	return err
}
