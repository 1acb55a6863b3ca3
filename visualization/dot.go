package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/anggasct/hfsm"
)

// ActiveSource is implemented by machines whose configuration can be drawn
type ActiveSource interface {
	ActiveStates() []string
}

// DOTGenerator generates Graphviz DOT format representations of state trees
type DOTGenerator struct {
	definition *hfsm.Definition
	options    DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowIdentities  bool
	RankDirection   string // "TB", "LR", "BT", "RL"
	NodeShape       string
	LeafColor       string
	CompositeColor  string
	OrthogonalColor string
	ActiveColor     string
	// Active, when set, highlights the configuration it reports
	Active ActiveSource
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowIdentities:  true,
		RankDirection:   "TB",
		NodeShape:       "box",
		LeafColor:       "white",
		CompositeColor:  "lightcyan",
		OrthogonalColor: "lavender",
		ActiveColor:     "lightgreen",
	}
}

// NewDOTGenerator creates a new DOT generator for the given definition
func NewDOTGenerator(definition *hfsm.Definition, options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &DOTGenerator{
		definition: definition,
		options:    opts,
	}
}

// Generate creates a DOT representation of the state tree. States are
// emitted in identity order so the output is stable.
func (g *DOTGenerator) Generate() (string, error) {
	if g.definition == nil {
		return "", fmt.Errorf("no definition to render")
	}

	var dot strings.Builder

	dot.WriteString("digraph StateMachine {\n")
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString(fmt.Sprintf("  node [shape=%s style=\"rounded,filled\"];\n", g.options.NodeShape))
	dot.WriteString("  edge [fontsize=10];\n\n")

	active := make(map[string]bool)
	if g.options.Active != nil {
		for _, tag := range g.options.Active.ActiveStates() {
			active[tag] = true
		}
	}

	g.generateStates(&dot, active)
	dot.WriteString("\n")
	g.generateRegions(&dot)

	dot.WriteString("}\n")

	return dot.String(), nil
}

// generateStates generates DOT nodes for all states
func (g *DOTGenerator) generateStates(dot *strings.Builder, active map[string]bool) {
	dot.WriteString("  // States\n")

	for i := 0; i < g.definition.Len(); i++ {
		id := hfsm.StateID(i)
		tag := g.definition.Tag(id)

		label := tag
		if g.options.ShowIdentities {
			label = fmt.Sprintf("%s\\n#%d", tag, i)
		}

		fill := g.options.LeafColor
		switch g.definition.KindOf(id) {
		case hfsm.Exclusive:
			fill = g.options.CompositeColor
		case hfsm.Parallel:
			fill = g.options.OrthogonalColor
		}
		if active[tag] {
			fill = g.options.ActiveColor
		}

		dot.WriteString(fmt.Sprintf("  %q [label=\"%s\" fillcolor=%s];\n", tag, label, fill))
	}
}

// generateRegions generates DOT edges from every region to its children.
// Default children of exclusive regions are bold; parallel edges dashed.
func (g *DOTGenerator) generateRegions(dot *strings.Builder) {
	dot.WriteString("  // Regions\n")

	for i := 0; i < g.definition.Len(); i++ {
		id := hfsm.StateID(i)
		kind := g.definition.KindOf(id)
		for n, c := range g.definition.Children(id) {
			edge := fmt.Sprintf("  %q -> %q", g.definition.Tag(id), g.definition.Tag(c))
			switch {
			case kind == hfsm.Parallel:
				edge += " [style=dashed]"
			case n == 0:
				edge += " [style=bold]"
			}
			dot.WriteString(edge + ";\n")
		}
	}
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

// SVGGenerator generates SVG representations by calling Graphviz
type SVGGenerator struct {
	dotGenerator *DOTGenerator
}

// NewSVGGenerator creates a new SVG generator
func NewSVGGenerator(definition *hfsm.Definition, options ...DOTOptions) *SVGGenerator {
	return &SVGGenerator{
		dotGenerator: NewDOTGenerator(definition, options...),
	}
}

// Generate creates an SVG representation of the state tree
func (g *SVGGenerator) Generate() (string, error) {
	dotContent, err := g.dotGenerator.Generate()
	if err != nil {
		return "", err
	}

	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute dot command: %w (make sure Graphviz is installed): %s",
			err, strings.TrimSpace(stderr.String()))
	}

	return out.String(), nil
}

// GenerateToFile writes the SVG representation to a file
func (g *SVGGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}
