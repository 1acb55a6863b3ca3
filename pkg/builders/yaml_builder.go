// Package builders loads state tree declarations from YAML documents
package builders

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/anggasct/hfsm"
)

// Declaration is the document form of a state tree
type Declaration struct {
	Name   string     `yaml:"name"`
	States []NodeSpec `yaml:"states"`
}

// NodeSpec declares one state. Exactly one of State, Composite, Orthogonal
// or Tag must be set; Tag is used together with an explicit Kind.
type NodeSpec struct {
	State      string     `yaml:"state,omitempty"`
	Composite  string     `yaml:"composite,omitempty"`
	Orthogonal string     `yaml:"orthogonal,omitempty"`
	Tag        string     `yaml:"tag,omitempty"`
	Kind       string     `yaml:"kind,omitempty"`
	States     []NodeSpec `yaml:"states,omitempty"`
}

// Parse decodes a YAML declaration
func Parse(data []byte) (*Declaration, error) {
	var decl Declaration
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&decl); err != nil {
		if err == io.EOF {
			return nil, hfsm.NewConfigurationError("Declaration", "document is empty")
		}
		return nil, fmt.Errorf("failed to parse declaration: %w", err)
	}
	return &decl, nil
}

// LoadFile reads and parses a declaration file
func LoadFile(path string) (*Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read declaration: %w", err)
	}
	return Parse(data)
}

// Nodes converts the declaration into the node tree accepted by hfsm.Define
func (d *Declaration) Nodes() ([]*hfsm.Node, error) {
	nodes := make([]*hfsm.Node, 0, len(d.States))
	for i := range d.States {
		n, err := d.States[i].node()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// Define analyzes the declared tree
func (d *Declaration) Define() (*hfsm.Definition, error) {
	nodes, err := d.Nodes()
	if err != nil {
		return nil, err
	}
	return hfsm.Define(nodes...)
}

// Build parses a YAML document straight into a definition
func Build(data []byte) (*hfsm.Definition, error) {
	decl, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return decl.Define()
}

func (s *NodeSpec) node() (*hfsm.Node, error) {
	var (
		tag  string
		kind hfsm.NodeKind
		set  int
	)
	if s.State != "" {
		tag, kind = s.State, hfsm.Leaf
		set++
	}
	if s.Composite != "" {
		tag, kind = s.Composite, hfsm.Exclusive
		set++
	}
	if s.Orthogonal != "" {
		tag, kind = s.Orthogonal, hfsm.Parallel
		set++
	}
	if s.Tag != "" {
		k, err := hfsm.ParseNodeKind(s.Kind)
		if err != nil {
			return nil, err
		}
		tag, kind = s.Tag, k
		set++
	}
	if set != 1 {
		return nil, hfsm.NewConfigurationError("Declaration",
			fmt.Sprintf("node must set exactly one of state, composite, orthogonal or tag (got %d)", set))
	}

	children := make([]*hfsm.Node, 0, len(s.States))
	for i := range s.States {
		c, err := s.States[i].node()
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return hfsm.Region(kind, tag, children...), nil
}

// FromDefinition renders a definition back into its document form
func FromDefinition(name string, def *hfsm.Definition) *Declaration {
	decl := &Declaration{Name: name}
	for _, c := range def.Children(hfsm.RootID) {
		decl.States = append(decl.States, specOf(def, c))
	}
	return decl
}

func specOf(def *hfsm.Definition, id hfsm.StateID) NodeSpec {
	var s NodeSpec
	switch def.KindOf(id) {
	case hfsm.Leaf:
		s.State = def.Tag(id)
	case hfsm.Exclusive:
		s.Composite = def.Tag(id)
	case hfsm.Parallel:
		s.Orthogonal = def.Tag(id)
	}
	for _, c := range def.Children(id) {
		s.States = append(s.States, specOf(def, c))
	}
	return s
}

// Marshal encodes the declaration as YAML
func (d *Declaration) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
