package hfsm

import (
	"fmt"
	"strings"
)

// RootTag is the tag of the implicit root region that Define wraps around
// the declared top-level states.
const RootTag = "<root>"

// NodeKind distinguishes leaves from the two region kinds
type NodeKind int

const (
	// Leaf is a state without children
	Leaf NodeKind = iota
	// Exclusive is a composite region: exactly one child active at a time
	Exclusive
	// Parallel is an orthogonal region: all children active together
	Parallel
)

// String returns the name of the node kind
func (k NodeKind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case Exclusive:
		return "composite"
	case Parallel:
		return "orthogonal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseNodeKind maps a declaration keyword onto a NodeKind
func ParseNodeKind(s string) (NodeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "state", "leaf":
		return Leaf, nil
	case "composite", "exclusive":
		return Exclusive, nil
	case "orthogonal", "parallel":
		return Parallel, nil
	}
	return Leaf, NewConfigurationError("Node", fmt.Sprintf("unknown region kind '%s'", s))
}

// Node is one entry of a declared state tree
type Node struct {
	Tag      string
	Kind     NodeKind
	Children []*Node
}

// State declares a leaf state
func State(tag string) *Node {
	return &Node{Tag: tag, Kind: Leaf}
}

// Composite declares a state owning an exclusive region. The first child
// is the region's default.
func Composite(tag string, children ...*Node) *Node {
	return &Node{Tag: tag, Kind: Exclusive, Children: children}
}

// Orthogonal declares a state owning a parallel region
func Orthogonal(tag string, children ...*Node) *Node {
	return &Node{Tag: tag, Kind: Parallel, Children: children}
}

// Region declares a state of the given kind; used by declarative loaders
func Region(kind NodeKind, tag string, children ...*Node) *Node {
	return &Node{Tag: tag, Kind: kind, Children: children}
}

// Define wraps the top-level states in the implicit exclusive root and
// analyzes the resulting tree. The first top-level state is the initial one.
func Define(children ...*Node) (*Definition, error) {
	return analyze(&Node{Tag: RootTag, Kind: Exclusive, Children: children})
}

// MustDefine is like Define but panics on a malformed declaration
func MustDefine(children ...*Node) *Definition {
	def, err := Define(children...)
	if err != nil {
		panic(err)
	}
	return def
}
