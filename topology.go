package hfsm

import (
	"fmt"
	"slices"
)

// StateID is the identity of a declared state: its pre-order position in
// the declaration, with the implicit root at 0.
type StateID int

// NoState marks the absence of a state, e.g. an inactive region's child
const NoState StateID = -1

// RootID is the identity of the implicit root
const RootID StateID = 0

// orthogonalUnitBits is the number of parallel-active flags per storage unit
const orthogonalUnitBits = 8

// Counters are the structural constants derived from a declaration
type Counters struct {
	// StateCount includes the implicit root
	StateCount int `json:"stateCount"`
	// CompositeCount is the number of exclusive regions, root included
	CompositeCount int `json:"compositeCount"`
	// OrthogonalCount is the number of parallel regions
	OrthogonalCount int `json:"orthogonalCount"`
	// DeepWidth is the largest number of states that can be active together
	// at a single depth of the tree
	DeepWidth int `json:"deepWidth"`
	// OrthogonalUnits is the number of bytes holding parallel-active flags
	OrthogonalUnits int `json:"orthogonalUnits"`
	// ProngCount is the number of child slots over all exclusive regions
	ProngCount int `json:"prongCount"`
}

type stateInfo struct {
	tag      string
	kind     NodeKind
	parent   StateID
	index    int
	depth    int
	children []StateID
	// region is the index into the composite or orthogonal table, -1 for leaves
	region int
	// last is the highest identity inside this state's subtree
	last StateID
}

// Definition is the immutable result of topology analysis
type Definition struct {
	states      []stateInfo
	ids         map[string]StateID
	composites  []StateID
	orthogonals []StateID
	// orthoBase is the first flag bit of each parallel region
	orthoBase []int
	counters  Counters
}

func analyze(root *Node) (*Definition, error) {
	def := &Definition{ids: make(map[string]StateID)}
	seen := make(map[*Node]bool)

	if _, err := def.visit(root, NoState, 0, 0, seen); err != nil {
		return nil, err
	}

	units := 0
	for _, id := range def.orthogonals {
		def.orthoBase = append(def.orthoBase, units*orthogonalUnitBits)
		n := len(def.states[id].children)
		units += (n + orthogonalUnitBits - 1) / orthogonalUnitBits
	}

	prongs := 0
	for _, id := range def.composites {
		prongs += len(def.states[id].children)
	}

	def.counters = Counters{
		StateCount:      len(def.states),
		CompositeCount:  len(def.composites),
		OrthogonalCount: len(def.orthogonals),
		DeepWidth:       def.deepWidth(RootID),
		OrthogonalUnits: units,
		ProngCount:      prongs,
	}
	return def, nil
}

func (d *Definition) visit(n *Node, parent StateID, index, depth int, seen map[*Node]bool) (StateID, error) {
	if n == nil {
		return NoState, NewConfigurationError("Definition",
			fmt.Sprintf("nil child at position %d of '%s'", index, d.tagOf(parent)))
	}
	if seen[n] {
		return NoState, NewConfigurationError("Definition",
			fmt.Sprintf("state '%s' is declared more than once (shared or cyclic declaration)", n.Tag))
	}
	seen[n] = true

	if n.Tag == "" {
		return NoState, NewConfigurationError("Definition",
			fmt.Sprintf("empty tag at position %d of '%s'", index, d.tagOf(parent)))
	}
	if parent != NoState && n.Tag == RootTag {
		return NoState, NewConfigurationError("Definition", fmt.Sprintf("tag '%s' is reserved", RootTag))
	}
	if _, dup := d.ids[n.Tag]; dup {
		return NoState, NewConfigurationError("Definition", fmt.Sprintf("duplicate state tag '%s'", n.Tag))
	}

	id := StateID(len(d.states))
	info := stateInfo{
		tag:    n.Tag,
		kind:   n.Kind,
		parent: parent,
		index:  index,
		depth:  depth,
		region: -1,
	}

	switch n.Kind {
	case Leaf:
		if len(n.Children) > 0 {
			return NoState, NewConfigurationError("Definition",
				fmt.Sprintf("leaf state '%s' declares children", n.Tag))
		}
	case Exclusive:
		info.region = len(d.composites)
		d.composites = append(d.composites, id)
	case Parallel:
		info.region = len(d.orthogonals)
		d.orthogonals = append(d.orthogonals, id)
	default:
		return NoState, NewConfigurationError("Definition",
			fmt.Sprintf("state '%s' has unknown region kind %d", n.Tag, int(n.Kind)))
	}
	if n.Kind != Leaf && len(n.Children) == 0 {
		return NoState, NewConfigurationError("Definition",
			fmt.Sprintf("%s region '%s' declares no children", n.Kind, n.Tag))
	}

	d.states = append(d.states, info)
	d.ids[n.Tag] = id

	children := make([]StateID, 0, len(n.Children))
	for i, child := range n.Children {
		cid, err := d.visit(child, id, i, depth+1, seen)
		if err != nil {
			return NoState, err
		}
		children = append(children, cid)
	}
	d.states[id].children = children
	d.states[id].last = StateID(len(d.states) - 1)

	return id, nil
}

// levelWidths returns, per depth below id (id itself at 0), the largest
// number of states that can be active together at that depth
func (d *Definition) levelWidths(id StateID) []int {
	s := &d.states[id]
	widths := []int{1}
	for _, c := range s.children {
		for k, w := range d.levelWidths(c) {
			if k+1 == len(widths) {
				widths = append(widths, 0)
			}
			if s.kind == Parallel {
				widths[k+1] += w
			} else {
				widths[k+1] = max(widths[k+1], w)
			}
		}
	}
	return widths
}

func (d *Definition) deepWidth(id StateID) int {
	return slices.Max(d.levelWidths(id))
}

func (d *Definition) tagOf(id StateID) string {
	if id < 0 || int(id) >= len(d.states) {
		return "?"
	}
	return d.states[id].tag
}

// Counters returns the structural constants of the tree
func (d *Definition) Counters() Counters {
	return d.counters
}

// Len returns the number of states, root included
func (d *Definition) Len() int {
	return len(d.states)
}

// IdentityOf returns the identity assigned to a tag
func (d *Definition) IdentityOf(tag string) (StateID, bool) {
	id, ok := d.ids[tag]
	return id, ok
}

// MustIdentityOf is like IdentityOf but panics on an unknown tag
func (d *Definition) MustIdentityOf(tag string) StateID {
	id, ok := d.ids[tag]
	if !ok {
		panic(NewStateNotFoundError(tag))
	}
	return id
}

// Tag returns the tag of a state, or "" for an unknown identity
func (d *Definition) Tag(id StateID) string {
	if !d.valid(id) {
		return ""
	}
	return d.states[id].tag
}

// Tags returns all tags in identity order
func (d *Definition) Tags() []string {
	tags := make([]string, len(d.states))
	for i := range d.states {
		tags[i] = d.states[i].tag
	}
	return tags
}

// Parent returns the owning state, NoState for the root
func (d *Definition) Parent(id StateID) StateID {
	if !d.valid(id) {
		return NoState
	}
	return d.states[id].parent
}

// Children returns the declared children of a state in declaration order
func (d *Definition) Children(id StateID) []StateID {
	if !d.valid(id) {
		return nil
	}
	return append([]StateID(nil), d.states[id].children...)
}

// KindOf returns whether the state is a leaf or owns a region
func (d *Definition) KindOf(id StateID) NodeKind {
	if !d.valid(id) {
		return Leaf
	}
	return d.states[id].kind
}

// Depth returns the nesting level; the root is at 0
func (d *Definition) Depth(id StateID) int {
	if !d.valid(id) {
		return -1
	}
	return d.states[id].depth
}

// IsAncestor reports whether a is a strict ancestor of b. Pre-order
// identities make this an interval check.
func (d *Definition) IsAncestor(a, b StateID) bool {
	if !d.valid(a) || !d.valid(b) || a == b {
		return false
	}
	return a < b && b <= d.states[a].last
}

// Path returns the chain of identities from the root down to id
func (d *Definition) Path(id StateID) []StateID {
	if !d.valid(id) {
		return nil
	}
	var path []StateID
	for s := id; s != NoState; s = d.states[s].parent {
		path = append(path, s)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func (d *Definition) valid(id StateID) bool {
	return id >= 0 && int(id) < len(d.states)
}
