package hfsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// referenceNodes declares A{A_1, A_2{A_2_1, A_2_2}} next to
// B||{B_1{B_1_1, B_1_2}, B_2{B_2_1, B_2_2}}
func referenceNodes() []*Node {
	return []*Node{
		Composite("A",
			State("A_1"),
			Composite("A_2",
				State("A_2_1"),
				State("A_2_2"),
			),
		),
		Orthogonal("B",
			Composite("B_1",
				State("B_1_1"),
				State("B_1_2"),
			),
			Composite("B_2",
				State("B_2_1"),
				State("B_2_2"),
			),
		),
	}
}

func referenceDefinition(t *testing.T) *Definition {
	t.Helper()
	def, err := Define(referenceNodes()...)
	require.NoError(t, err)
	return def
}

func TestDefine_Identities(t *testing.T) {
	def := referenceDefinition(t)

	expected := []string{
		RootTag, "A", "A_1", "A_2", "A_2_1", "A_2_2",
		"B", "B_1", "B_1_1", "B_1_2", "B_2", "B_2_1", "B_2_2",
	}
	assert.Equal(t, expected, def.Tags())

	for want, tag := range expected {
		id, ok := def.IdentityOf(tag)
		require.True(t, ok, tag)
		assert.Equal(t, StateID(want), id, tag)
		assert.Equal(t, tag, def.Tag(id))
	}

	_, ok := def.IdentityOf("C")
	assert.False(t, ok)
	assert.Equal(t, "", def.Tag(42))
	assert.Panics(t, func() { def.MustIdentityOf("C") })
}

func TestDefine_Counters(t *testing.T) {
	def := referenceDefinition(t)

	assert.Equal(t, Counters{
		StateCount:      13,
		CompositeCount:  5,
		OrthogonalCount: 1,
		DeepWidth:       2,
		OrthogonalUnits: 1,
		ProngCount:      10,
	}, def.Counters())
	assert.Equal(t, 13, def.Len())
}

func TestDefine_Structure(t *testing.T) {
	def := referenceDefinition(t)
	id := def.MustIdentityOf

	assert.Equal(t, NoState, def.Parent(RootID))
	assert.Equal(t, id("A"), def.Parent(id("A_2")))
	assert.Equal(t, id("B"), def.Parent(id("B_2")))

	assert.Equal(t, []StateID{id("A"), id("B")}, def.Children(RootID))
	assert.Equal(t, []StateID{id("B_1"), id("B_2")}, def.Children(id("B")))
	assert.Empty(t, def.Children(id("A_1")))

	// callers get a copy
	children := def.Children(RootID)
	children[0] = 99
	assert.Equal(t, id("A"), def.Children(RootID)[0])

	assert.Equal(t, Exclusive, def.KindOf(RootID))
	assert.Equal(t, Exclusive, def.KindOf(id("A_2")))
	assert.Equal(t, Parallel, def.KindOf(id("B")))
	assert.Equal(t, Leaf, def.KindOf(id("B_2_1")))

	assert.Equal(t, 0, def.Depth(RootID))
	assert.Equal(t, 3, def.Depth(id("B_1_2")))
	assert.Equal(t, -1, def.Depth(NoState))

	assert.Equal(t, []StateID{RootID, id("B"), id("B_2"), id("B_2_2")}, def.Path(id("B_2_2")))
	assert.Nil(t, def.Path(NoState))
}

func TestDefine_IsAncestor(t *testing.T) {
	def := referenceDefinition(t)
	id := def.MustIdentityOf

	assert.True(t, def.IsAncestor(RootID, id("B_2_2")))
	assert.True(t, def.IsAncestor(id("A"), id("A_2_2")))
	assert.True(t, def.IsAncestor(id("B"), id("B_1_1")))
	assert.False(t, def.IsAncestor(id("A"), id("B_1")))
	assert.False(t, def.IsAncestor(id("A_2"), id("A")))
	assert.False(t, def.IsAncestor(id("A"), id("A")))
	assert.False(t, def.IsAncestor(id("A_1"), id("A_2")))
}

func TestDefine_DerivedCounters(t *testing.T) {
	t.Run("width is taken per depth", func(t *testing.T) {
		def := MustDefine(
			State("Idle"),
			Orthogonal("P",
				Orthogonal("Q", State("q1"), State("q2")),
				Composite("R", State("r1"), Orthogonal("S", State("s1"), State("s2"), State("s3"))),
			),
		)
		c := def.Counters()
		// depth 3 holds q1, q2 and r1 or the region S
		assert.Equal(t, 3, c.DeepWidth)
		assert.Equal(t, 3, c.OrthogonalCount)
		assert.Equal(t, 3, c.OrthogonalUnits)
		assert.Equal(t, 2, c.CompositeCount)
		assert.Equal(t, 4, c.ProngCount)
	})

	t.Run("nested parallel regions", func(t *testing.T) {
		tests := []struct {
			name  string
			nodes []*Node
			want  int
		}{
			{"parallel beside a leaf", []*Node{
				Orthogonal("P", Orthogonal("Q", State("a"), State("b")), State("c")),
			}, 2},
			{"parallel beside a composite", []*Node{
				Orthogonal("P", Orthogonal("Q", State("a"), State("b")), Composite("R", State("c"), State("d"))),
			}, 3},
			{"parallel of parallels", []*Node{
				Orthogonal("P", Orthogonal("Q", State("a"), State("b")), Orthogonal("R", State("c"), State("d"))),
			}, 4},
			{"widest level is shallow", []*Node{
				Orthogonal("P", State("a"), State("b"), State("c"), Orthogonal("Q", State("d"), State("e"))),
			}, 4},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.want, MustDefine(tt.nodes...).Counters().DeepWidth)
			})
		}
	})

	t.Run("wide parallel region spans storage units", func(t *testing.T) {
		var lanes []*Node
		for _, tag := range []string{"l1", "l2", "l3", "l4", "l5", "l6", "l7", "l8", "l9"} {
			lanes = append(lanes, State(tag))
		}
		def := MustDefine(Orthogonal("Wide", lanes...))
		assert.Equal(t, 2, def.Counters().OrthogonalUnits)
		assert.Equal(t, 9, def.Counters().DeepWidth)
	})

	t.Run("flat machine", func(t *testing.T) {
		def := MustDefine(State("On"), State("Off"))
		assert.Equal(t, Counters{
			StateCount:     3,
			CompositeCount: 1,
			DeepWidth:      1,
			ProngCount:     2,
		}, def.Counters())
	})
}

func TestDefine_Errors(t *testing.T) {
	shared := State("shared")
	loop := Composite("loop")
	loop.Children = []*Node{loop}

	tests := []struct {
		name  string
		nodes []*Node
	}{
		{"no states", nil},
		{"empty composite", []*Node{Composite("A")}},
		{"empty orthogonal", []*Node{State("A"), Orthogonal("B")}},
		{"nil child", []*Node{Composite("A", nil)}},
		{"empty tag", []*Node{State("")}},
		{"duplicate tag", []*Node{Composite("A", State("x")), Composite("B", State("x"))}},
		{"shared node", []*Node{Composite("A", shared), Composite("B", shared)}},
		{"cyclic declaration", []*Node{loop}},
		{"reserved tag", []*Node{State(RootTag)}},
		{"leaf with children", []*Node{Region(Leaf, "A", State("x"))}},
		{"unknown kind", []*Node{Region(NodeKind(7), "A", State("x"))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := Define(tt.nodes...)
			require.Error(t, err)
			assert.Nil(t, def)
			assert.True(t, IsConfigurationError(err), "got %T", err)
		})
	}

	assert.Panics(t, func() { MustDefine(Composite("A")) })
}

func TestParseNodeKind(t *testing.T) {
	for input, want := range map[string]NodeKind{
		"state":      Leaf,
		"leaf":       Leaf,
		"Composite":  Exclusive,
		"exclusive":  Exclusive,
		"Orthogonal": Parallel,
		"parallel":   Parallel,
	} {
		got, err := ParseNodeKind(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseNodeKind("history")
	assert.True(t, IsConfigurationError(err))

	assert.Equal(t, "composite", Exclusive.String())
	assert.Equal(t, "kind(9)", NodeKind(9).String())
}
