// Package hfsm implements a hierarchical finite-state-machine engine driven
// by explicit ticks.
//
// A tree of states is declared once with State, Composite and Orthogonal
// and analyzed by Define. Composite states own an exclusive region (one
// live child, the first declared child being the default); orthogonal
// states own a parallel region (every child live together). Every state
// gets a stable identity from its pre-order position, with the implicit
// root at 0.
//
// A Machine binds behaviors to the declared states and runs them:
//
//	def := hfsm.MustDefine(
//		hfsm.Composite("Idle", hfsm.State("Waiting"), hfsm.State("Sleeping")),
//		hfsm.Orthogonal("Busy",
//			hfsm.Composite("Motor", hfsm.State("Stopped"), hfsm.State("Running")),
//			hfsm.Composite("Lights", hfsm.State("Off"), hfsm.State("On")),
//		),
//	)
//
//	m, _ := hfsm.NewMachine[*World, Signal](def,
//		hfsm.WithBehavior("Waiting", &waiting{}),
//	)
//	_ = m.Start(world)
//	_ = m.Tick(world, Signal{})
//
// Each Tick runs a guard pass, an update pass and a react pass over the
// active configuration in pre-order. Hooks request transitions through
// the Control they are handed: ChangeTo enters the target's default chain,
// Resume its remembered chain, and Schedule seeds the memory of the
// target's region for a later Resume. Requests raised in a pass are
// resolved as soon as the pass ends, with later requests winning the
// regions they share with earlier ones.
package hfsm
