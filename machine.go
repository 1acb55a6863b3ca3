package hfsm

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Machine drives one instance of a declared state tree. C is the shared
// context handed to every hook, E the event type dispatched by React.
//
// A Machine is not safe for concurrent use: a tick runs to completion on
// the calling goroutine and hooks must not call back into the machine.
type Machine[C, E any] struct {
	id   uuid.UUID
	name string

	def      *Definition
	hooks    []hookTable[C, E]
	store    *activePath
	resolver *resolver
	queue    requestQueue

	logger    *zap.Logger
	observers *ObserverManager

	started bool
	ticks   uint64
	errs    []error
	// reported is how many of errs were already logged
	reported int
}

// NewMachine binds behaviors to a definition. The machine is idle until
// Start enters its initial configuration.
func NewMachine[C, E any](def *Definition, opts ...Option) (*Machine[C, E], error) {
	if def == nil {
		return nil, NewConfigurationError("Machine", "definition is nil")
	}

	o := newOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.err != nil {
		return nil, o.err
	}

	store := newActivePath(def)
	m := &Machine[C, E]{
		id:        uuid.New(),
		name:      o.name,
		def:       def,
		hooks:     make([]hookTable[C, E], def.Len()),
		store:     store,
		resolver:  newResolver(def, store),
		observers: NewObserverManager(),
	}
	m.logger = o.logger.Named("hfsm").With(
		zap.String("machine", m.name),
		zap.Stringer("machine_id", m.id),
	)
	for _, obs := range o.observers {
		m.observers.AddObserver(obs)
	}

	for _, b := range o.bindings {
		id, ok := def.IdentityOf(b.tag)
		if !ok {
			return nil, NewStateNotFoundError(b.tag)
		}
		table, n := compileHooks[C, E](b.behavior, b.fragments)
		if n == 0 {
			m.logger.Warn("behavior implements no hooks for this machine's context and event types",
				zap.String("state", b.tag))
		}
		m.hooks[id] = table
	}

	return m, nil
}

// ID returns the instance identity of the machine
func (m *Machine[C, E]) ID() uuid.UUID {
	return m.id
}

// Name returns the name given with WithName
func (m *Machine[C, E]) Name() string {
	return m.name
}

// Definition returns the topology the machine runs
func (m *Machine[C, E]) Definition() *Definition {
	return m.def
}

// Counters returns the structural constants of the tree
func (m *Machine[C, E]) Counters() Counters {
	return m.def.Counters()
}

// IdentityOf returns the identity of a declared tag
func (m *Machine[C, E]) IdentityOf(tag string) (StateID, bool) {
	return m.def.IdentityOf(tag)
}

// IsStarted reports whether the machine is running
func (m *Machine[C, E]) IsStarted() bool {
	return m.started
}

// Ticks returns the number of completed Tick and Update calls
func (m *Machine[C, E]) Ticks() uint64 {
	return m.ticks
}

// AddObserver adds an observer to the machine
func (m *Machine[C, E]) AddObserver(observer Observer) {
	m.observers.AddObserver(observer)
}

// RemoveObserver removes an observer from the machine
func (m *Machine[C, E]) RemoveObserver(observer Observer) {
	m.observers.RemoveObserver(observer)
}

// Start enters the root and its default chain, outermost first
func (m *Machine[C, E]) Start(ctx C) error {
	if m.started {
		return NewMachineAlreadyStartedError("Start")
	}
	m.started = true

	plan := m.resolver.start()
	m.execute(ctx, &plan)

	m.logger.Debug("machine started", zap.Strings("active", m.ActiveStates()))
	m.observers.NotifyMachineStarted()
	return nil
}

// Stop exits the whole active configuration, innermost first
func (m *Machine[C, E]) Stop(ctx C) error {
	if !m.started {
		return NewMachineNotStartedError("Stop")
	}

	plan := m.resolver.stop()
	m.execute(ctx, &plan)
	m.started = false
	m.queue.drain()

	m.logger.Debug("machine stopped")
	m.observers.NotifyMachineStopped()
	return m.takeErrors()
}

// Tick runs one full cycle: guard, transitions, update, transitions,
// react with ev, transitions. The returned error only carries usage
// errors; dropped requests never stop the tick.
func (m *Machine[C, E]) Tick(ctx C, ev E) error {
	if !m.started {
		return NewMachineNotStartedError("Tick")
	}
	var zero E
	m.dispatch(ctx, PhaseGuard, zero)
	m.dispatch(ctx, PhaseUpdate, zero)
	m.dispatch(ctx, PhaseReact, ev)
	m.completeTick()
	return m.takeErrors()
}

// Update runs the guard and update halves of a tick without an event
func (m *Machine[C, E]) Update(ctx C) error {
	if !m.started {
		return NewMachineNotStartedError("Update")
	}
	var zero E
	m.dispatch(ctx, PhaseGuard, zero)
	m.dispatch(ctx, PhaseUpdate, zero)
	m.completeTick()
	return m.takeErrors()
}

// React dispatches ev to every active state and applies the resulting
// transitions
func (m *Machine[C, E]) React(ctx C, ev E) error {
	if !m.started {
		return NewMachineNotStartedError("React")
	}
	m.dispatch(ctx, PhaseReact, ev)
	return m.takeErrors()
}

// IsActive reports whether the tagged state is part of the active
// configuration
func (m *Machine[C, E]) IsActive(tag string) bool {
	id, ok := m.def.IdentityOf(tag)
	return ok && m.store.isActive(id)
}

// ActiveChild returns the live child of an exclusive region, or "" when
// the region is inactive or tag does not name an exclusive region
func (m *Machine[C, E]) ActiveChild(tag string) string {
	id, ok := m.def.IdentityOf(tag)
	if !ok {
		return ""
	}
	return m.def.Tag(m.store.activeChild(id))
}

// RememberedChild returns the child a resume into the exclusive region
// would enter
func (m *Machine[C, E]) RememberedChild(tag string) string {
	id, ok := m.def.IdentityOf(tag)
	if !ok {
		return ""
	}
	return m.def.Tag(m.store.rememberedChild(id))
}

// ActiveStates lists the active configuration in pre-order, root included
func (m *Machine[C, E]) ActiveStates() []string {
	ids := m.store.activeStates()
	if len(ids) == 0 {
		return nil
	}
	tags := make([]string, len(ids))
	for i, id := range ids {
		tags[i] = m.def.Tag(id)
	}
	return tags
}

// dispatch runs one phase over the active configuration in pre-order and
// then applies whatever the hooks requested
func (m *Machine[C, E]) dispatch(ctx C, phase Phase, ev E) {
	for _, id := range m.store.activeStates() {
		t := &m.hooks[id]
		var n int
		switch phase {
		case PhaseGuard:
			n = len(t.guard)
		case PhaseUpdate:
			n = len(t.update)
		case PhaseReact:
			n = len(t.react)
		}
		if n == 0 {
			continue
		}

		ctl := &Control[C]{
			ctx:    ctx,
			origin: id,
			phase:  phase,
			def:    m.def,
			queue:  &m.queue,
			errs:   &m.errs,
			live:   true,
		}
		switch phase {
		case PhaseGuard:
			for _, h := range t.guard {
				h(ctx, ctl)
			}
		case PhaseUpdate:
			for _, h := range t.update {
				h(ctx, ctl)
			}
		case PhaseReact:
			for _, h := range t.react {
				h(ev, ctx, ctl)
			}
		}
		ctl.live = false
	}

	m.apply(ctx)
}

// apply resolves the queued requests and executes the resulting plan
func (m *Machine[C, E]) apply(ctx C) {
	for _, err := range m.errs[m.reported:] {
		m.logger.Warn("transition request dropped", zap.Error(err))
		m.observers.NotifyRequestDropped(err)
	}
	m.reported = len(m.errs)

	if m.queue.len() == 0 {
		return
	}
	reqs := m.queue.drain()
	for _, req := range reqs {
		m.logger.Debug("transition requested",
			zap.String("kind", req.Kind.String()),
			zap.String("target", req.TargetTag),
			zap.String("origin", req.OriginTag),
			zap.String("phase", req.Phase.String()),
		)
		m.observers.NotifyRequest(req)
	}

	plan := m.resolver.resolve(reqs)
	if plan.empty() {
		return
	}
	m.execute(ctx, &plan)
}

// execute runs exits, updates the store, then runs entries
func (m *Machine[C, E]) execute(ctx C, plan *transitionPlan) {
	for _, id := range plan.exits {
		for _, h := range m.hooks[id].exit {
			h(ctx)
		}
		switch m.def.states[id].kind {
		case Exclusive:
			m.store.deactivate(id)
		case Parallel:
			m.store.setParallel(id, false)
		}
		if id == RootID {
			m.store.rootActive = false
		}
		m.logger.Debug("state exited", zap.String("state", m.def.Tag(id)))
		m.observers.NotifyStateExit(m.def.Tag(id))
	}

	for _, sw := range plan.switches {
		m.store.setActiveChild(sw.region, sw.child)
	}
	for _, ch := range plan.choices {
		m.store.setActiveChild(ch.region, ch.child)
	}
	for _, id := range plan.entries {
		if m.def.states[id].kind == Parallel {
			m.store.setParallel(id, true)
		}
		if id == RootID {
			m.store.rootActive = true
		}
	}
	for _, id := range plan.resets {
		m.store.resetMemory(id)
	}

	for _, id := range plan.entries {
		for _, h := range m.hooks[id].enter {
			h(ctx)
		}
		m.logger.Debug("state entered", zap.String("state", m.def.Tag(id)))
		m.observers.NotifyStateEnter(m.def.Tag(id))
	}
}

func (m *Machine[C, E]) completeTick() {
	m.ticks++
	if m.observers.Len() > 0 {
		m.observers.NotifyTickCompleted(m.ticks, m.ActiveStates())
	}
}

// takeErrors returns and clears the usage errors collected so far
func (m *Machine[C, E]) takeErrors() error {
	if len(m.errs) == 0 {
		return nil
	}
	err := errors.Join(m.errs...)
	m.errs = nil
	m.reported = 0
	return err
}
