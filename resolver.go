package hfsm

// regionChoice pairs an exclusive region with the child it will hold
type regionChoice struct {
	region StateID
	child  StateID
}

// transitionPlan is the outcome of resolving one phase worth of requests
type transitionPlan struct {
	// exits run innermost first
	exits []StateID
	// switches re-point regions that stay active
	switches []regionChoice
	// entries run outermost first; choices hold the children picked for
	// the exclusive regions among them
	entries []StateID
	choices []regionChoice
	// resets are regions whose memory a restart points back at the default
	resets []StateID
}

func (p *transitionPlan) empty() bool {
	return len(p.exits) == 0 && len(p.entries) == 0 && len(p.switches) == 0 && len(p.resets) == 0
}

// resolver turns queued requests into a transition plan
type resolver struct {
	def   *Definition
	store *activePath

	// scratch, indexed by composite region
	requested []StateID
	restart   []bool
}

func newResolver(def *Definition, store *activePath) *resolver {
	r := &resolver{
		def:       def,
		store:     store,
		requested: make([]StateID, len(def.composites)),
		restart:   make([]bool, len(def.composites)),
	}
	r.clear()
	return r
}

func (r *resolver) clear() {
	for i := range r.requested {
		r.requested[i] = NoState
		r.restart[i] = false
	}
}

// resolve marks every request in arrival order, so a later request wins
// any region an earlier one also marked, then plans the changes against
// the current active configuration.
func (r *resolver) resolve(reqs []Request) transitionPlan {
	r.clear()
	for _, req := range reqs {
		if req.Kind == Schedule {
			r.schedule(req.Target)
			continue
		}
		r.request(req.Target, req.Kind)
	}

	var plan transitionPlan
	if r.store.rootActive {
		r.planActive(RootID, &plan)
	}
	return plan
}

// start plans the initial entry of the whole tree along default children
func (r *resolver) start() transitionPlan {
	r.clear()
	r.mark(RootID, Restart)

	var plan transitionPlan
	r.collectEntries(RootID, &plan)
	return plan
}

// stop plans the exit of the whole active configuration
func (r *resolver) stop() transitionPlan {
	r.clear()

	var plan transitionPlan
	if r.store.rootActive {
		r.collectExits(RootID, &plan)
	}
	return plan
}

func (r *resolver) request(target StateID, kind TransitionKind) {
	path := r.def.Path(target)
	for i := 0; i+1 < len(path); i++ {
		id, next := path[i], path[i+1]
		s := &r.def.states[id]
		switch s.kind {
		case Exclusive:
			r.requested[s.region] = next
			r.restart[s.region] = false
		case Parallel:
			// siblings of the path only need choices when the region is
			// about to be entered; a live region keeps them as they are
			if !r.store.isActive(id) {
				for _, c := range s.children {
					if c != next {
						r.mark(c, kind)
					}
				}
			}
		}
	}
	r.mark(target, kind)
}

// mark chooses children for every exclusive region below id
func (r *resolver) mark(id StateID, kind TransitionKind) {
	s := &r.def.states[id]
	switch s.kind {
	case Exclusive:
		child := s.children[0]
		if kind == Resume {
			child = r.store.rememberedChild(id)
		}
		r.requested[s.region] = child
		r.restart[s.region] = kind == Restart
		r.mark(child, kind)
	case Parallel:
		for _, c := range s.children {
			r.mark(c, kind)
		}
	}
}

func (r *resolver) schedule(target StateID) {
	child := target
	for p := r.def.states[target].parent; p != NoState; child, p = p, r.def.states[p].parent {
		if r.def.states[p].kind == Exclusive {
			r.store.schedule(p, child)
			return
		}
	}
}

// planActive walks a state that stays active
func (r *resolver) planActive(id StateID, plan *transitionPlan) {
	s := &r.def.states[id]
	switch s.kind {
	case Exclusive:
		cur := r.store.active[s.region]
		req := r.requested[s.region]
		if req != NoState && req != cur {
			if cur != NoState {
				r.collectExits(cur, plan)
			}
			plan.switches = append(plan.switches, regionChoice{region: id, child: req})
			r.collectEntries(req, plan)
		} else if cur != NoState {
			r.planActive(cur, plan)
		}
		if r.restart[s.region] {
			plan.resets = append(plan.resets, id)
		}
	case Parallel:
		for _, c := range s.children {
			r.planActive(c, plan)
		}
	}
}

func (r *resolver) collectExits(id StateID, plan *transitionPlan) {
	s := &r.def.states[id]
	switch s.kind {
	case Exclusive:
		if c := r.store.active[s.region]; c != NoState {
			r.collectExits(c, plan)
		}
	case Parallel:
		for i, c := range s.children {
			if r.store.orthoFlag(s.region, i) {
				r.collectExits(c, plan)
			}
		}
	}
	plan.exits = append(plan.exits, id)
}

func (r *resolver) collectEntries(id StateID, plan *transitionPlan) {
	plan.entries = append(plan.entries, id)
	s := &r.def.states[id]
	switch s.kind {
	case Exclusive:
		child := r.requested[s.region]
		if child == NoState {
			child = r.store.rememberedChild(id)
		}
		plan.choices = append(plan.choices, regionChoice{region: id, child: child})
		if r.restart[s.region] {
			plan.resets = append(plan.resets, id)
		}
		r.collectEntries(child, plan)
	case Parallel:
		for _, c := range s.children {
			r.collectEntries(c, plan)
		}
	}
}
