package hfsm

// activePath records which states are live. Exclusive regions keep an
// active child and a resumable child; parallel regions keep one flag per
// child, packed into OrthogonalUnits bytes.
type activePath struct {
	def *Definition

	rootActive bool

	// indexed by composite region
	active     []StateID
	remembered []StateID
	// scheduled marks a remembered child written by Schedule; exit capture
	// leaves it in place until the region is entered or switched
	scheduled []bool

	orthoFlags []uint8
}

func newActivePath(def *Definition) *activePath {
	p := &activePath{
		def:        def,
		active:     make([]StateID, len(def.composites)),
		remembered: make([]StateID, len(def.composites)),
		scheduled:  make([]bool, len(def.composites)),
		orthoFlags: make([]uint8, def.counters.OrthogonalUnits),
	}
	for i := range p.active {
		p.active[i] = NoState
		p.remembered[i] = NoState
	}
	return p
}

// isActive reports whether id is part of the active configuration
func (p *activePath) isActive(id StateID) bool {
	if !p.def.valid(id) {
		return false
	}
	if id == RootID {
		return p.rootActive
	}
	s := &p.def.states[id]
	parent := &p.def.states[s.parent]
	switch parent.kind {
	case Exclusive:
		if p.active[parent.region] != id {
			return false
		}
	case Parallel:
		if !p.orthoFlag(parent.region, s.index) {
			return false
		}
	}
	return p.isActive(s.parent)
}

// activeChild returns the live child of an exclusive region, or NoState
func (p *activePath) activeChild(region StateID) StateID {
	r, ok := p.compositeIndex(region)
	if !ok {
		return NoState
	}
	return p.active[r]
}

// setActiveChild makes child the live child of region. The child it
// replaces becomes the region's resumable child, overwriting any pending
// schedule, and the schedule is considered consumed.
func (p *activePath) setActiveChild(region, child StateID) {
	r, ok := p.compositeIndex(region)
	if !ok {
		return
	}
	prev := p.active[r]
	if prev != NoState && prev != child {
		p.remembered[r] = prev
	}
	p.scheduled[r] = false
	p.active[r] = child
}

// deactivate clears the live child of region, capturing it for resume
func (p *activePath) deactivate(region StateID) {
	r, ok := p.compositeIndex(region)
	if !ok {
		return
	}
	if p.active[r] != NoState && !p.scheduled[r] {
		p.remembered[r] = p.active[r]
	}
	p.active[r] = NoState
}

// rememberedChild returns the child a resume into region would pick: a
// scheduled child first, then the live one, then the last live one, and
// finally the default (first declared) child.
func (p *activePath) rememberedChild(region StateID) StateID {
	r, ok := p.compositeIndex(region)
	if !ok {
		return NoState
	}
	switch {
	case p.scheduled[r]:
		return p.remembered[r]
	case p.active[r] != NoState:
		return p.active[r]
	case p.remembered[r] != NoState:
		return p.remembered[r]
	}
	return p.def.states[region].children[0]
}

// lastActive returns the raw resumable slot without the default fallback
func (p *activePath) lastActive(region StateID) StateID {
	r, ok := p.compositeIndex(region)
	if !ok {
		return NoState
	}
	return p.remembered[r]
}

func (p *activePath) schedule(region, child StateID) {
	r, ok := p.compositeIndex(region)
	if !ok {
		return
	}
	p.remembered[r] = child
	p.scheduled[r] = true
}

// resetMemory points the resumable slot at the default child
func (p *activePath) resetMemory(region StateID) {
	r, ok := p.compositeIndex(region)
	if !ok {
		return
	}
	p.remembered[r] = p.def.states[region].children[0]
	p.scheduled[r] = false
}

// setParallel raises or lowers every child flag of a parallel region
func (p *activePath) setParallel(region StateID, on bool) {
	s := &p.def.states[region]
	if s.kind != Parallel {
		return
	}
	for i := range s.children {
		bit := p.def.orthoBase[s.region] + i
		if on {
			p.orthoFlags[bit/orthogonalUnitBits] |= 1 << (bit % orthogonalUnitBits)
		} else {
			p.orthoFlags[bit/orthogonalUnitBits] &^= 1 << (bit % orthogonalUnitBits)
		}
	}
}

func (p *activePath) orthoFlag(region, index int) bool {
	bit := p.def.orthoBase[region] + index
	return p.orthoFlags[bit/orthogonalUnitBits]&(1<<(bit%orthogonalUnitBits)) != 0
}

func (p *activePath) compositeIndex(region StateID) (int, bool) {
	if !p.def.valid(region) || p.def.states[region].kind != Exclusive {
		return 0, false
	}
	return p.def.states[region].region, true
}

// activeStates lists the active configuration in pre-order
func (p *activePath) activeStates() []StateID {
	if !p.rootActive {
		return nil
	}
	out := make([]StateID, 0, len(p.def.states))
	var walk func(StateID)
	walk = func(id StateID) {
		out = append(out, id)
		s := &p.def.states[id]
		switch s.kind {
		case Exclusive:
			if c := p.active[s.region]; c != NoState {
				walk(c)
			}
		case Parallel:
			for i, c := range s.children {
				if p.orthoFlag(s.region, i) {
					walk(c)
				}
			}
		}
	}
	walk(RootID)
	return out
}
