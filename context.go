package hfsm

// Control is handed to guard, update and react hooks. It is the only way a
// hook can request a transition, and it carries the caller's shared
// context. A Control is valid for the duration of the hook pipeline it was
// passed to; requests made through it afterwards are rejected.
type Control[C any] struct {
	ctx    C
	origin StateID
	phase  Phase
	def    *Definition
	queue  *requestQueue
	errs   *[]error
	live   bool
}

// Context returns the shared context the machine was ticked with
func (c *Control[C]) Context() C {
	return c.ctx
}

// Origin returns the tag of the state whose hook holds this control
func (c *Control[C]) Origin() string {
	return c.def.Tag(c.origin)
}

// Phase returns the tick phase the hook runs in
func (c *Control[C]) Phase() Phase {
	return c.phase
}

// ChangeTo requests a restart into target: its default chain is entered
func (c *Control[C]) ChangeTo(target string) {
	c.request(target, Restart)
}

// Resume requests target with its remembered chain
func (c *Control[C]) Resume(target string) {
	c.request(target, Resume)
}

// Schedule makes target the remembered child of its nearest exclusive
// region without changing the active configuration
func (c *Control[C]) Schedule(target string) {
	c.request(target, Schedule)
}

func (c *Control[C]) request(target string, kind TransitionKind) {
	origin := c.def.Tag(c.origin)
	if !c.live {
		*c.errs = append(*c.errs, NewControlExpiredError(origin, target, kind))
		return
	}
	id, ok := c.def.IdentityOf(target)
	if !ok {
		*c.errs = append(*c.errs, NewUnknownTargetError(origin, target, kind))
		return
	}
	c.queue.push(Request{
		Target:    id,
		TargetTag: target,
		Kind:      kind,
		Origin:    c.origin,
		OriginTag: origin,
		Phase:     c.phase,
	})
}
