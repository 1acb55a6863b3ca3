package hfsm_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anggasct/hfsm"
	"github.com/anggasct/hfsm/pkg/fragments"
)

// fixtureContext records the history of the reference machine
type fixtureContext struct {
	deltaTime float64
	history   []fragments.Status
}

func (c *fixtureContext) DeltaTime() float64 { return c.deltaTime }

func (c *fixtureContext) Append(s fragments.Status) {
	c.history = append(c.history, s)
}

// take returns the recorded history as state:event strings and clears it
func (c *fixtureContext) take() []string {
	out := make([]string, len(c.history))
	for i, s := range c.history {
		out[i] = s.String()
	}
	c.history = nil
	return out
}

// action is the event dispatched by the reference machine
type action struct{}

type fixtureControl = hfsm.Control[*fixtureContext]

type reacting struct {
	tag string
}

func (r reacting) React(ev action, ctx *fixtureContext, ctl *fixtureControl) {
	ctx.Append(fragments.Status{State: r.tag, Event: fragments.React})
}

type stateA1 struct{}

func (stateA1) Update(ctx *fixtureContext, ctl *fixtureControl) {
	fragments.ChangeTo(ctl, "A_2")
}

type stateA2 struct {
	tracked *fragments.Tracked[*fixtureContext]
}

func (s stateA2) Update(ctx *fixtureContext, ctl *fixtureControl) {
	switch s.tracked.EntryCount() {
	case 1:
		fragments.ChangeTo(ctl, "B_2_2")
	case 2:
		fragments.ResumeTo(ctl, "B")
	}
}

type stateB21 struct{}

func (stateB21) Guard(ctx *fixtureContext, ctl *fixtureControl) {
	fragments.ResumeTo(ctl, "B_2_2")
}

type stateB22 struct {
	tracked *fragments.Tracked[*fixtureContext]
}

func (s stateB22) Guard(ctx *fixtureContext, ctl *fixtureControl) {
	if s.tracked.EntryCount() == 2 {
		ctl.Resume("A")
	}
}

func (s stateB22) Update(ctx *fixtureContext, ctl *fixtureControl) {
	switch s.tracked.TotalUpdateCount() {
	case 1:
		fragments.ResumeTo(ctl, "A")
	case 2:
		fragments.ChangeTo(ctl, "B")
	case 3:
		fragments.ScheduleTo(ctl, "A_2_2")
		fragments.ResumeTo(ctl, "A")
	}
}

// driver lets a test inject requests from the root during the guard and
// update passes
type driver struct {
	guards  []func(ctl *fixtureControl)
	updates []func(ctl *fixtureControl)
}

func (d *driver) Guard(ctx *fixtureContext, ctl *fixtureControl) {
	d.guards = runNext(d.guards, ctl)
}

func (d *driver) Update(ctx *fixtureContext, ctl *fixtureControl) {
	d.updates = runNext(d.updates, ctl)
}

func runNext(queue []func(ctl *fixtureControl), ctl *fixtureControl) []func(ctl *fixtureControl) {
	if len(queue) == 0 {
		return queue
	}
	queue[0](ctl)
	return queue[1:]
}

// onGuard queues fn; each guard pass runs at most one queued fn
func (d *driver) onGuard(fn func(ctl *fixtureControl)) {
	d.guards = append(d.guards, fn)
}

func (d *driver) onUpdate(fn func(ctl *fixtureControl)) {
	d.updates = append(d.updates, fn)
}

func referenceNodes() []*hfsm.Node {
	return []*hfsm.Node{
		hfsm.Composite("A",
			hfsm.State("A_1"),
			hfsm.Composite("A_2",
				hfsm.State("A_2_1"),
				hfsm.State("A_2_2"),
			),
		),
		hfsm.Orthogonal("B",
			hfsm.Composite("B_1",
				hfsm.State("B_1_1"),
				hfsm.State("B_1_2"),
			),
			hfsm.Composite("B_2",
				hfsm.State("B_2_1"),
				hfsm.State("B_2_2"),
			),
		),
	}
}

// fixture is the reference machine with every state tracked, timed and
// recorded
type fixture struct {
	def     *hfsm.Definition
	machine *hfsm.Machine[*fixtureContext, action]
	ctx     *fixtureContext
	driver  *driver
	tracked map[string]*fragments.Tracked[*fixtureContext]
	timed   map[string]*fragments.Timed[*fixtureContext]
}

// newFixture builds the reference machine whose states drive their own
// transitions
func newFixture(t *testing.T, opts ...hfsm.Option) *fixture {
	t.Helper()
	return buildFixture(t, true, opts...)
}

// newBareFixture builds the reference tree with recording only; all
// transitions come from the driver
func newBareFixture(t *testing.T, opts ...hfsm.Option) *fixture {
	t.Helper()
	return buildFixture(t, false, opts...)
}

func buildFixture(t *testing.T, scripted bool, opts ...hfsm.Option) *fixture {
	t.Helper()

	def, err := hfsm.Define(referenceNodes()...)
	require.NoError(t, err)

	f := &fixture{
		def:     def,
		ctx:     &fixtureContext{deltaTime: 0.5},
		driver:  &driver{},
		tracked: make(map[string]*fragments.Tracked[*fixtureContext]),
		timed:   make(map[string]*fragments.Timed[*fixtureContext]),
	}

	all := append([]hfsm.Option{hfsm.WithBehavior(hfsm.RootTag, f.driver)}, opts...)
	for _, tag := range def.Tags()[1:] {
		tracked := &fragments.Tracked[*fixtureContext]{}
		timed := &fragments.Timed[*fixtureContext]{}
		f.tracked[tag] = tracked
		f.timed[tag] = timed

		var behavior any
		if scripted {
			behavior = scriptedBehavior(tag, tracked)
		}
		all = append(all, hfsm.WithBehavior(tag, behavior,
			tracked, timed, fragments.NewRecorder[*fixtureContext, action](tag)))
	}

	f.machine, err = hfsm.NewMachine[*fixtureContext, action](def, all...)
	require.NoError(t, err)
	return f
}

func scriptedBehavior(tag string, tracked *fragments.Tracked[*fixtureContext]) any {
	switch tag {
	case "A", "A_2_1", "A_2_2", "B":
		return reacting{tag: tag}
	case "A_1":
		return stateA1{}
	case "A_2":
		return stateA2{tracked: tracked}
	case "B_2_1":
		return stateB21{}
	case "B_2_2":
		return stateB22{tracked: tracked}
	}
	return nil
}

func (f *fixture) start(t *testing.T) []string {
	t.Helper()
	require.NoError(t, f.machine.Start(f.ctx))
	return f.ctx.take()
}

func (f *fixture) tick(t *testing.T) []string {
	t.Helper()
	require.NoError(t, f.machine.Tick(f.ctx, action{}))
	return f.ctx.take()
}

// recordingObserver captures every notification
type recordingObserver struct {
	mutex    sync.Mutex
	events   []string
	requests []hfsm.Request
	dropped  []error
	errors   []error
	ticks    []uint64
	started  int
	stopped  int
}

func (o *recordingObserver) OnStateEnter(state string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.events = append(o.events, "enter "+state)
}

func (o *recordingObserver) OnStateExit(state string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.events = append(o.events, "exit "+state)
}

func (o *recordingObserver) OnRequest(req hfsm.Request) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.requests = append(o.requests, req)
}

func (o *recordingObserver) OnRequestDropped(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.dropped = append(o.dropped, err)
}

func (o *recordingObserver) OnTickCompleted(tick uint64, active []string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.ticks = append(o.ticks, tick)
}

func (o *recordingObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.errors = append(o.errors, err)
}

func (o *recordingObserver) OnMachineStarted() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.started++
}

func (o *recordingObserver) OnMachineStopped() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.stopped++
}

func (o *recordingObserver) take() []string {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	events := o.events
	o.events = nil
	return events
}
