// Package fragments provides reusable behavior fragments that can be
// stacked onto any state with hfsm.WithBehavior.
package fragments

import (
	"fmt"

	"github.com/anggasct/hfsm"
)

// Tracked counts entries and update passes of the state it is stacked on
type Tracked[C any] struct {
	entryCount         int
	currentUpdateCount int
	totalUpdateCount   int
}

// PreEnter counts the entry and restarts the per-visit update count
func (t *Tracked[C]) PreEnter(ctx C) {
	t.entryCount++
	t.currentUpdateCount = 0
}

// PreUpdate counts the update pass
func (t *Tracked[C]) PreUpdate(ctx C, ctl *hfsm.Control[C]) {
	t.currentUpdateCount++
	t.totalUpdateCount++
}

// EntryCount is the number of times the state became active
func (t *Tracked[C]) EntryCount() int { return t.entryCount }

// CurrentUpdateCount is the number of update passes since the last entry
func (t *Tracked[C]) CurrentUpdateCount() int { return t.currentUpdateCount }

// TotalUpdateCount is the number of update passes over the state's lifetime
func (t *Tracked[C]) TotalUpdateCount() int { return t.totalUpdateCount }

// Clock is implemented by contexts that carry the duration of a tick
type Clock interface {
	DeltaTime() float64
}

// Timed accumulates the time spent in a state since its last entry
type Timed[C Clock] struct {
	elapsed float64
}

func (t *Timed[C]) PreEnter(ctx C) {
	t.elapsed = 0
}

func (t *Timed[C]) PreUpdate(ctx C, ctl *hfsm.Control[C]) {
	t.elapsed += ctx.DeltaTime()
}

// Elapsed returns the accumulated time
func (t *Timed[C]) Elapsed() float64 { return t.elapsed }

// Event names a recorded lifecycle call
type Event int

const (
	Guard Event = iota
	Enter
	Update
	ReactRequest
	React
	Exit
	Restart
	Resume
	Schedule
)

var eventNames = [...]string{
	Guard:        "guard",
	Enter:        "enter",
	Update:       "update",
	ReactRequest: "react_request",
	React:        "react",
	Exit:         "exit",
	Restart:      "restart",
	Resume:       "resume",
	Schedule:     "schedule",
}

func (e Event) String() string {
	if e >= 0 && int(e) < len(eventNames) {
		return eventNames[e]
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Status is one entry of a recorded history
type Status struct {
	State string
	Event Event
}

func (s Status) String() string {
	return s.State + ":" + s.Event.String()
}

// Journal is implemented by contexts that collect a history
type Journal interface {
	Append(Status)
}

// Recorder appends every lifecycle call of its state to the context's
// journal. E is the machine's event type.
type Recorder[C Journal, E any] struct {
	State string
}

// NewRecorder creates a recorder for the named state
func NewRecorder[C Journal, E any](state string) *Recorder[C, E] {
	return &Recorder[C, E]{State: state}
}

func (r *Recorder[C, E]) PreGuard(ctx C, ctl *hfsm.Control[C]) {
	ctx.Append(Status{State: r.State, Event: Guard})
}

func (r *Recorder[C, E]) PreEnter(ctx C) {
	ctx.Append(Status{State: r.State, Event: Enter})
}

func (r *Recorder[C, E]) PreUpdate(ctx C, ctl *hfsm.Control[C]) {
	ctx.Append(Status{State: r.State, Event: Update})
}

func (r *Recorder[C, E]) PreReact(ev E, ctx C, ctl *hfsm.Control[C]) {
	ctx.Append(Status{State: r.State, Event: ReactRequest})
}

func (r *Recorder[C, E]) PostExit(ctx C) {
	ctx.Append(Status{State: r.State, Event: Exit})
}

// ChangeTo issues a restart and records it
func ChangeTo[C Journal](ctl *hfsm.Control[C], target string) {
	ctl.ChangeTo(target)
	ctl.Context().Append(Status{State: target, Event: Restart})
}

// ResumeTo issues a resume and records it
func ResumeTo[C Journal](ctl *hfsm.Control[C], target string) {
	ctl.Resume(target)
	ctl.Context().Append(Status{State: target, Event: Resume})
}

// ScheduleTo issues a schedule and records it
func ScheduleTo[C Journal](ctl *hfsm.Control[C], target string) {
	ctl.Schedule(target)
	ctl.Context().Append(Status{State: target, Event: Schedule})
}
