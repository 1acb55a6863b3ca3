package hfsm

import "fmt"

// TransitionKind selects how a request picks children below its target
type TransitionKind int

const (
	// Restart enters the target's default chain and resets its memory
	Restart TransitionKind = iota
	// Resume enters the target's remembered chain, falling back to defaults
	Resume
	// Schedule seeds the memory of the target's nearest exclusive region
	Schedule
)

// String returns the name of the transition kind
func (k TransitionKind) String() string {
	switch k {
	case Restart:
		return "restart"
	case Resume:
		return "resume"
	case Schedule:
		return "schedule"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseTransitionKind accepts the names produced by String, plus the
// changeTo alias for Restart
func ParseTransitionKind(s string) (TransitionKind, error) {
	switch s {
	case "restart", "changeTo", "change":
		return Restart, nil
	case "resume":
		return Resume, nil
	case "schedule":
		return Schedule, nil
	}
	return Restart, fmt.Errorf("unknown transition kind %q", s)
}

// Phase is the tick sub-phase a request was raised in
type Phase int

const (
	PhaseGuard Phase = iota
	PhaseUpdate
	PhaseReact
)

// String returns the name of the phase
func (p Phase) String() string {
	switch p {
	case PhaseGuard:
		return "guard"
	case PhaseUpdate:
		return "update"
	case PhaseReact:
		return "react"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Request is a transition raised by a state hook
type Request struct {
	Target    StateID
	TargetTag string
	Kind      TransitionKind
	Origin    StateID
	OriginTag string
	Phase     Phase
}

// String renders the request for logs and errors
func (r Request) String() string {
	return fmt.Sprintf("%s(%s) from %s during %s", r.Kind, r.TargetTag, r.OriginTag, r.Phase)
}

// requestQueue collects the requests of one phase in arrival order
type requestQueue struct {
	requests []Request
}

// push appends a request. A restart or resume replaces the same origin's
// earlier restart or resume raised in the same phase.
func (q *requestQueue) push(req Request) {
	if req.Kind != Schedule {
		for i, prev := range q.requests {
			if prev.Kind != Schedule && prev.Origin == req.Origin && prev.Phase == req.Phase {
				q.requests = append(q.requests[:i], q.requests[i+1:]...)
				break
			}
		}
	}
	q.requests = append(q.requests, req)
}

func (q *requestQueue) drain() []Request {
	reqs := q.requests
	q.requests = nil
	return reqs
}

func (q *requestQueue) len() int {
	return len(q.requests)
}
