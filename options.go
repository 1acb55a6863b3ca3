package hfsm

import (
	"fmt"

	"go.uber.org/zap"
)

// Option configures a Machine at construction
type Option func(*options)

type binding struct {
	tag       string
	behavior  any
	fragments []any
}

type options struct {
	name      string
	logger    *zap.Logger
	observers []Observer
	bindings  []binding
	bound     map[string]bool
	err       error
}

func newOptions() *options {
	return &options{
		name:   "machine",
		logger: zap.NewNop(),
		bound:  make(map[string]bool),
	}
}

// WithName names the machine in logs and snapshots
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger routes the machine's diagnostics to logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver registers an observer before the machine starts
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}
	}
}

// WithBehavior binds the hooks of behavior to the tagged state, framed by
// the Pre and Post hooks of fragments in the given order. Use RootTag to
// give the implicit root a behavior.
func WithBehavior(tag string, behavior any, fragments ...any) Option {
	return func(o *options) {
		if o.bound[tag] {
			if o.err == nil {
				o.err = NewStateError(ErrCodeDuplicateBehavior, tag,
					fmt.Sprintf("behavior for state '%s' bound more than once", tag))
			}
			return
		}
		o.bound[tag] = true
		o.bindings = append(o.bindings, binding{tag: tag, behavior: behavior, fragments: fragments})
	}
}
