package observers

import (
	"fmt"
	"sync"

	"github.com/anggasct/hfsm"
)

// ValidationObserver checks the active configuration reported at the end of
// every tick against the structural rules of the tree: the root is
// active, an active exclusive region has exactly one active child, and a
// parallel region's children are active exactly when the region is.
type ValidationObserver struct {
	hfsm.BaseObserver

	def        *hfsm.Definition
	violations []string
	entered    map[string]int
	mutex      sync.RWMutex
}

// NewValidationObserver creates a new validation observer for def
func NewValidationObserver(def *hfsm.Definition) *ValidationObserver {
	return &ValidationObserver{
		def:        def,
		violations: make([]string, 0),
		entered:    make(map[string]int),
	}
}

// addViolation adds a violation
func (o *ValidationObserver) addViolation(message string) {
	o.violations = append(o.violations, message)
}

// OnStateEnter counts entries per state
func (o *ValidationObserver) OnStateEnter(state string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.entered[state]++
}

// OnTickCompleted validates the configuration
func (o *ValidationObserver) OnTickCompleted(tick uint64, active []string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	live := make(map[hfsm.StateID]bool, len(active))
	for _, tag := range active {
		id, ok := o.def.IdentityOf(tag)
		if !ok {
			o.addViolation(fmt.Sprintf("tick %d: unknown active state '%s'", tick, tag))
			continue
		}
		live[id] = true
	}

	if !live[hfsm.RootID] {
		o.addViolation(fmt.Sprintf("tick %d: root is not active", tick))
	}

	for i := 0; i < o.def.Len(); i++ {
		id := hfsm.StateID(i)
		children := o.def.Children(id)
		count := 0
		for _, c := range children {
			if live[c] {
				count++
			}
		}

		switch o.def.KindOf(id) {
		case hfsm.Exclusive:
			if live[id] && count != 1 {
				o.addViolation(fmt.Sprintf("tick %d: exclusive region '%s' has %d active children",
					tick, o.def.Tag(id), count))
			}
			if !live[id] && count != 0 {
				o.addViolation(fmt.Sprintf("tick %d: inactive region '%s' has active children",
					tick, o.def.Tag(id)))
			}
		case hfsm.Parallel:
			if live[id] && count != len(children) {
				o.addViolation(fmt.Sprintf("tick %d: parallel region '%s' has %d of %d children active",
					tick, o.def.Tag(id), count, len(children)))
			}
			if !live[id] && count != 0 {
				o.addViolation(fmt.Sprintf("tick %d: inactive region '%s' has active children",
					tick, o.def.Tag(id)))
			}
		}
	}
}

// GetViolations returns all violations found so far
func (o *ValidationObserver) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// HasViolations reports whether any violation was found
func (o *ValidationObserver) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// EntryCount returns how often a state was entered
func (o *ValidationObserver) EntryCount(state string) int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.entered[state]
}

// Reset clears recorded violations and counts
func (o *ValidationObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.violations = make([]string, 0)
	o.entered = make(map[string]int)
}
