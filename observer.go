package hfsm

import "fmt"

// Observer represents an entity that observes state machine lifecycle
type Observer interface {
	// OnStateEnter is called after a state's entry hooks ran
	OnStateEnter(state string)

	// OnStateExit is called after a state's exit hooks ran
	OnStateExit(state string)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnRequest is called for every request taken into resolution
	OnRequest(req Request)

	// OnRequestDropped is called when a request could not be queued
	OnRequestDropped(err error)

	// OnTickCompleted is called at the end of every Tick or Update
	OnTickCompleted(tick uint64, active []string)

	// OnError is called when an observer panics
	OnError(err error)

	// OnMachineStarted is called when the state machine starts
	OnMachineStarted()

	// OnMachineStopped is called when the state machine stops
	OnMachineStopped()
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

func (o *BaseObserver) OnStateEnter(state string) {}

func (o *BaseObserver) OnStateExit(state string) {}

func (o *BaseObserver) OnRequest(req Request) {}

func (o *BaseObserver) OnRequestDropped(err error) {}

func (o *BaseObserver) OnTickCompleted(tick uint64, active []string) {}

func (o *BaseObserver) OnError(err error) {}

func (o *BaseObserver) OnMachineStarted() {}

func (o *BaseObserver) OnMachineStopped() {}

// ObserverManager manages a collection of observers
type ObserverManager struct {
	observers []Observer
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager) RemoveObserver(observer Observer) {
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager) Len() int {
	return len(om.observers)
}

// each calls fn for every observer, isolating the machine from panics.
// A panicking observer is reported through OnError when it can take it.
func (om *ObserverManager) each(method string, fn func(Observer)) {
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)

	for _, observer := range observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					if extObs, ok := observer.(ExtendedObserver); ok {
						func() {
							defer func() { recover() }()
							extObs.OnError(fmt.Errorf("observer panic in %s: %v", method, r))
						}()
					}
				}
			}()
			fn(observer)
		}()
	}
}

func (om *ObserverManager) eachExtended(method string, fn func(ExtendedObserver)) {
	om.each(method, func(o Observer) {
		if extObs, ok := o.(ExtendedObserver); ok {
			fn(extObs)
		}
	})
}

// NotifyStateEnter notifies all observers of state entry
func (om *ObserverManager) NotifyStateEnter(state string) {
	om.each("OnStateEnter", func(o Observer) { o.OnStateEnter(state) })
}

// NotifyStateExit notifies all observers of state exit
func (om *ObserverManager) NotifyStateExit(state string) {
	om.each("OnStateExit", func(o Observer) { o.OnStateExit(state) })
}

// NotifyRequest notifies all observers of a request entering resolution
func (om *ObserverManager) NotifyRequest(req Request) {
	om.eachExtended("OnRequest", func(o ExtendedObserver) { o.OnRequest(req) })
}

// NotifyRequestDropped notifies all observers of a rejected request
func (om *ObserverManager) NotifyRequestDropped(err error) {
	om.eachExtended("OnRequestDropped", func(o ExtendedObserver) { o.OnRequestDropped(err) })
}

// NotifyTickCompleted notifies all observers that a tick finished
func (om *ObserverManager) NotifyTickCompleted(tick uint64, active []string) {
	om.eachExtended("OnTickCompleted", func(o ExtendedObserver) { o.OnTickCompleted(tick, active) })
}

// NotifyMachineStarted notifies all observers that the machine has started
func (om *ObserverManager) NotifyMachineStarted() {
	om.eachExtended("OnMachineStarted", func(o ExtendedObserver) { o.OnMachineStarted() })
}

// NotifyMachineStopped notifies all observers that the machine has stopped
func (om *ObserverManager) NotifyMachineStopped() {
	om.eachExtended("OnMachineStopped", func(o ExtendedObserver) { o.OnMachineStopped() })
}
