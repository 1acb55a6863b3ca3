package hfsm

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions in the state machine
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// State tag was not found in the definition
	ErrCodeStateNotFound
	// Machine configuration is invalid
	ErrCodeInvalidConfiguration
	// Machine is not in started state
	ErrCodeMachineNotStarted
	// Machine was started twice
	ErrCodeMachineAlreadyStarted
	// Transition control was used outside of its hook invocation
	ErrCodeControlExpired
	// Behavior was bound to a state twice
	ErrCodeDuplicateBehavior
)

// String returns a short name for the code
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeNone:
		return "none"
	case ErrCodeStateNotFound:
		return "state_not_found"
	case ErrCodeInvalidConfiguration:
		return "invalid_configuration"
	case ErrCodeMachineNotStarted:
		return "machine_not_started"
	case ErrCodeMachineAlreadyStarted:
		return "machine_already_started"
	case ErrCodeControlExpired:
		return "control_expired"
	case ErrCodeDuplicateBehavior:
		return "duplicate_behavior"
	default:
		return fmt.Sprintf("error_code(%d)", int(c))
	}
}

// StateError represents state-related errors
type StateError struct {
	Code    ErrorCode
	StateID string
	Message string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state error [%s]: %s", e.StateID, e.Message)
}

// NewStateNotFoundError creates a new state not found error
func NewStateNotFoundError(stateID string) *StateError {
	return &StateError{
		Code:    ErrCodeStateNotFound,
		StateID: stateID,
		Message: fmt.Sprintf("state '%s' not found", stateID),
	}
}

// NewStateError creates a new state error with custom values
func NewStateError(code ErrorCode, stateID string, message string) *StateError {
	return &StateError{
		Code:    code,
		StateID: stateID,
		Message: message,
	}
}

// TransitionError represents a transition request that could not be honored
type TransitionError struct {
	Code   ErrorCode
	Origin string
	Target string
	Kind   TransitionKind
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition error [%s -%s-> %s]: %s", e.Origin, e.Kind, e.Target, e.Reason)
}

// NewUnknownTargetError reports a request aimed at an undeclared state
func NewUnknownTargetError(origin, target string, kind TransitionKind) *TransitionError {
	return &TransitionError{
		Code:   ErrCodeStateNotFound,
		Origin: origin,
		Target: target,
		Kind:   kind,
		Reason: fmt.Sprintf("target state '%s' is not declared", target),
	}
}

// NewControlExpiredError reports a request issued after the hook returned
func NewControlExpiredError(origin, target string, kind TransitionKind) *TransitionError {
	return &TransitionError{
		Code:   ErrCodeControlExpired,
		Origin: origin,
		Target: target,
		Kind:   kind,
		Reason: "transition control used after its hook returned",
	}
}

// ConfigurationError represents machine definition issues
type ConfigurationError struct {
	Component string
	Issue     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Issue)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(component, issue string) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Issue:     issue,
	}
}

// MachineError represents state machine operation errors
type MachineError struct {
	Code      ErrorCode
	Operation string
	Message   string
}

func (e *MachineError) Error() string {
	return fmt.Sprintf("machine error during %s: %s", e.Operation, e.Message)
}

// NewMachineNotStartedError creates a new machine not started error
func NewMachineNotStartedError(operation string) *MachineError {
	return &MachineError{
		Code:      ErrCodeMachineNotStarted,
		Operation: operation,
		Message:   "state machine is not started",
	}
}

// NewMachineAlreadyStartedError creates a new machine already started error
func NewMachineAlreadyStartedError(operation string) *MachineError {
	return &MachineError{
		Code:      ErrCodeMachineAlreadyStarted,
		Operation: operation,
		Message:   "state machine is already started",
	}
}

// IsStateError checks if an error is a StateError
func IsStateError(err error) bool {
	var target *StateError
	return errors.As(err, &target)
}

// IsTransitionError checks if an error is a TransitionError
func IsTransitionError(err error) bool {
	var target *TransitionError
	return errors.As(err, &target)
}

// IsConfigurationError checks if an error is a ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsMachineError checks if an error is a MachineError
func IsMachineError(err error) bool {
	var target *MachineError
	return errors.As(err, &target)
}

// GetErrorCode returns the error code for known error types.
// Joined errors report the code of the first known member.
func GetErrorCode(err error) ErrorCode {
	switch e := err.(type) {
	case nil:
		return ErrCodeNone
	case *StateError:
		return e.Code
	case *TransitionError:
		return e.Code
	case *MachineError:
		return e.Code
	case *ConfigurationError:
		return ErrCodeInvalidConfiguration
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if code := GetErrorCode(inner); code != ErrCodeNone {
				return code
			}
		}
	}
	return ErrCodeNone
}
