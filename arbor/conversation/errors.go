package conversation

import "fmt"

// The engine's failure taxonomy. Validation failures are rejected before any
// state change; precondition and collaborator failures are reported
// per-command and never abort the batch; gateway failures abort the current
// turn only. Every turn-level failure restores the Idle state.

// ValidationError reports a malformed utterance or command parameter list.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// PreconditionError reports a command that requires a selection that is absent.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition not met: %s", e.Reason)
}

// GatewayError wraps a transport or parse failure from the assistant gateway.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("assistant gateway: %v", e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// CollaboratorError wraps a tree store or generation failure during a command.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }
