package session

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a violated call precondition, such as an empty msisdn.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidUsage marks a programming error in how an API was called.
	ErrInvalidUsage = errors.New("invalid usage")
	// ErrUnexpectedFailure wraps any dialogue error that is not a hangup.
	ErrUnexpectedFailure = errors.New("unexpected failure")
)

type Initiator string

const (
	InitiatorBot   Initiator = "bot"
	InitiatorHuman Initiator = "human"
)

// TerminationError is the call-termination signal. It is returned, never
// panicked, and travels up to the Controller unchanged.
type TerminationError struct {
	Initiator Initiator
	Reason    string
}

func (e *TerminationError) Error() string {
	return e.Reason
}

// Hangup builds the termination signal for the given side.
func Hangup(initiator Initiator) error {
	reason := "caller hung up"
	if initiator == InitiatorBot {
		reason = "bot hung up"
	}
	return &TerminationError{Initiator: initiator, Reason: reason}
}

// AsTermination unwraps err to a TerminationError if it carries one.
func AsTermination(err error) (*TerminationError, bool) {
	var te *TerminationError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

func IsTermination(err error) bool {
	_, ok := AsTermination(err)
	return ok
}

func unexpected(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnexpectedFailure, fmt.Sprintf(format, args...))
}
