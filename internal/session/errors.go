package session

import (
	"errors"
	"fmt"
)

var (
	// ErrCountOutOfRange rejects confirming a count outside
	// [MinParticipants, MaxParticipants].
	ErrCountOutOfRange = fmt.Errorf("participant count must be between %d and %d", MinParticipants, MaxParticipants)

	// ErrInvalidTransition is matched by every *TransitionError.
	ErrInvalidTransition = errors.New("intent not allowed in current step")

	ErrParticipantIndex = errors.New("participant index out of range")
	ErrUnknownLocale    = errors.New("unknown locale")
)

// TransitionError reports an intent sent while the session is in a step that
// does not accept it.
type TransitionError struct {
	Intent string
	Step   Step
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s not allowed in step %s", e.Intent, e.Step)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// MissingOrdersError rejects a calculation because a participant has no valid
// order line. It names the first such participant.
type MissingOrdersError struct {
	// Index is the zero-based position of the participant.
	Index int

	// Name is the participant's display name, possibly empty.
	Name string
}

func (e *MissingOrdersError) Error() string {
	who := e.Name
	if who == "" {
		who = fmt.Sprintf("participant %d", e.Index+1)
	}
	return fmt.Sprintf("%s has no valid order", who)
}
