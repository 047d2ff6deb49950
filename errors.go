package tracked

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition marks a change tag pair the merge table rejects.
	ErrInvalidTransition = errors.New("tracked: invalid change transition")
	// ErrEqualityUnavailable is returned by Maintain when no equality function
	// is configured for the value type.
	ErrEqualityUnavailable = errors.New("tracked: modification detection unavailable without equality")
	// ErrSnapshotDesync marks a live slot without a snapshot, or the reverse.
	ErrSnapshotDesync = errors.New("tracked: snapshot and live store out of sync")
)

// TransitionError captures the slot and tags of a rejected merge. Record panics
// with a *TransitionError; it is never absorbed.
type TransitionError struct {
	ID       Index
	Old      Change
	Incoming Change
	// Known is false when the error came from Merge without a slot context.
	Known bool
}

func (e *TransitionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Known {
		return fmt.Sprintf("tracked: slot %d: cannot apply %s on top of %s", e.ID, e.Incoming, e.Old)
	}
	return fmt.Sprintf("tracked: cannot apply %s on top of %s", e.Incoming, e.Old)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// DesyncError reports which slot and which operation found the snapshot and
// live stores disagreeing.
type DesyncError struct {
	Op  string
	ID  Index
	Err error
}

func (e *DesyncError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return fmt.Sprintf("tracked: %s slot %d: snapshot and live store out of sync", e.Op, e.ID)
	}
	return fmt.Sprintf("tracked: %s slot %d: snapshot and live store out of sync: %v", e.Op, e.ID, e.Err)
}

func (e *DesyncError) Is(target error) bool {
	return target == ErrSnapshotDesync
}

func (e *DesyncError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// withSlot fills the slot context of err when it is a *TransitionError.
func withSlot(err error, id Index) error {
	var transition *TransitionError
	if errors.As(err, &transition) && !transition.Known {
		transition.ID = id
		transition.Known = true
	}
	return err
}
