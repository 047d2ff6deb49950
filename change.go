package tracked

import (
	"fmt"
	"strings"
)

// Index addresses one slot in a store.
type Index = uint32

// Change is the net effect of the events applied to one slot within the
// current epoch.
type Change uint8

const (
	// ChangeNone means nothing observable happened to the slot this epoch.
	ChangeNone Change = iota
	// ChangeInserted means the slot was created this epoch.
	ChangeInserted
	// ChangeModified means the slot existed before the epoch and its value
	// changed, either in place or by a remove followed by an insert.
	ChangeModified
	// ChangeRemoved means the slot existed before the epoch and is gone.
	ChangeRemoved
)

func (c Change) String() string {
	switch c {
	case ChangeNone:
		return "none"
	case ChangeInserted:
		return "inserted"
	case ChangeModified:
		return "modified"
	case ChangeRemoved:
		return "removed"
	default:
		return fmt.Sprintf("change(%d)", uint8(c))
	}
}

// Dirty reports whether c marks a live slot that consumers should revisit.
func (c Change) Dirty() bool {
	return c == ChangeInserted || c == ChangeModified
}

// ParseChange converts the String form back into a Change.
func ParseChange(value string) (Change, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none", "":
		return ChangeNone, nil
	case "inserted", "insert":
		return ChangeInserted, nil
	case "modified", "modify":
		return ChangeModified, nil
	case "removed", "remove":
		return ChangeRemoved, nil
	default:
		return ChangeNone, fmt.Errorf("tracked: unknown change %q", value)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Change) MarshalText() ([]byte, error) {
	if c > ChangeRemoved {
		return nil, fmt.Errorf("tracked: unknown change %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Change) UnmarshalText(text []byte) error {
	parsed, err := ParseChange(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Merge folds an incoming event into the tag already recorded for a slot.
//
// Inserted followed by Removed cancels out, Removed followed by Inserted reads
// as Modified. Pairs that can only come from a double structural event without
// a reset in between are rejected with a *TransitionError.
func Merge(old, incoming Change) (Change, error) {
	if old > ChangeRemoved || incoming > ChangeRemoved {
		return old, &TransitionError{Old: old, Incoming: incoming}
	}
	if incoming == ChangeNone {
		return old, nil
	}
	switch old {
	case ChangeNone:
		return incoming, nil
	case ChangeInserted:
		switch incoming {
		case ChangeModified:
			return ChangeInserted, nil
		case ChangeRemoved:
			return ChangeNone, nil
		}
	case ChangeModified:
		switch incoming {
		case ChangeModified:
			return ChangeModified, nil
		case ChangeRemoved:
			return ChangeRemoved, nil
		}
	case ChangeRemoved:
		if incoming == ChangeInserted {
			return ChangeModified, nil
		}
	}
	return old, &TransitionError{Old: old, Incoming: incoming}
}
