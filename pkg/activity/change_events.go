package activity

import (
	"strconv"
	"strings"
	"time"
)

// ObjectTypeSlot is the object type of every slot change event.
const ObjectTypeSlot = "tracked.slot"

// Slot change verbs.
const (
	VerbSlotInserted = "slot.inserted"
	VerbSlotModified = "slot.modified"
	VerbSlotRemoved  = "slot.removed"
)

// ChangeEventInput describes one entry of a change log.
type ChangeEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Tracker    string
	Slot       uint32
	Change     string
	EpochID    string
	EpochSeq   uint64
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// VerbForChange maps a change name to its event verb. It returns "" for
// "none" and unknown names.
func VerbForChange(change string) string {
	switch strings.ToLower(strings.TrimSpace(change)) {
	case "inserted", "insert":
		return VerbSlotInserted
	case "modified", "modify":
		return VerbSlotModified
	case "removed", "remove":
		return VerbSlotRemoved
	default:
		return ""
	}
}

// BuildChangeEvent constructs an activity event for a slot change. The object
// id is the slot id, prefixed with the tracker name when one is set. An input
// whose change has no verb yields an event that hooks drop.
func BuildChangeEvent(input ChangeEventInput) Event {
	metadata := cloneMap(input.Metadata)
	metadata = ensureMetadata(metadata)
	metadata["slot"] = input.Slot
	metadata["change"] = strings.ToLower(strings.TrimSpace(input.Change))

	tracker := strings.TrimSpace(input.Tracker)
	objectID := strconv.FormatUint(uint64(input.Slot), 10)
	if tracker != "" {
		metadata["tracker"] = tracker
		objectID = tracker + "/" + objectID
	}
	if epochID := strings.TrimSpace(input.EpochID); epochID != "" {
		metadata["epoch_id"] = epochID
	}
	if input.EpochSeq > 0 {
		metadata["epoch_seq"] = input.EpochSeq
	}

	return Event{
		Verb:       VerbForChange(input.Change),
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectTypeSlot,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
