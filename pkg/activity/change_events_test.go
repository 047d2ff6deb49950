package activity

import (
	"context"
	"testing"
)

func TestBuildChangeEventStampsSlotAndEpoch(t *testing.T) {
	meta := map[string]any{"custom": "value"}
	input := ChangeEventInput{
		ActorID:  " actor ",
		TenantID: " tenant ",
		Tracker:  "positions",
		Slot:     7,
		Change:   "modified",
		EpochID:  "epoch-1",
		EpochSeq: 3,
		Channel:  "ecs",
		Metadata: meta,
	}

	event := BuildChangeEvent(input)

	if event.Verb != VerbSlotModified {
		t.Fatalf("expected verb %s got %s", VerbSlotModified, event.Verb)
	}
	if event.ObjectType != ObjectTypeSlot || event.ObjectID != "positions/7" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
	if event.ActorID != "actor" || event.TenantID != "tenant" || event.Channel != "ecs" {
		t.Fatalf("unexpected identity fields: %+v", event)
	}
	if event.Metadata["slot"] != uint32(7) || event.Metadata["change"] != "modified" {
		t.Fatalf("expected slot metadata, got %+v", event.Metadata)
	}
	if event.Metadata["epoch_id"] != "epoch-1" || event.Metadata["epoch_seq"] != uint64(3) {
		t.Fatalf("expected epoch metadata, got %+v", event.Metadata)
	}
	if event.Metadata["tracker"] != "positions" || event.Metadata["custom"] != "value" {
		t.Fatalf("expected tracker and custom metadata, got %+v", event.Metadata)
	}
	if _, ok := meta["slot"]; ok {
		t.Fatalf("expected input metadata untouched")
	}
}

func TestBuildChangeEventWithoutTracker(t *testing.T) {
	event := BuildChangeEvent(ChangeEventInput{Slot: 12, Change: "inserted"})
	if event.ObjectID != "12" {
		t.Fatalf("expected bare slot id, got %q", event.ObjectID)
	}
	if _, ok := event.Metadata["tracker"]; ok {
		t.Fatalf("expected no tracker metadata, got %+v", event.Metadata)
	}
}

func TestVerbForChange(t *testing.T) {
	cases := map[string]string{
		"inserted": VerbSlotInserted,
		"Insert":   VerbSlotInserted,
		"modified": VerbSlotModified,
		"removed":  VerbSlotRemoved,
		"none":     "",
		"bogus":    "",
	}
	for change, want := range cases {
		if got := VerbForChange(change); got != want {
			t.Fatalf("VerbForChange(%q) = %q, want %q", change, got, want)
		}
	}
}

func TestBuildChangeEventNoneIsDroppedByHooks(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}

	if err := hooks.Notify(context.Background(), BuildChangeEvent(ChangeEventInput{Slot: 1, Change: "none"})); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := hooks.Notify(context.Background(), BuildChangeEvent(ChangeEventInput{Slot: 2, Change: "removed"})); err != nil {
		t.Fatalf("notify: %v", err)
	}
	verbs := capture.Verbs()
	if len(verbs) != 1 || verbs[0] != VerbSlotRemoved {
		t.Fatalf("expected only the removal, got %v", verbs)
	}
}
