package tracked

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/goliatone/go-tracked/pkg/activity"
)

func TestPublishForwardsEvents(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	capture := &activity.CaptureHook{}
	tr := NewComparable[int](nil,
		WithName[int]("inventory"),
		WithClock[int](func() time.Time { return fixed }),
		WithActivityHooks[int](activity.Hooks{nil, capture}),
		WithActivityChannel[int]("audit"),
		WithActivityIdentity[int]("actor-1", "tenant-1"),
	)
	tr.Insert(1, 10)
	tr.Insert(2, 20)
	tr.Reset()
	tr.Remove(1)
	*tr.GetMut(2) = 21
	if _, err := tr.Maintain(liveIDs(2)); err != nil {
		t.Fatalf("maintain: %v", err)
	}
	tr.Insert(5, 50)

	published, err := tr.Publish(context.Background())
	if err != nil || published != 3 {
		t.Fatalf("expected 3 events published, got %d %v", published, err)
	}
	want := []string{activity.VerbSlotRemoved, activity.VerbSlotModified, activity.VerbSlotInserted}
	if got := capture.Verbs(); !slices.Equal(got, want) {
		t.Fatalf("expected verbs %v, got %v", want, got)
	}

	event := capture.Events[1]
	if event.ObjectType != activity.ObjectTypeSlot || event.ObjectID != "inventory/2" {
		t.Fatalf("unexpected object %s %s", event.ObjectType, event.ObjectID)
	}
	if event.Channel != "audit" || event.ActorID != "actor-1" || event.TenantID != "tenant-1" {
		t.Fatalf("expected configured identity, got %+v", event)
	}
	if !event.OccurredAt.Equal(fixed) {
		t.Fatalf("expected clock timestamp, got %v", event.OccurredAt)
	}
	if event.Metadata["slot"] != uint32(2) || event.Metadata["change"] != "modified" {
		t.Fatalf("unexpected metadata %v", event.Metadata)
	}
	if event.Metadata["epoch_seq"] != uint64(2) || event.Metadata["epoch_id"] != tr.Epoch().ID.String() {
		t.Fatalf("expected current epoch in metadata, got %v", event.Metadata)
	}

	capture.Reset()
	if again, _ := tr.Publish(context.Background()); again != 3 || len(capture.Events) != 3 {
		t.Fatalf("publishing must not consume events")
	}
}

func TestPublishWithoutHooks(t *testing.T) {
	tr := NewComparable[int](nil, WithActivityHooks[int](activity.Hooks{nil}))
	tr.Insert(1, 1)
	if tr.ActivityHooks() != nil {
		t.Fatalf("expected nil hooks dropped")
	}
	published, err := tr.Publish(context.Background())
	if err != nil || published != 0 {
		t.Fatalf("expected nothing published, got %d %v", published, err)
	}
}

func TestPublishJoinsHookErrors(t *testing.T) {
	boom := errors.New("boom")
	capture := &activity.CaptureHook{Err: boom}
	var ops []string
	tr := NewComparable[int](nil,
		WithActivityHooks[int](activity.Hooks{capture}),
		WithLogger[int](OperationLoggerFunc(func(event OperationLogEvent) {
			ops = append(ops, event.Op)
			if event.Op == "publish" && !errors.Is(event.Err, boom) {
				t.Fatalf("expected publish error logged, got %v", event.Err)
			}
		})),
	)
	tr.Insert(1, 1)
	tr.Insert(2, 2)

	published, err := tr.Publish(context.Background())
	if !errors.Is(err, boom) || published != 2 {
		t.Fatalf("expected joined hook error, got %d %v", published, err)
	}
	if len(capture.Events) != 2 {
		t.Fatalf("expected delivery to continue past failures, got %d", len(capture.Events))
	}
	if !slices.Equal(ops, []string{"publish"}) {
		t.Fatalf("unexpected operations %v", ops)
	}
}

func TestPublishStopsOnCanceledContext(t *testing.T) {
	capture := &activity.CaptureHook{}
	tr := NewComparable[int](nil, WithActivityHooks[int](activity.Hooks{capture}))
	tr.Insert(1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := tr.Publish(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no delivery after cancel")
	}
}

func TestActivityEventsDefaultChannel(t *testing.T) {
	capture := &activity.CaptureHook{}
	tr := NewComparable[int](nil, WithActivityHooks[int](activity.Hooks{activity.HookFunc(capture.Notify)}))
	tr.Insert(3, 3)
	if _, err := tr.Publish(context.Background()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if capture.Events[0].Channel != activity.DefaultChannel || capture.Events[0].ObjectID != "3" {
		t.Fatalf("unexpected defaults %+v", capture.Events[0])
	}

	built := tr.ActivityEvents()
	if len(built) != 1 || built[0].Channel != "" {
		t.Fatalf("built events carry no channel until emitted, got %+v", built)
	}
}
