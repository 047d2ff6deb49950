package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-tracked/pkg/activity"
	"github.com/goliatone/go-tracked/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsChangeEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()

	event := activity.BuildChangeEvent(activity.ChangeEventInput{
		ActorID:    actorID.String(),
		TenantID:   tenantID.String(),
		Tracker:    "health",
		Slot:       3,
		Change:     "inserted",
		EpochSeq:   2,
		Channel:    "ecs",
		OccurredAt: now,
	})

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.TenantID != tenantID {
		t.Fatalf("unexpected identity: %+v", record)
	}
	if record.UserID != uuid.Nil {
		t.Fatalf("expected nil user id, got %s", record.UserID)
	}
	if record.Verb != activity.VerbSlotInserted || record.ObjectType != activity.ObjectTypeSlot || record.ObjectID != "health/3" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "ecs" {
		t.Fatalf("expected channel ecs got %q", record.Channel)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["epoch_seq"] != uint64(2) || record.Data["tracker"] != "health" {
		t.Fatalf("expected metadata passthrough got %+v", record.Data)
	}
}

func TestHookNotifySkipsInvalidEvents(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})
	_ = hook.Notify(context.Background(), activity.BuildChangeEvent(activity.ChangeEventInput{Slot: 1, Change: "none"}))

	if len(sink.records) != 0 {
		t.Fatalf("expected no records, got %d", len(sink.records))
	}
}

func TestHookNotifyUsesClockForMissingTimestamp(t *testing.T) {
	sink := &recordingSink{}
	fixed := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	hook := usersink.Hook{Sink: sink, Now: func() time.Time { return fixed }}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbSlotRemoved,
		ObjectType: activity.ObjectTypeSlot,
		ObjectID:   "1",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if !sink.records[0].OccurredAt.Equal(fixed) {
		t.Fatalf("expected clock timestamp, got %v", sink.records[0].OccurredAt)
	}
}

func TestHookNotifyReturnsSinkError(t *testing.T) {
	boom := errors.New("sink down")
	hook := usersink.Hook{Sink: &recordingSink{err: boom}}
	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbSlotInserted,
		ObjectType: activity.ObjectTypeSlot,
		ObjectID:   "1",
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}
