package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"k": "v"}
	evt := Event{
		Verb:       " slot.inserted ",
		ActorID:    " actor ",
		UserID:     " user ",
		TenantID:   " tenant ",
		ObjectType: " tracked.slot ",
		ObjectID:   " 42 ",
		Channel:    " tracked ",
		Metadata:   meta,
	}

	got := NormalizeEvent(evt)

	if got.Verb != "slot.inserted" || got.ObjectType != "tracked.slot" || got.ObjectID != "42" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.ActorID != "actor" || got.UserID != "user" || got.TenantID != "tenant" || got.Channel != "tracked" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	got.Metadata["k"] = "changed"
	if evt.Metadata["k"] != "v" {
		t.Fatalf("expected original metadata untouched: %+v", evt.Metadata)
	}
}

func TestHooksNotifyShortCircuitsMissingRequired(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}
	if err := hooks.Notify(context.Background(), Event{Verb: "slot.removed"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Events))
	}
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	capture := &CaptureHook{}
	boom1 := errors.New("boom1")
	boom2 := errors.New("boom2")
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, event Event) error {
			if ctx != nil {
				ctxSeen = true
			}
			return nil
		}),
		capture,
		HookFunc(func(_ context.Context, _ Event) error { return boom1 }),
		nil,
		HookFunc(func(_ context.Context, _ Event) error { return boom2 }),
	}

	err := hooks.Notify(nil, Event{Verb: "slot.modified", ObjectType: "tracked.slot", ObjectID: "1"})
	if !errors.Is(err, boom1) || !errors.Is(err, boom2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !ctxSeen {
		t.Fatalf("expected context fallback to be non-nil")
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected event to be captured once, got %d", len(capture.Events))
	}
}

func TestHooksNotifyAllStopsOnCancelledContext(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := hooks.NotifyAll(ctx, []Event{
		{Verb: "slot.inserted", ObjectType: "tracked.slot", ObjectID: "1"},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected nothing delivered, got %d", len(capture.Events))
	}
}

func TestEmitterDisabledAndEnabled(t *testing.T) {
	capture := &CaptureHook{}
	event := Event{Verb: "slot.inserted", ObjectType: "tracked.slot", ObjectID: "1"}

	disabled := NewEmitter(Hooks{capture}, Config{Enabled: false})
	if disabled.Enabled() {
		t.Fatalf("expected emitter to be disabled")
	}
	if err := disabled.EmitAll(context.Background(), []Event{event}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured when disabled")
	}

	enabled := NewEmitter(Hooks{capture}, Config{Enabled: true, TenantID: "acme"})
	if !enabled.Enabled() {
		t.Fatalf("expected emitter to be enabled")
	}
	if err := enabled.EmitAll(context.Background(), []Event{event}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected one event captured, got %d", len(capture.Events))
	}
	if capture.Events[0].Channel != DefaultChannel {
		t.Fatalf("expected default channel applied, got %q", capture.Events[0].Channel)
	}
	if capture.Events[0].TenantID != "acme" {
		t.Fatalf("expected default tenant applied, got %q", capture.Events[0].TenantID)
	}
}

func TestEmitterPreservesExplicitFields(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "default", ActorID: "system"})
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := emitter.EmitAll(context.Background(), []Event{{
		Verb:       "slot.removed",
		ActorID:    "alice",
		ObjectType: "tracked.slot",
		ObjectID:   "1",
		Channel:    "custom",
		OccurredAt: at,
	}})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	got := capture.Events[0]
	if got.Channel != "custom" || got.ActorID != "alice" {
		t.Fatalf("expected explicit fields preserved, got %+v", got)
	}
	if !got.OccurredAt.Equal(at) {
		t.Fatalf("expected occurred_at preserved, got %v", got.OccurredAt)
	}
}

func TestCompactHooksDropsNil(t *testing.T) {
	if got := CompactHooks(Hooks{nil, nil}); got != nil {
		t.Fatalf("expected nil hooks, got %v", got)
	}
	if got := CompactHooks(Hooks{nil, &CaptureHook{}}); len(got) != 1 {
		t.Fatalf("expected one hook, got %d", len(got))
	}
}
