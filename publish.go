package tracked

import (
	"context"

	"github.com/goliatone/go-tracked/pkg/activity"
)

// ActivityEvents builds one activity event per entry of Events, stamped with
// the tracker name and the current epoch.
func (t *Tracked[T]) ActivityEvents() []activity.Event {
	now := t.cfg.now()
	var events []activity.Event
	for id, change := range t.log.Events() {
		events = append(events, activity.BuildChangeEvent(activity.ChangeEventInput{
			Tracker:    t.cfg.name,
			Slot:       id,
			Change:     change.String(),
			EpochID:    t.epoch.ID.String(),
			EpochSeq:   t.epoch.Seq,
			OccurredAt: now,
		}))
	}
	return events
}

// Publish forwards the current events to the hooks set with
// WithActivityHooks and returns how many were sent. It reads the log without
// consuming it, so publishing twice in one epoch sends the same events twice.
// Hook failures are joined into the returned error; delivery continues past
// them.
func (t *Tracked[T]) Publish(ctx context.Context) (int, error) {
	start := t.cfg.now()
	emitter := t.emitter()
	if !emitter.Enabled() {
		return 0, nil
	}
	events := t.ActivityEvents()
	err := emitter.EmitAll(ctx, events)
	t.logOperation("publish", len(events), len(events), start, err)
	return len(events), err
}

// ActivityHooks returns a copy of the configured hooks.
func (t *Tracked[T]) ActivityHooks() activity.Hooks {
	return activity.CompactHooks(t.cfg.activityHooks)
}

func (t *Tracked[T]) emitter() *activity.Emitter {
	cfg := t.cfg.activity
	cfg.Enabled = true
	return activity.NewEmitter(t.cfg.activityHooks, cfg)
}
