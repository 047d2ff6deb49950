package activity

import (
	"context"
	"strings"
)

// DefaultChannel is stamped on events that do not name a channel.
const DefaultChannel = "tracked"

// Config controls emission defaults.
type Config struct {
	Enabled bool
	Channel string
	ActorID string
	// TenantID is applied to events that carry none.
	TenantID string
}

// Emitter fans out events to hooks while applying defaults.
type Emitter struct {
	hooks    Hooks
	enabled  bool
	channel  string
	actorID  string
	tenantID string
}

// NewEmitter constructs an emitter from hooks and configuration.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	normalizedHooks := CompactHooks(hooks)
	return &Emitter{
		hooks:    normalizedHooks,
		enabled:  cfg.Enabled && len(normalizedHooks) > 0,
		channel:  channel,
		actorID:  strings.TrimSpace(cfg.ActorID),
		tenantID: strings.TrimSpace(cfg.TenantID),
	}
}

// Enabled reports whether emissions should be attempted.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled && len(e.hooks) > 0
}

// EmitAll forwards events in order after applying defaults to each.
func (e *Emitter) EmitAll(ctx context.Context, events []Event) error {
	if !e.Enabled() || len(events) == 0 {
		return nil
	}
	stamped := make([]Event, len(events))
	for i, event := range events {
		stamped[i] = e.withDefaults(event)
	}
	return e.hooks.NotifyAll(ctx, stamped)
}

func (e *Emitter) withDefaults(event Event) Event {
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	if strings.TrimSpace(event.ActorID) == "" {
		event.ActorID = e.actorID
	}
	if strings.TrimSpace(event.TenantID) == "" {
		event.TenantID = e.tenantID
	}
	return event
}

// CompactHooks returns hooks without nil entries, or nil when none remain.
func CompactHooks(hooks Hooks) Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return Hooks(normalized)
}
