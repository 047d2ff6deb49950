package usersink

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-tracked/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook forwards slot change events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
	// Now defaults the timestamp of events that carry none.
	Now func() time.Time
}

// Notify maps the event into an ActivityRecord and logs it with the sink.
// Identity fields that are not UUIDs map to uuid.Nil.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}

	normalized := activity.NormalizeEvent(event)
	if !normalized.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event.OccurredAt.IsZero() && h.Now != nil {
		normalized.OccurredAt = h.Now()
	}

	record := usertypes.ActivityRecord{
		ActorID:    parseUUID(normalized.ActorID),
		UserID:     parseUUID(normalized.UserID),
		TenantID:   parseUUID(normalized.TenantID),
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		Data:       normalized.Metadata,
		OccurredAt: normalized.OccurredAt,
	}
	return h.Sink.Log(ctx, record)
}

func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil
	}
	return id
}
