package tracked

import (
	"reflect"
	"time"

	"github.com/goliatone/go-tracked/internal/deepcopy"
	"github.com/goliatone/go-tracked/pkg/activity"
	"github.com/goliatone/go-tracked/pkg/slots"
)

// CleanPolicy decides what Clean does to the change log of reclaimed slots.
type CleanPolicy uint8

const (
	// CleanDeferLog drops reclaimed ids from the dirty set but keeps their log
	// entries until the next Reset. Inserting a reclaimed id again in the same
	// epoch merges with the kept entry, so an id reclaimed while inserted
	// panics on reinsertion.
	CleanDeferLog CleanPolicy = iota
	// CleanForgetLog also resets the log entries of reclaimed ids to
	// ChangeNone immediately. Use it when ids are recycled within an epoch.
	CleanForgetLog
)

func (p CleanPolicy) String() string {
	switch p {
	case CleanDeferLog:
		return "defer-log"
	case CleanForgetLog:
		return "forget-log"
	default:
		return "unknown"
	}
}

// Option configures a Tracked store.
type Option[T any] func(*config[T])

type config[T any] struct {
	name          string
	equal         func(a, b T) bool
	clone         func(T) T
	logger        OperationLogger
	cleanPolicy   CleanPolicy
	activityHooks activity.Hooks
	activity      activity.Config
	snapshot      slots.Factory[T]
	now           func() time.Time
}

func applyOptions[T any](opts []Option[T]) config[T] {
	cfg := config[T]{
		clone:  deepcopy.Clone[T],
		logger: noopOperationLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithName labels the tracker in logs, activity events and metrics.
func WithName[T any](name string) Option[T] {
	return func(cfg *config[T]) {
		cfg.name = name
	}
}

// WithEqual enables modification detection using equal.
func WithEqual[T any](equal func(a, b T) bool) Option[T] {
	return func(cfg *config[T]) {
		cfg.equal = equal
	}
}

// WithDeepEqual enables modification detection using reflect.DeepEqual, for
// value types that are not comparable with ==.
func WithDeepEqual[T any]() Option[T] {
	return func(cfg *config[T]) {
		cfg.equal = func(a, b T) bool {
			return reflect.DeepEqual(a, b)
		}
	}
}

// WithCloner replaces the reflection based deep copy used for snapshots.
// clone must return a value that shares no mutable state with its input.
func WithCloner[T any](clone func(T) T) Option[T] {
	return func(cfg *config[T]) {
		if clone == nil {
			cfg.clone = deepcopy.Clone[T]
			return
		}
		cfg.clone = clone
	}
}

// WithLogger attaches an operation logger.
func WithLogger[T any](logger OperationLogger) Option[T] {
	return func(cfg *config[T]) {
		if logger == nil {
			cfg.logger = noopOperationLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithCleanPolicy selects how Clean treats the log entries of reclaimed ids.
func WithCleanPolicy[T any](policy CleanPolicy) Option[T] {
	return func(cfg *config[T]) {
		cfg.cleanPolicy = policy
	}
}

// WithActivityHooks attaches hooks used by Publish. Nil hooks are dropped.
func WithActivityHooks[T any](hooks activity.Hooks) Option[T] {
	normalized := activity.CompactHooks(hooks)
	return func(cfg *config[T]) {
		cfg.activityHooks = normalized
	}
}

// WithActivityChannel sets the channel stamped on published activity events.
func WithActivityChannel[T any](channel string) Option[T] {
	return func(cfg *config[T]) {
		cfg.activity.Channel = channel
	}
}

// WithActivityIdentity sets the actor and tenant stamped on published
// activity events.
func WithActivityIdentity[T any](actorID, tenantID string) Option[T] {
	return func(cfg *config[T]) {
		cfg.activity.ActorID = actorID
		cfg.activity.TenantID = tenantID
	}
}

// WithSnapshotBackend selects the backend layout for snapshots. By default
// snapshots use the same layout as the live backend when it is one of the
// slots package stores, and a DenseStore otherwise.
func WithSnapshotBackend[T any](factory slots.Factory[T]) Option[T] {
	return func(cfg *config[T]) {
		cfg.snapshot = factory
	}
}

// WithClock overrides the time source used for epochs and durations.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(cfg *config[T]) {
		if now == nil {
			cfg.now = time.Now
			return
		}
		cfg.now = now
	}
}
