package tracked

import (
	"time"

	"github.com/google/uuid"
)

// OperationLogEvent describes one maintenance-level operation for logging.
// Structural operations are not logged; they run per slot and are hot.
type OperationLogEvent struct {
	Op       string
	Tracker  string
	Epoch    uuid.UUID
	EpochSeq uint64
	Scanned  int
	Changed  int
	Duration time.Duration
	Err      error
}

// OperationLogger records tracker operations.
type OperationLogger interface {
	LogOperation(OperationLogEvent)
}

// OperationLoggerFunc adapts a function to OperationLogger.
type OperationLoggerFunc func(OperationLogEvent)

// LogOperation implements OperationLogger.
func (f OperationLoggerFunc) LogOperation(event OperationLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopOperationLogger struct{}

func (noopOperationLogger) LogOperation(OperationLogEvent) {}
