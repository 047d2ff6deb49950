package tracked

import (
	"time"

	"github.com/google/uuid"
)

// Epoch identifies the interval between two resets. Seq starts at 1 for a new
// tracker and increases by one per Reset.
type Epoch struct {
	ID        uuid.UUID `json:"id"`
	Seq       uint64    `json:"seq"`
	StartedAt time.Time `json:"started_at"`
}

func newEpoch(seq uint64, now func() time.Time) Epoch {
	return Epoch{
		ID:        uuid.New(),
		Seq:       seq,
		StartedAt: now(),
	}
}

func (e Epoch) next(now func() time.Time) Epoch {
	return newEpoch(e.Seq+1, now)
}
