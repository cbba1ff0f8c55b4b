package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Period is one concrete bookable time window derived from a schedule.
// Periods are never persisted; identity is (ScheduleID, StartedAt).
type Period struct {
	ScheduleID uuid.UUID
	StartedAt  time.Time
	EndedAt    time.Time
}

// Overlaps reports whether the period intersects the half-open window
// [start, end).
func (p Period) Overlaps(start, end time.Time) bool {
	return p.StartedAt.Before(end) && start.Before(p.EndedAt)
}
