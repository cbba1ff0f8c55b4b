package entity

import (
	"time"

	"github.com/google/uuid"
)

// Meet is a videoconference room bound to a specific service account and
// time window. The gateway is denormalized from the service so the storage
// layer can scope the exclusive-gateway constraint to zoom meets.
type Meet struct {
	Base
	AppointmentPlanID uuid.UUID `db:"appointment_plan_id"`
	HostMemberID      uuid.UUID `db:"host_member_id"`
	ServiceID         uuid.UUID `db:"service_id"`
	Gateway           Gateway   `db:"gateway"`
	StartedAt         time.Time `db:"started_at"`
	EndedAt           time.Time `db:"ended_at"`
}

// Overlaps reports whether the meet's window intersects [start, end).
func (m *Meet) Overlaps(start, end time.Time) bool {
	return m.StartedAt.Before(end) && start.Before(m.EndedAt)
}
