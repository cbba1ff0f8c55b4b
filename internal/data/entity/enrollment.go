package entity

import (
	"time"

	"github.com/google/uuid"
)

type EnrollmentStatus string

const (
	EnrollmentScheduled EnrollmentStatus = "scheduled"
	EnrollmentCanceled  EnrollmentStatus = "canceled"
	EnrollmentFinished  EnrollmentStatus = "finished"
)

// Enrollment is the durable booking record. It survives reschedules: the
// meet/meet-member pairing is replaced while the enrollment id and
// order_product_id persist.
type Enrollment struct {
	BaseNoDelete
	AppointmentPlanID uuid.UUID  `db:"appointment_plan_id"`
	MemberID          uuid.UUID  `db:"member_id"`
	StartedAt         time.Time  `db:"started_at"`
	EndedAt           time.Time  `db:"ended_at"`
	CanceledAt        *time.Time `db:"canceled_at"`
	CanceledReason    *string    `db:"canceled_reason"`
	OrderProductID    string     `db:"order_product_id"`
	Issue             *string    `db:"issue"`
	Result            *string    `db:"result"`
}

// Status derives the lifecycle bucket at read time. Finished is computed
// from the clock, never stored, so clock skew cannot leave a stale state.
func (e *Enrollment) Status(now time.Time) EnrollmentStatus {
	if e.CanceledAt != nil {
		return EnrollmentCanceled
	}
	if !now.Before(e.EndedAt) {
		return EnrollmentFinished
	}
	return EnrollmentScheduled
}

func (e *Enrollment) IsFinished(now time.Time) bool {
	return !now.Before(e.EndedAt)
}
