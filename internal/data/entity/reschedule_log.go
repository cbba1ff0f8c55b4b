package entity

import (
	"time"

	"github.com/google/uuid"
)

// RescheduleLog records one old-window/new-window move of an enrollment.
// Written in the same transaction as the pairing swap.
type RescheduleLog struct {
	BaseSimple
	EnrollmentID uuid.UUID `db:"enrollment_id"`
	OldStartedAt time.Time `db:"old_started_at"`
	OldEndedAt   time.Time `db:"old_ended_at"`
	NewStartedAt time.Time `db:"new_started_at"`
	NewEndedAt   time.Time `db:"new_ended_at"`
}
