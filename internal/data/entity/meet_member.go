package entity

import (
	"time"

	"github.com/google/uuid"
)

// MeetMember joins a booking member to a meet. Cancellation and reschedule
// tombstone the row via DeletedAt instead of deleting history.
type MeetMember struct {
	BaseSimple
	MeetID    uuid.UUID  `db:"meet_id"`
	MemberID  uuid.UUID  `db:"member_id"`
	DeletedAt *time.Time `db:"deleted_at"`
}
