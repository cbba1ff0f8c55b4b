package entity

import (
	"time"

	"github.com/google/uuid"
)

type IntervalType string

const (
	IntervalDay   IntervalType = "day"
	IntervalWeek  IntervalType = "week"
	IntervalMonth IntervalType = "month"
	IntervalYear  IntervalType = "year"
)

// AppointmentSchedule is a recurrence rule: an anchor instant plus an
// optional repeat interval and a set of excluded instants. A schedule with
// no interval represents exactly one instance.
type AppointmentSchedule struct {
	BaseNoDelete
	AppointmentPlanID uuid.UUID     `db:"appointment_plan_id"`
	StartedAt         time.Time     `db:"started_at"`
	IntervalType      *IntervalType `db:"interval_type"`
	IntervalAmount    *int          `db:"interval_amount"`
	Excludes          []time.Time   `db:"excludes"`
}

// IsExcluded reports whether t matches an excluded instant exactly.
// Exclusion is exact-timestamp equality, not date-level.
func (s *AppointmentSchedule) IsExcluded(t time.Time) bool {
	for _, ex := range s.Excludes {
		if ex.Equal(t) {
			return true
		}
	}
	return false
}

// Step returns the effective interval amount (1 when unset).
func (s *AppointmentSchedule) Step() int {
	if s.IntervalAmount == nil || *s.IntervalAmount < 1 {
		return 1
	}
	return *s.IntervalAmount
}
