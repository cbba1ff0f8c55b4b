package scheduling

import (
	"time"

	"appointment-booking/internal/data/entity"
)

// Safety cap so a bad rule can never spin the request. Generous enough for
// a daily rule over a multi-year window.
const maxInstancesPerSchedule = 5000

// Expand materializes the bookable instances of schedule within the
// half-open window [windowStart, windowEnd). It is a pure function of its
// inputs: calling it twice with identical arguments yields identical output.
//
// A schedule without an interval yields a single instance at its anchor.
// Otherwise instances step forward from the anchor by intervalAmount units.
// Month and year steps preserve the anchor's day-of-month, clamping to the
// last valid day when the target month is shorter (Jan 31 -> Feb 28 -> Mar
// 31). Instants that exactly match an excluded timestamp are omitted.
//
// The horizon is entirely caller-supplied; there is no default window.
func Expand(schedule *entity.AppointmentSchedule, duration time.Duration, windowStart, windowEnd time.Time) []Period {
	if schedule == nil || !windowEnd.After(windowStart) {
		return nil
	}

	if schedule.IntervalType == nil {
		t := schedule.StartedAt
		if t.Before(windowStart) || !t.Before(windowEnd) || schedule.IsExcluded(t) {
			return nil
		}
		return []Period{{ScheduleID: schedule.ID, StartedAt: t, EndedAt: t.Add(duration)}}
	}

	anchor := schedule.StartedAt
	step := schedule.Step()

	var periods []Period
	i := firstStepIndex(anchor, windowStart, *schedule.IntervalType, step)
	for scanned := 0; scanned < maxInstancesPerSchedule; i, scanned = i+1, scanned+1 {
		t := stepFrom(anchor, *schedule.IntervalType, step*i)
		if !t.Before(windowEnd) {
			break
		}
		if t.Before(windowStart) {
			continue
		}
		if schedule.IsExcluded(t) {
			continue
		}
		periods = append(periods, Period{ScheduleID: schedule.ID, StartedAt: t, EndedAt: t.Add(duration)})
	}
	return periods
}

// firstStepIndex fast-forwards day/week intervals close to the first step
// index at or after windowStart, backing off two steps so DST-length days
// cannot overshoot. Month/year steps vary in length, so those start at zero
// and let the loop skip.
func firstStepIndex(anchor, windowStart time.Time, unit entity.IntervalType, step int) int {
	if windowStart.Before(anchor) || step < 1 {
		return 0
	}

	var unitLen time.Duration
	switch unit {
	case entity.IntervalDay:
		unitLen = 24 * time.Hour
	case entity.IntervalWeek:
		unitLen = 7 * 24 * time.Hour
	default:
		return 0
	}

	i := int(windowStart.Sub(anchor)/(unitLen*time.Duration(step))) - 2
	if i < 0 {
		return 0
	}
	return i
}

// stepFrom computes the instance n units after the anchor. Stepping is
// always computed from the anchor, not from the previous instance, so a
// clamped month (Jan 31 -> Feb 28) does not drift the rest of the series.
func stepFrom(anchor time.Time, unit entity.IntervalType, n int) time.Time {
	switch unit {
	case entity.IntervalDay:
		return anchor.AddDate(0, 0, n)
	case entity.IntervalWeek:
		return anchor.AddDate(0, 0, 7*n)
	case entity.IntervalMonth:
		return addMonthsClamped(anchor, n)
	case entity.IntervalYear:
		return addMonthsClamped(anchor, 12*n)
	default:
		return anchor
	}
}

// addMonthsClamped adds months while keeping the anchor's day-of-month,
// clamping to the target month's last day. time.AddDate normalizes overflow
// (Jan 31 + 1 month = Mar 2/3), which is not what the booking rules want.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	firstOfTarget := time.Date(y, m, 1, hh, mm, ss, t.Nanosecond(), t.Location()).AddDate(0, months, 0)
	last := daysInMonth(firstOfTarget.Year(), firstOfTarget.Month())
	if d > last {
		d = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
