package scheduling

import (
	"time"

	"github.com/google/uuid"

	"appointment-booking/internal/data/entity"
)

// Status is the bookability of one period for one viewer.
type Status string

const (
	StatusBookable    Status = "bookable"
	StatusBooked      Status = "booked"
	StatusClosed      Status = "closed"
	StatusMeetingFull Status = "meeting_full"
)

// PlanRule is the slice of plan state the resolver needs.
type PlanRule struct {
	Capacity       int // entity.UnlimitedCapacity = no limit
	DefaultGateway entity.Gateway
}

// MeetSnapshot is a host meet overlapping the resolved window, as captured
// by the caller at decision time. The resolver performs no I/O.
type MeetSnapshot struct {
	ID                uuid.UUID
	AppointmentPlanID uuid.UUID
	ServiceID         uuid.UUID
	StartedAt         time.Time
	EndedAt           time.Time
	ActiveMembers     int  // non-deleted meet members
	ViewerJoined      bool // viewer has a non-deleted membership
}

func (m MeetSnapshot) overlaps(start, end time.Time) bool {
	return m.StartedAt.Before(end) && start.Before(m.EndedAt)
}

// samePeriod reports whether the meet is the room for exactly this period
// of this plan.
func samePeriod(m MeetSnapshot, planID uuid.UUID, p Period) bool {
	return m.AppointmentPlanID == planID && m.StartedAt.Equal(p.StartedAt)
}

// Resolve decides whether period is currently bookable for the viewer whose
// memberships are reflected in meets. meets must hold the host's non-deleted
// meets overlapping the period's window; zoomServiceIDs is the tenant's pool
// of zoom service accounts.
//
// Decision order, first match wins:
//  1. excluded instant                                  -> closed
//  2. viewer already attends the meet for this period   -> booked
//  3. contention from other host meets; a zoom plan with no free zoom
//     service left                                      -> meeting_full
//  4. attendee capacity of the existing meet exhausted  -> meeting_full
//  5. otherwise                                         -> bookable
//
// Zoom rooms are a scarce per-account resource: two concurrent zoom sessions
// for the same host need two distinct service accounts, so service
// exclusivity is checked before attendee capacity. Non-exclusive gateways
// never check service-level contention.
func Resolve(period Period, planID uuid.UUID, rule PlanRule, meets []MeetSnapshot, zoomServiceIDs []uuid.UUID, excluded bool) Status {
	if excluded {
		return StatusClosed
	}

	var exact *MeetSnapshot
	var others []MeetSnapshot
	for i := range meets {
		m := meets[i]
		if !m.overlaps(period.StartedAt, period.EndedAt) {
			continue
		}
		if samePeriod(m, planID, period) {
			if m.ViewerJoined {
				return StatusBooked
			}
			exact = &meets[i]
			continue
		}
		others = append(others, m)
	}

	if len(others) > 0 && rule.DefaultGateway.Exclusive() && exact == nil {
		used := make(map[uuid.UUID]struct{}, len(others))
		for _, m := range others {
			used[m.ServiceID] = struct{}{}
		}
		free := false
		for _, id := range zoomServiceIDs {
			if _, taken := used[id]; !taken {
				free = true
				break
			}
		}
		if !free {
			return StatusMeetingFull
		}
	}

	if rule.Capacity != entity.UnlimitedCapacity && exact != nil && exact.ActiveMembers >= rule.Capacity {
		return StatusMeetingFull
	}

	return StatusBookable
}
