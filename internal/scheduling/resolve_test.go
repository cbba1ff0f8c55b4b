package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"appointment-booking/internal/data/entity"
)

func testPeriod(start time.Time, d time.Duration) Period {
	return Period{ScheduleID: uuid.New(), StartedAt: start, EndedAt: start.Add(d)}
}

func TestResolve_ExcludedIsClosed(t *testing.T) {
	p := testPeriod(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), time.Hour)
	rule := PlanRule{Capacity: entity.UnlimitedCapacity, DefaultGateway: entity.GatewayJitsi}

	assert.Equal(t, StatusClosed, Resolve(p, uuid.New(), rule, nil, nil, true))
}

func TestResolve_ViewerAlreadyBooked(t *testing.T) {
	planID := uuid.New()
	p := testPeriod(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), time.Hour)
	meets := []MeetSnapshot{{
		ID:                uuid.New(),
		AppointmentPlanID: planID,
		ServiceID:         uuid.New(),
		StartedAt:         p.StartedAt,
		EndedAt:           p.EndedAt,
		ActiveMembers:     1,
		ViewerJoined:      true,
	}}
	rule := PlanRule{Capacity: 1, DefaultGateway: entity.GatewayJitsi}

	assert.Equal(t, StatusBooked, Resolve(p, planID, rule, meets, nil, false))
}

func TestResolve_CapacityMonotonicity(t *testing.T) {
	planID := uuid.New()
	p := testPeriod(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), time.Hour)
	rule := PlanRule{Capacity: 2, DefaultGateway: entity.GatewayJitsi}

	meetWith := func(members int) []MeetSnapshot {
		if members == 0 {
			return nil
		}
		return []MeetSnapshot{{
			ID:                uuid.New(),
			AppointmentPlanID: planID,
			ServiceID:         uuid.New(),
			StartedAt:         p.StartedAt,
			EndedAt:           p.EndedAt,
			ActiveMembers:     members,
		}}
	}

	assert.Equal(t, StatusBookable, Resolve(p, planID, rule, meetWith(0), nil, false))
	assert.Equal(t, StatusBookable, Resolve(p, planID, rule, meetWith(1), nil, false))
	assert.Equal(t, StatusMeetingFull, Resolve(p, planID, rule, meetWith(2), nil, false))

	unlimited := PlanRule{Capacity: entity.UnlimitedCapacity, DefaultGateway: entity.GatewayJitsi}
	assert.Equal(t, StatusBookable, Resolve(p, planID, unlimited, meetWith(50), nil, false))
}

func TestResolve_ZoomExclusivity(t *testing.T) {
	hostPlanA := uuid.New()
	hostPlanB := uuid.New()
	zoomSvc := uuid.New()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	// Plan A already holds a meet on the only zoom service for this window.
	occupied := []MeetSnapshot{{
		ID:                uuid.New(),
		AppointmentPlanID: hostPlanA,
		ServiceID:         zoomSvc,
		StartedAt:         start,
		EndedAt:           start.Add(time.Hour),
		ActiveMembers:     1,
	}}

	p := testPeriod(start.Add(30*time.Minute), time.Hour) // overlapping window, plan B
	rule := PlanRule{Capacity: entity.UnlimitedCapacity, DefaultGateway: entity.GatewayZoom}

	assert.Equal(t, StatusMeetingFull,
		Resolve(p, hostPlanB, rule, occupied, []uuid.UUID{zoomSvc}, false))

	// A second zoom service frees the slot.
	assert.Equal(t, StatusBookable,
		Resolve(p, hostPlanB, rule, occupied, []uuid.UUID{zoomSvc, uuid.New()}, false))
}

func TestResolve_NonExclusiveGatewaySkipsServiceContention(t *testing.T) {
	hostPlanA := uuid.New()
	hostPlanB := uuid.New()
	svc := uuid.New()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	occupied := []MeetSnapshot{{
		ID:                uuid.New(),
		AppointmentPlanID: hostPlanA,
		ServiceID:         svc,
		StartedAt:         start,
		EndedAt:           start.Add(time.Hour),
		ActiveMembers:     3,
	}}

	p := testPeriod(start, time.Hour)
	rule := PlanRule{Capacity: entity.UnlimitedCapacity, DefaultGateway: entity.GatewayJitsi}

	// Jitsi is not service-exclusive: overlap alone never blocks.
	assert.Equal(t, StatusBookable, Resolve(p, hostPlanB, rule, occupied, nil, false))
}

func TestResolve_ExistingMeetAttachIgnoresZoomPool(t *testing.T) {
	planID := uuid.New()
	zoomSvc := uuid.New()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	p := testPeriod(start, time.Hour)

	// The plan's own meet already holds the only zoom service; joining it
	// needs no fresh service, only seat capacity.
	meets := []MeetSnapshot{{
		ID:                uuid.New(),
		AppointmentPlanID: planID,
		ServiceID:         zoomSvc,
		StartedAt:         start,
		EndedAt:           start.Add(time.Hour),
		ActiveMembers:     1,
	}}
	rule := PlanRule{Capacity: 5, DefaultGateway: entity.GatewayZoom}

	assert.Equal(t, StatusBookable, Resolve(p, planID, rule, meets, []uuid.UUID{zoomSvc}, false))
}

func TestResolve_NonOverlappingMeetsIgnored(t *testing.T) {
	planID := uuid.New()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	p := testPeriod(start, time.Hour)

	// A meet ending exactly at the period start does not contend (half-open).
	meets := []MeetSnapshot{{
		ID:                uuid.New(),
		AppointmentPlanID: uuid.New(),
		ServiceID:         uuid.New(),
		StartedAt:         start.Add(-time.Hour),
		EndedAt:           start,
		ActiveMembers:     1,
	}}
	rule := PlanRule{Capacity: 1, DefaultGateway: entity.GatewayZoom}

	assert.Equal(t, StatusBookable, Resolve(p, planID, rule, meets, nil, false))
}
