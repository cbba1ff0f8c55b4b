package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appointment-booking/internal/data/entity"
)

func weeklySchedule(anchor time.Time, excludes ...time.Time) *entity.AppointmentSchedule {
	it := entity.IntervalWeek
	return &entity.AppointmentSchedule{
		BaseNoDelete:      entity.BaseNoDelete{ID: uuid.New()},
		AppointmentPlanID: uuid.New(),
		StartedAt:         anchor,
		IntervalType:      &it,
		Excludes:          excludes,
	}
}

func TestExpand_WeeklyFourWeeks(t *testing.T) {
	anchor := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	sch := weeklySchedule(anchor)

	periods := Expand(sch, 30*time.Minute, anchor, anchor.AddDate(0, 0, 28))
	require.Len(t, periods, 4)
	for i, p := range periods {
		assert.True(t, p.StartedAt.Equal(anchor.AddDate(0, 0, 7*i)), "instance %d", i)
		assert.True(t, p.EndedAt.Equal(p.StartedAt.Add(30*time.Minute)))
		assert.Equal(t, sch.ID, p.ScheduleID)
	}
}

func TestExpand_ExcludeRemovesExactInstance(t *testing.T) {
	anchor := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	sch := weeklySchedule(anchor, anchor.AddDate(0, 0, 14))

	periods := Expand(sch, 30*time.Minute, anchor, anchor.AddDate(0, 0, 28))
	require.Len(t, periods, 3)
	for _, p := range periods {
		assert.False(t, p.StartedAt.Equal(anchor.AddDate(0, 0, 14)))
	}
}

func TestExpand_ExclusionIsExactTimestamp(t *testing.T) {
	anchor := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	// One second off the generated instant must not exclude it.
	sch := weeklySchedule(anchor, anchor.AddDate(0, 0, 14).Add(time.Second))

	periods := Expand(sch, 30*time.Minute, anchor, anchor.AddDate(0, 0, 28))
	assert.Len(t, periods, 4)
}

func TestExpand_Idempotent(t *testing.T) {
	anchor := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	sch := weeklySchedule(anchor, anchor.AddDate(0, 0, 7))

	a := Expand(sch, time.Hour, anchor, anchor.AddDate(0, 0, 28))
	b := Expand(sch, time.Hour, anchor, anchor.AddDate(0, 0, 28))
	assert.Equal(t, a, b)
}

func TestExpand_WindowIsHalfOpen(t *testing.T) {
	anchor := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	sch := weeklySchedule(anchor)

	// windowEnd lands exactly on the third instance; it must be excluded.
	periods := Expand(sch, time.Hour, anchor, anchor.AddDate(0, 0, 14))
	require.Len(t, periods, 2)

	// windowStart is inclusive.
	periods = Expand(sch, time.Hour, anchor.AddDate(0, 0, 7), anchor.AddDate(0, 0, 28))
	require.Len(t, periods, 3)
	assert.True(t, periods[0].StartedAt.Equal(anchor.AddDate(0, 0, 7)))
}

func TestExpand_SingleInstance(t *testing.T) {
	anchor := time.Date(2026, 5, 20, 14, 0, 0, 0, time.UTC)
	sch := &entity.AppointmentSchedule{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
		StartedAt:    anchor,
	}

	periods := Expand(sch, time.Hour, anchor.AddDate(0, 0, -7), anchor.AddDate(0, 0, 7))
	require.Len(t, periods, 1)
	assert.True(t, periods[0].StartedAt.Equal(anchor))

	// Outside the window: nothing.
	assert.Empty(t, Expand(sch, time.Hour, anchor.Add(time.Second), anchor.AddDate(0, 0, 7)))

	// Excluded single instance: nothing.
	sch.Excludes = []time.Time{anchor}
	assert.Empty(t, Expand(sch, time.Hour, anchor.AddDate(0, 0, -7), anchor.AddDate(0, 0, 7)))
}

func TestExpand_MonthlyClampsShortMonths(t *testing.T) {
	anchor := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)
	it := entity.IntervalMonth
	sch := &entity.AppointmentSchedule{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
		StartedAt:    anchor,
		IntervalType: &it,
	}

	periods := Expand(sch, time.Hour, anchor, anchor.AddDate(0, 4, 0).Add(time.Hour))
	require.Len(t, periods, 5)
	assert.True(t, periods[1].StartedAt.Equal(time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC)))
	// Clamping must not drift later instances off the anchor day.
	assert.True(t, periods[2].StartedAt.Equal(time.Date(2026, 3, 31, 9, 0, 0, 0, time.UTC)))
	assert.True(t, periods[3].StartedAt.Equal(time.Date(2026, 4, 30, 9, 0, 0, 0, time.UTC)))
	assert.True(t, periods[4].StartedAt.Equal(time.Date(2026, 5, 31, 9, 0, 0, 0, time.UTC)))
}

func TestExpand_YearlyLeapDayClamps(t *testing.T) {
	anchor := time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC)
	it := entity.IntervalYear
	sch := &entity.AppointmentSchedule{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
		StartedAt:    anchor,
		IntervalType: &it,
	}

	periods := Expand(sch, time.Hour, anchor, anchor.AddDate(1, 6, 0))
	require.Len(t, periods, 2)
	assert.True(t, periods[1].StartedAt.Equal(time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC)))
}

func TestExpand_IntervalAmountGreaterThanOne(t *testing.T) {
	anchor := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	it := entity.IntervalWeek
	amount := 2
	sch := &entity.AppointmentSchedule{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
		StartedAt:    anchor,
		IntervalType: &it,
		IntervalAmount: &amount,
	}

	periods := Expand(sch, time.Hour, anchor, anchor.AddDate(0, 0, 28))
	require.Len(t, periods, 2)
	assert.True(t, periods[1].StartedAt.Equal(anchor.AddDate(0, 0, 14)))
}

func TestExpand_WindowStartAfterAnchorKeepsPhase(t *testing.T) {
	anchor := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	sch := weeklySchedule(anchor)

	// Window opens mid-series; instances stay aligned to the anchor.
	ws := anchor.AddDate(0, 0, 10)
	periods := Expand(sch, time.Hour, ws, ws.AddDate(0, 0, 14))
	require.Len(t, periods, 2)
	assert.True(t, periods[0].StartedAt.Equal(anchor.AddDate(0, 0, 14)))
	assert.True(t, periods[1].StartedAt.Equal(anchor.AddDate(0, 0, 21)))
}
