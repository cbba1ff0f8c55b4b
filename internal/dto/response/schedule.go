package response

import (
	"time"

	"appointment-booking/internal/data/entity"
)

type ScheduleResponse struct {
	ID             string      `json:"id"`
	PlanID         string      `json:"plan_id"`
	StartedAt      time.Time   `json:"started_at"`
	IntervalType   *string     `json:"interval_type,omitempty"`
	IntervalAmount *int        `json:"interval_amount,omitempty"`
	Excludes       []time.Time `json:"excludes,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

func ScheduleToResponse(schedule *entity.AppointmentSchedule) ScheduleResponse {
	resp := ScheduleResponse{
		ID:             schedule.ID.String(),
		PlanID:         schedule.AppointmentPlanID.String(),
		StartedAt:      schedule.StartedAt,
		IntervalAmount: schedule.IntervalAmount,
		Excludes:       schedule.Excludes,
		CreatedAt:      schedule.CreatedAt,
	}
	if schedule.IntervalType != nil {
		it := string(*schedule.IntervalType)
		resp.IntervalType = &it
	}
	return resp
}
