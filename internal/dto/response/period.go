package response

import "time"

// PeriodResponse is one materialized availability slot annotated with its
// bookability for the requesting viewer.
type PeriodResponse struct {
	ScheduleID string    `json:"schedule_id"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	Status     string    `json:"status"`
}
