package response

import (
	"time"

	"appointment-booking/internal/data/entity"
)

type BookingResponse struct {
	EnrollmentID   string    `json:"enrollment_id"`
	PlanID         string    `json:"plan_id"`
	MemberID       string    `json:"member_id"`
	MeetID         string    `json:"meet_id,omitempty"`
	Gateway        string    `json:"gateway,omitempty"`
	OrderProductID string    `json:"order_product_id"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func BookingToResponse(enrollment *entity.Enrollment, meet *entity.Meet, now time.Time) BookingResponse {
	resp := BookingResponse{
		EnrollmentID:   enrollment.ID.String(),
		PlanID:         enrollment.AppointmentPlanID.String(),
		MemberID:       enrollment.MemberID.String(),
		OrderProductID: enrollment.OrderProductID,
		StartedAt:      enrollment.StartedAt,
		EndedAt:        enrollment.EndedAt,
		Status:         string(enrollment.Status(now)),
		CreatedAt:      enrollment.CreatedAt,
	}
	if meet != nil {
		resp.MeetID = meet.ID.String()
		resp.Gateway = string(meet.Gateway)
	}
	return resp
}
