package response

import (
	"time"

	"appointment-booking/internal/data/entity"
)

type EnrollmentResponse struct {
	ID             string     `json:"id"`
	PlanID         string     `json:"plan_id"`
	MemberID       string     `json:"member_id"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        time.Time  `json:"ended_at"`
	Status         string     `json:"status"`
	CanceledAt     *time.Time `json:"canceled_at,omitempty"`
	CanceledReason *string    `json:"canceled_reason,omitempty"`
	OrderProductID string     `json:"order_product_id"`
	Issue          *string    `json:"issue,omitempty"`
	Result         *string    `json:"result,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// EnrollmentListResponse carries one page plus the cursor for the next one.
// NextCursor is empty when the page was not full.
type EnrollmentListResponse struct {
	Enrollments []EnrollmentResponse `json:"enrollments"`
	NextCursor  string               `json:"next_cursor,omitempty"`
}

func EnrollmentToResponse(enrollment *entity.Enrollment, now time.Time) EnrollmentResponse {
	return EnrollmentResponse{
		ID:             enrollment.ID.String(),
		PlanID:         enrollment.AppointmentPlanID.String(),
		MemberID:       enrollment.MemberID.String(),
		StartedAt:      enrollment.StartedAt,
		EndedAt:        enrollment.EndedAt,
		Status:         string(enrollment.Status(now)),
		CanceledAt:     enrollment.CanceledAt,
		CanceledReason: enrollment.CanceledReason,
		OrderProductID: enrollment.OrderProductID,
		Issue:          enrollment.Issue,
		Result:         enrollment.Result,
		CreatedAt:      enrollment.CreatedAt,
	}
}
