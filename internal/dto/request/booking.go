package request

type CreateBookingRequest struct {
	PlanID     string `json:"plan_id" validate:"required,uuid4"`
	ScheduleID string `json:"schedule_id" validate:"required,uuid4"`
	StartedAt  string `json:"started_at" validate:"required"`
}

// EnsureEnrollmentRequest retries the post-payment commit for an order that
// paid but never got its enrollment written.
type EnsureEnrollmentRequest struct {
	OrderProductID string `json:"order_product_id" validate:"required"`
	PlanID         string `json:"plan_id" validate:"required,uuid4"`
	ScheduleID     string `json:"schedule_id" validate:"required,uuid4"`
	StartedAt      string `json:"started_at" validate:"required"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

type RescheduleBookingRequest struct {
	ScheduleID string `json:"schedule_id" validate:"required,uuid4"`
	StartedAt  string `json:"started_at" validate:"required"`
}
