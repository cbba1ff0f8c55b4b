package adaptor

import (
	"appointment-booking/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Plan       *PlanHandler
	Schedule   *ScheduleHandler
	Booking    *BookingHandler
	Enrollment *EnrollmentHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Plan:       NewPlanHandler(service.Plan, service.Availability, log),
		Schedule:   NewScheduleHandler(service.Schedule, log),
		Booking:    NewBookingHandler(service.Booking, log),
		Enrollment: NewEnrollmentHandler(service.Enrollment, log),
	}
}
