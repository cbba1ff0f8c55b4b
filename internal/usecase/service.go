package usecase

import (
	"appointment-booking/internal/data/repository"
	"appointment-booking/internal/notify"
	"appointment-booking/internal/payment"
	"appointment-booking/pkg/cache"
	"appointment-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Plan         PlanService
	Schedule     ScheduleService
	Availability AvailabilityService
	Booking      BookingService
	Enrollment   EnrollmentService
}

func NewService(repo *repository.Repository, config *utils.Config, checkout payment.Checkout, events notify.Publisher, c *cache.Cache, log *zap.Logger) *Service {
	availability := NewAvailabilityService(repo, config, c, log)

	return &Service{
		Plan:         NewPlanService(repo, config, log),
		Schedule:     NewScheduleService(repo, log),
		Availability: availability,
		Booking:      NewBookingService(repo, config, availability, checkout, events, log),
		Enrollment:   NewEnrollmentService(repo, log),
	}
}
