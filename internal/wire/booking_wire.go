package wire

import (
	"appointment-booking/internal/adaptor"
	"appointment-booking/internal/data/repository"
	"appointment-booking/pkg/middleware"
	"appointment-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// POST /api/bookings - resolve, pay and commit one period
		r.Post("/api/bookings", bookingHandler.CreateBooking)

		// POST /api/bookings/ensure - reconcile a paid but uncommitted order
		r.Post("/api/bookings/ensure", bookingHandler.EnsureEnrollment)

		// PUT /api/bookings/{id}/cancel - soft-cancel an enrollment
		r.Put("/api/bookings/{id}/cancel", bookingHandler.CancelBooking)

		// PUT /api/bookings/{id}/reschedule - move an enrollment to a new period
		r.Put("/api/bookings/{id}/reschedule", bookingHandler.RescheduleBooking)
	})
}
