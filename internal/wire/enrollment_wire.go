package wire

import (
	"appointment-booking/internal/adaptor"
	"appointment-booking/internal/data/repository"
	"appointment-booking/pkg/middleware"
	"appointment-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireEnrollment(
	r chi.Router,
	enrollmentHandler *adaptor.EnrollmentHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// GET /api/enrollments - bucketed, cursor-paged booking listings
		r.Get("/api/enrollments", enrollmentHandler.ListEnrollments)
	})
}
