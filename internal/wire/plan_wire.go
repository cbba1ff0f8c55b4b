package wire

import (
	"appointment-booking/internal/adaptor"
	"appointment-booking/internal/data/repository"
	"appointment-booking/pkg/middleware"
	"appointment-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePlan(
	r chi.Router,
	planHandler *adaptor.PlanHandler,
	scheduleHandler *adaptor.ScheduleHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// Plan management (creator-scoped)
		r.Post("/api/plans", planHandler.CreatePlan)
		r.Get("/api/plans", planHandler.ListPlans)
		r.Get("/api/plans/{id}", planHandler.GetPlan)
		r.Put("/api/plans/{id}", planHandler.UpdatePlan)
		r.Put("/api/plans/{id}/publish", planHandler.PublishPlan)
		r.Put("/api/plans/{id}/unpublish", planHandler.UnpublishPlan)
		r.Delete("/api/plans/{id}", planHandler.DeletePlan)

		// Recurrence rules
		r.Post("/api/plans/{id}/schedules", scheduleHandler.CreateSchedule)
		r.Get("/api/plans/{id}/schedules", scheduleHandler.ListSchedules)
		r.Put("/api/schedules/{id}/excludes", scheduleHandler.UpdateExcludes)
		r.Delete("/api/schedules/{id}", scheduleHandler.DeleteSchedule)

		// Materialized availability for a window
		r.Get("/api/plans/{id}/periods", planHandler.GetPlanPeriods)
	})
}
