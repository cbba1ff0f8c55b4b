// internal/wire/wire.go
package wire

import (
	"net/http"

	"appointment-booking/internal/adaptor"
	"appointment-booking/internal/data/repository"
	"appointment-booking/internal/notify"
	"appointment-booking/internal/payment"
	"appointment-booking/internal/usecase"
	"appointment-booking/pkg/cache"
	"appointment-booking/pkg/middleware"
	"appointment-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type App struct {
	Router *chi.Mux
}

// Wiring assembles services, handlers and routes.
func Wiring(repo *repository.Repository, config *utils.Config, checkout payment.Checkout, events notify.Publisher, c *cache.Cache, logger *zap.Logger) *App {
	service := usecase.NewService(repo, config, checkout, events, c, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Apply routes
	wirePlan(r, handler.Plan, handler.Schedule, repo, config, logger)
	wireBooking(r, handler.Booking, repo, config, logger)
	wireEnrollment(r, handler.Enrollment, repo, config, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
