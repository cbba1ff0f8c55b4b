package adaptor

import (
	"encoding/json"
	"net/http"

	"appointment-booking/internal/dto/request"
	"appointment-booking/internal/usecase"
	"appointment-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings (protected)
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	memberID, ok := utils.GetMemberIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.Book(r.Context(), memberID, &req)
	if err != nil {
		writeServiceError(w, h.log, "create booking", err)
		return
	}

	utils.ResponseCreated(w, "success", booking)
}

// EnsureEnrollment handles POST /api/bookings/ensure (protected).
// Reconciliation endpoint for orders that paid but never committed.
func (h *BookingHandler) EnsureEnrollment(w http.ResponseWriter, r *http.Request) {
	memberID, ok := utils.GetMemberIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.EnsureEnrollmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.EnsureEnrollment(r.Context(), memberID, &req)
	if err != nil {
		writeServiceError(w, h.log, "ensure enrollment", err)
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// CancelBooking handles PUT /api/bookings/{id}/cancel (protected)
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	memberID, ok := utils.GetMemberIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	enrollmentID := chi.URLParam(r, "id")
	if enrollmentID == "" {
		utils.ResponseBadRequest(w, "Enrollment ID is required", nil)
		return
	}

	var req request.CancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.CancelBooking(r.Context(), memberID, enrollmentID, &req); err != nil {
		writeServiceError(w, h.log, "cancel booking", err)
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// RescheduleBooking handles PUT /api/bookings/{id}/reschedule (protected)
func (h *BookingHandler) RescheduleBooking(w http.ResponseWriter, r *http.Request) {
	memberID, ok := utils.GetMemberIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	enrollmentID := chi.URLParam(r, "id")
	if enrollmentID == "" {
		utils.ResponseBadRequest(w, "Enrollment ID is required", nil)
		return
	}

	var req request.RescheduleBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.RescheduleBooking(r.Context(), memberID, enrollmentID, &req)
	if err != nil {
		writeServiceError(w, h.log, "reschedule booking", err)
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}
