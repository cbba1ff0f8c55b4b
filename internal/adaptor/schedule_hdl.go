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

type ScheduleHandler struct {
	service usecase.ScheduleService
	log     *zap.Logger
}

func NewScheduleHandler(service usecase.ScheduleService, log *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service: service,
		log:     log.With(zap.String("handler", "schedule")),
	}
}

// CreateSchedule handles POST /api/plans/{id}/schedules (protected)
func (h *ScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	memberID, ok := utils.GetMemberIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	planID := chi.URLParam(r, "id")
	if planID == "" {
		utils.ResponseBadRequest(w, "Plan ID is required", nil)
		return
	}

	var req request.CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	schedule, err := h.service.CreateSchedule(r.Context(), memberID, planID, &req)
	if err != nil {
		writeServiceError(w, h.log, "create schedule", err)
		return
	}

	utils.ResponseCreated(w, "success", schedule)
}

// ListSchedules handles GET /api/plans/{id}/schedules (protected)
func (h *ScheduleHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	memberID, ok := utils.GetMemberIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	planID := chi.URLParam(r, "id")
	if planID == "" {
		utils.ResponseBadRequest(w, "Plan ID is required", nil)
		return
	}

	schedules, err := h.service.ListSchedules(r.Context(), memberID, planID)
	if err != nil {
		writeServiceError(w, h.log, "list schedules", err)
		return
	}

	utils.ResponseSuccess(w, "success", schedules)
}

// UpdateExcludes handles PUT /api/schedules/{id}/excludes (protected)
func (h *ScheduleHandler) UpdateExcludes(w http.ResponseWriter, r *http.Request) {
	memberID, ok := utils.GetMemberIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	scheduleID := chi.URLParam(r, "id")
	if scheduleID == "" {
		utils.ResponseBadRequest(w, "Schedule ID is required", nil)
		return
	}

	var req request.UpdateExcludesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	schedule, err := h.service.UpdateExcludes(r.Context(), memberID, scheduleID, &req)
	if err != nil {
		writeServiceError(w, h.log, "update excludes", err)
		return
	}

	utils.ResponseSuccess(w, "success", schedule)
}

// DeleteSchedule handles DELETE /api/schedules/{id} (protected)
func (h *ScheduleHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	memberID, ok := utils.GetMemberIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	scheduleID := chi.URLParam(r, "id")
	if scheduleID == "" {
		utils.ResponseBadRequest(w, "Schedule ID is required", nil)
		return
	}

	if err := h.service.DeleteSchedule(r.Context(), memberID, scheduleID); err != nil {
		writeServiceError(w, h.log, "delete schedule", err)
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
