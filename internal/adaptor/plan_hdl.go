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

type PlanHandler struct {
	service      usecase.PlanService
	availability usecase.AvailabilityService
	log          *zap.Logger
}

func NewPlanHandler(service usecase.PlanService, availability usecase.AvailabilityService, log *zap.Logger) *PlanHandler {
	return &PlanHandler{
		service:      service,
		availability: availability,
		log:          log.With(zap.String("handler", "plan")),
	}
}

// CreatePlan handles POST /api/plans (protected)
func (h *PlanHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	memberID, ok := utils.GetMemberIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	plan, err := h.service.CreatePlan(r.Context(), memberID, &req)
	if err != nil {
		writeServiceError(w, h.log, "create plan", err)
		return
	}

	utils.ResponseCreated(w, "success", plan)
}

// GetPlan handles GET /api/plans/{id} (protected)
func (h *PlanHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
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

	plan, err := h.service.GetPlan(r.Context(), memberID, planID)
	if err != nil {
		writeServiceError(w, h.log, "get plan", err)
		return
	}

	utils.ResponseSuccess(w, "success", plan)
}

// ListPlans handles GET /api/plans (protected), listing the viewer's own plans.
func (h *PlanHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	memberID, ok := utils.GetMemberIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	plans, err := h.service.ListPlans(r.Context(), memberID)
	if err != nil {
		writeServiceError(w, h.log, "list plans", err)
		return
	}

	utils.ResponseSuccess(w, "success", plans)
}

// UpdatePlan handles PUT /api/plans/{id} (protected)
func (h *PlanHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
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

	var req request.UpdatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	plan, err := h.service.UpdatePlan(r.Context(), memberID, planID, &req)
	if err != nil {
		writeServiceError(w, h.log, "update plan", err)
		return
	}

	utils.ResponseSuccess(w, "success", plan)
}

// PublishPlan handles PUT /api/plans/{id}/publish (protected)
func (h *PlanHandler) PublishPlan(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, true)
}

// UnpublishPlan handles PUT /api/plans/{id}/unpublish (protected)
func (h *PlanHandler) UnpublishPlan(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, false)
}

func (h *PlanHandler) setPublished(w http.ResponseWriter, r *http.Request, published bool) {
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

	plan, err := h.service.SetPublished(r.Context(), memberID, planID, published)
	if err != nil {
		writeServiceError(w, h.log, "set plan published", err)
		return
	}

	utils.ResponseSuccess(w, "success", plan)
}

// DeletePlan handles DELETE /api/plans/{id} (protected)
func (h *PlanHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.DeletePlan(r.Context(), memberID, planID); err != nil {
		writeServiceError(w, h.log, "delete plan", err)
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// GetPlanPeriods handles GET /api/plans/{id}/periods?from=&until= (protected)
func (h *PlanHandler) GetPlanPeriods(w http.ResponseWriter, r *http.Request) {
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

	query := r.URL.Query()
	periods, err := h.availability.GetPlanPeriods(r.Context(), memberID, planID, query.Get("from"), query.Get("until"))
	if err != nil {
		writeServiceError(w, h.log, "get plan periods", err)
		return
	}

	utils.ResponseSuccess(w, "success", periods)
}
