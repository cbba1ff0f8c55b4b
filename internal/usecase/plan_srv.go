package usecase

import (
	"context"
	"fmt"
	"time"

	"appointment-booking/internal/data/entity"
	"appointment-booking/internal/data/repository"
	"appointment-booking/internal/dto/request"
	"appointment-booking/internal/dto/response"
	"appointment-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PlanService interface {
	CreatePlan(ctx context.Context, creatorID uuid.UUID, req *request.CreatePlanRequest) (*response.PlanResponse, error)
	GetPlan(ctx context.Context, viewerID uuid.UUID, planID string) (*response.PlanResponse, error)
	ListPlans(ctx context.Context, creatorID uuid.UUID) ([]response.PlanResponse, error)
	UpdatePlan(ctx context.Context, viewerID uuid.UUID, planID string, req *request.UpdatePlanRequest) (*response.PlanResponse, error)
	// SetPublished opens or closes the plan for booking by setting or
	// clearing published_at. Publishing an already-published plan keeps the
	// original timestamp.
	SetPublished(ctx context.Context, viewerID uuid.UUID, planID string, published bool) (*response.PlanResponse, error)
	DeletePlan(ctx context.Context, viewerID uuid.UUID, planID string) error
}

type planService struct {
	repo  *repository.Repository
	appID string
	log   *zap.Logger
}

func NewPlanService(repo *repository.Repository, config *utils.Config, log *zap.Logger) PlanService {
	return &planService{
		repo:  repo,
		appID: config.Booking.AppID,
		log:   log.With(zap.String("service", "plan")),
	}
}

func (s *planService) CreatePlan(ctx context.Context, creatorID uuid.UUID, req *request.CreatePlanRequest) (*response.PlanResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create plan validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	now := time.Now()
	plan := &entity.AppointmentPlan{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:            req.Title,
		DurationMinutes:  req.DurationMinutes,
		Capacity:         req.Capacity,
		DefaultGateway:   entity.Gateway(req.DefaultGateway),
		RescheduleAmount: req.RescheduleAmount,
		RescheduleUnit:   entity.RescheduleUnit(req.RescheduleUnit),
		ListPrice:        req.ListPrice,
		CurrencyID:       req.CurrencyID,
		CreatorID:        creatorID,
		AppID:            s.appID,
		IsPrivate:        req.IsPrivate,
	}
	if plan.RescheduleUnit == "" {
		plan.RescheduleUnit = entity.RescheduleUnitHour
	}
	if plan.CurrencyID == "" {
		plan.CurrencyID = "USD"
	}

	if err := s.repo.Plan.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}

	s.log.Info("Plan created",
		zap.String("plan_id", plan.ID.String()),
		zap.String("creator_id", creatorID.String()),
		zap.String("title", plan.Title),
	)

	resp := response.PlanToResponse(plan)
	return &resp, nil
}

func (s *planService) GetPlan(ctx context.Context, viewerID uuid.UUID, planID string) (*response.PlanResponse, error) {
	plan, err := s.findPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	// Private or unpublished plans are visible to their creator only.
	if (plan.IsPrivate || !plan.IsPublished()) && plan.CreatorID != viewerID {
		return nil, fmt.Errorf("plan %s: %w", planID, ErrForbidden)
	}

	resp := response.PlanToResponse(plan)
	return &resp, nil
}

func (s *planService) ListPlans(ctx context.Context, creatorID uuid.UUID) ([]response.PlanResponse, error) {
	plans, err := s.repo.Plan.FindByCreatorID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	responses := make([]response.PlanResponse, len(plans))
	for i, plan := range plans {
		responses[i] = response.PlanToResponse(plan)
	}

	return responses, nil
}

func (s *planService) UpdatePlan(ctx context.Context, viewerID uuid.UUID, planID string, req *request.UpdatePlanRequest) (*response.PlanResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update plan validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	plan, err := s.findPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.CreatorID != viewerID {
		return nil, fmt.Errorf("plan %s: %w", planID, ErrForbidden)
	}

	if req.Title != nil {
		plan.Title = *req.Title
	}
	if req.DurationMinutes != nil {
		plan.DurationMinutes = *req.DurationMinutes
	}
	if req.Capacity != nil {
		plan.Capacity = *req.Capacity
	}
	if req.DefaultGateway != nil {
		plan.DefaultGateway = entity.Gateway(*req.DefaultGateway)
	}
	if req.RescheduleAmount != nil {
		plan.RescheduleAmount = *req.RescheduleAmount
	}
	if req.RescheduleUnit != nil {
		plan.RescheduleUnit = entity.RescheduleUnit(*req.RescheduleUnit)
	}
	if req.ListPrice != nil {
		plan.ListPrice = *req.ListPrice
	}
	if req.CurrencyID != nil {
		plan.CurrencyID = *req.CurrencyID
	}
	if req.IsPrivate != nil {
		plan.IsPrivate = *req.IsPrivate
	}

	if err := s.repo.Plan.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}

	s.log.Info("Plan updated", zap.String("plan_id", plan.ID.String()))

	resp := response.PlanToResponse(plan)
	return &resp, nil
}

func (s *planService) SetPublished(ctx context.Context, viewerID uuid.UUID, planID string, published bool) (*response.PlanResponse, error) {
	plan, err := s.findPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.CreatorID != viewerID {
		return nil, fmt.Errorf("plan %s: %w", planID, ErrForbidden)
	}

	if published && plan.PublishedAt == nil {
		now := time.Now()
		plan.PublishedAt = &now
	} else if !published {
		plan.PublishedAt = nil
	}

	if err := s.repo.Plan.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}

	s.log.Info("Plan publish state changed",
		zap.String("plan_id", plan.ID.String()),
		zap.Bool("published", published),
	)

	resp := response.PlanToResponse(plan)
	return &resp, nil
}

func (s *planService) DeletePlan(ctx context.Context, viewerID uuid.UUID, planID string) error {
	plan, err := s.findPlan(ctx, planID)
	if err != nil {
		return err
	}
	if plan.CreatorID != viewerID {
		return fmt.Errorf("plan %s: %w", planID, ErrForbidden)
	}

	if err := s.repo.Plan.SoftDelete(ctx, plan.ID); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}

	return nil
}

func (s *planService) findPlan(ctx context.Context, planID string) (*entity.AppointmentPlan, error) {
	id, err := uuid.Parse(planID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid plan ID %s", ErrValidation, planID)
	}

	plan, err := s.repo.Plan.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find plan: %w", err)
	}
	if plan == nil {
		return nil, fmt.Errorf("plan %s: %w", planID, ErrNotFound)
	}

	return plan, nil
}
