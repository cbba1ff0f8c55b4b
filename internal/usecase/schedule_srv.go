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

type ScheduleService interface {
	CreateSchedule(ctx context.Context, viewerID uuid.UUID, planID string, req *request.CreateScheduleRequest) (*response.ScheduleResponse, error)
	ListSchedules(ctx context.Context, viewerID uuid.UUID, planID string) ([]response.ScheduleResponse, error)
	UpdateExcludes(ctx context.Context, viewerID uuid.UUID, scheduleID string, req *request.UpdateExcludesRequest) (*response.ScheduleResponse, error)
	DeleteSchedule(ctx context.Context, viewerID uuid.UUID, scheduleID string) error
}

type scheduleService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewScheduleService(repo *repository.Repository, log *zap.Logger) ScheduleService {
	return &scheduleService{
		repo: repo,
		log:  log.With(zap.String("service", "schedule")),
	}
}

func (s *scheduleService) CreateSchedule(ctx context.Context, viewerID uuid.UUID, planID string, req *request.CreateScheduleRequest) (*response.ScheduleResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create schedule validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	plan, err := s.ownedPlan(ctx, viewerID, planID)
	if err != nil {
		return nil, err
	}

	startedAt, ok := utils.ParseTime(req.StartedAt)
	if !ok {
		return nil, fmt.Errorf("%w: started_at must be RFC3339", ErrValidation)
	}

	excludes, err := parseExcludes(req.Excludes)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	schedule := &entity.AppointmentSchedule{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		AppointmentPlanID: plan.ID,
		StartedAt:         startedAt,
		IntervalAmount:    req.IntervalAmount,
		Excludes:          excludes,
	}
	if req.IntervalType != nil {
		it := entity.IntervalType(*req.IntervalType)
		schedule.IntervalType = &it
	}

	if err := s.repo.Schedule.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}

	s.log.Info("Schedule created",
		zap.String("schedule_id", schedule.ID.String()),
		zap.String("plan_id", plan.ID.String()),
		zap.Time("started_at", startedAt),
	)

	resp := response.ScheduleToResponse(schedule)
	return &resp, nil
}

func (s *scheduleService) ListSchedules(ctx context.Context, viewerID uuid.UUID, planID string) ([]response.ScheduleResponse, error) {
	plan, err := s.ownedPlan(ctx, viewerID, planID)
	if err != nil {
		return nil, err
	}

	schedules, err := s.repo.Schedule.FindByPlanID(ctx, plan.ID)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	responses := make([]response.ScheduleResponse, len(schedules))
	for i, schedule := range schedules {
		responses[i] = response.ScheduleToResponse(schedule)
	}

	return responses, nil
}

// UpdateExcludes replaces the full exclusion set. Exclusions only suppress
// future expansion; bookings already admitted on an instant stay untouched.
func (s *scheduleService) UpdateExcludes(ctx context.Context, viewerID uuid.UUID, scheduleID string, req *request.UpdateExcludesRequest) (*response.ScheduleResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update excludes validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	schedule, err := s.ownedSchedule(ctx, viewerID, scheduleID)
	if err != nil {
		return nil, err
	}

	excludes, err := parseExcludes(req.Excludes)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Schedule.UpdateExcludes(ctx, schedule.ID, excludes); err != nil {
		return nil, fmt.Errorf("update excludes: %w", err)
	}

	schedule.Excludes = excludes

	s.log.Info("Schedule excludes updated",
		zap.String("schedule_id", schedule.ID.String()),
		zap.Int("exclude_count", len(excludes)),
	)

	resp := response.ScheduleToResponse(schedule)
	return &resp, nil
}

func (s *scheduleService) DeleteSchedule(ctx context.Context, viewerID uuid.UUID, scheduleID string) error {
	schedule, err := s.ownedSchedule(ctx, viewerID, scheduleID)
	if err != nil {
		return err
	}

	if err := s.repo.Schedule.Delete(ctx, schedule.ID); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}

	return nil
}

func (s *scheduleService) ownedPlan(ctx context.Context, viewerID uuid.UUID, planID string) (*entity.AppointmentPlan, error) {
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
	if plan.CreatorID != viewerID {
		return nil, fmt.Errorf("plan %s: %w", planID, ErrForbidden)
	}

	return plan, nil
}

func (s *scheduleService) ownedSchedule(ctx context.Context, viewerID uuid.UUID, scheduleID string) (*entity.AppointmentSchedule, error) {
	id, err := uuid.Parse(scheduleID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid schedule ID %s", ErrValidation, scheduleID)
	}

	schedule, err := s.repo.Schedule.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find schedule: %w", err)
	}
	if schedule == nil {
		return nil, fmt.Errorf("schedule %s: %w", scheduleID, ErrNotFound)
	}

	plan, err := s.repo.Plan.FindByID(ctx, schedule.AppointmentPlanID)
	if err != nil {
		return nil, fmt.Errorf("find plan: %w", err)
	}
	if plan == nil || plan.CreatorID != viewerID {
		return nil, fmt.Errorf("schedule %s: %w", scheduleID, ErrForbidden)
	}

	return schedule, nil
}

func parseExcludes(values []string) ([]time.Time, error) {
	excludes := make([]time.Time, 0, len(values))
	for _, v := range values {
		t, ok := utils.ParseTime(v)
		if !ok {
			return nil, fmt.Errorf("%w: exclude %q must be RFC3339", ErrValidation, v)
		}
		excludes = append(excludes, t)
	}
	return excludes, nil
}
