package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"appointment-booking/internal/data/entity"
	"appointment-booking/internal/data/repository"
	"appointment-booking/internal/dto/response"
	"appointment-booking/internal/scheduling"
	"appointment-booking/pkg/cache"
	"appointment-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AvailabilityService interface {
	// GetPlanPeriods materializes the plan's periods inside [from, until)
	// and annotates each with its bookability for the viewer.
	GetPlanPeriods(ctx context.Context, viewerID uuid.UUID, planID, from, until string) ([]response.PeriodResponse, error)

	// ResolveInstant checks a single requested instant against the
	// schedule's rule and the live meet state. Used by the booking flow
	// before and during admission.
	ResolveInstant(ctx context.Context, viewerID uuid.UUID, plan *entity.AppointmentPlan, schedule *entity.AppointmentSchedule, startedAt time.Time) (scheduling.Status, error)
}

type availabilityService struct {
	repo    *repository.Repository
	cache   *cache.Cache
	appID   string
	maxSpan time.Duration
	poolTTL time.Duration
	log     *zap.Logger
}

func NewAvailabilityService(repo *repository.Repository, config *utils.Config, c *cache.Cache, log *zap.Logger) AvailabilityService {
	return &availabilityService{
		repo:    repo,
		cache:   c,
		appID:   config.Booking.AppID,
		maxSpan: time.Duration(config.Booking.MaxWindowDays) * 24 * time.Hour,
		poolTTL: time.Duration(config.Booking.ServiceCacheTTLSeconds) * time.Second,
		log:     log.With(zap.String("service", "availability")),
	}
}

func (s *availabilityService) GetPlanPeriods(ctx context.Context, viewerID uuid.UUID, planID, from, until string) ([]response.PeriodResponse, error) {
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
	if (plan.IsPrivate || !plan.IsPublished()) && plan.CreatorID != viewerID {
		return nil, fmt.Errorf("plan %s: %w", planID, ErrForbidden)
	}

	windowStart, ok := utils.ParseTime(from)
	if !ok {
		return nil, fmt.Errorf("%w: from must be RFC3339", ErrValidation)
	}
	windowEnd, ok := utils.ParseTime(until)
	if !ok {
		return nil, fmt.Errorf("%w: until must be RFC3339", ErrValidation)
	}
	if !windowStart.Before(windowEnd) {
		return nil, fmt.Errorf("%w: from must precede until", ErrValidation)
	}
	if windowEnd.Sub(windowStart) > s.maxSpan {
		return nil, fmt.Errorf("%w: window exceeds %s", ErrValidation, s.maxSpan)
	}

	schedules, err := s.repo.Schedule.FindByPlanID(ctx, plan.ID)
	if err != nil {
		return nil, fmt.Errorf("find schedules: %w", err)
	}

	var periods []scheduling.Period
	for _, schedule := range schedules {
		periods = append(periods, scheduling.Expand(schedule, plan.Duration(), windowStart, windowEnd)...)
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].StartedAt.Before(periods[j].StartedAt)
	})

	snapshots, err := s.repo.Meet.FindSnapshotsByHost(ctx, plan.CreatorID, viewerID, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("find meet snapshots: %w", err)
	}

	zoomIDs, err := s.zoomServicePool(ctx)
	if err != nil {
		return nil, err
	}

	rule := scheduling.PlanRule{Capacity: plan.Capacity, DefaultGateway: plan.DefaultGateway}
	responses := make([]response.PeriodResponse, len(periods))
	for i, period := range periods {
		status := scheduling.Resolve(period, plan.ID, rule, snapshots, zoomIDs, false)
		responses[i] = response.PeriodResponse{
			ScheduleID: period.ScheduleID.String(),
			StartedAt:  period.StartedAt,
			EndedAt:    period.EndedAt,
			Status:     string(status),
		}
	}

	return responses, nil
}

func (s *availabilityService) ResolveInstant(ctx context.Context, viewerID uuid.UUID, plan *entity.AppointmentPlan, schedule *entity.AppointmentSchedule, startedAt time.Time) (scheduling.Status, error) {
	if schedule.IsExcluded(startedAt) {
		return scheduling.StatusClosed, nil
	}

	// The instant must be a real instance of the rule, not just any time.
	instances := scheduling.Expand(schedule, plan.Duration(), startedAt, startedAt.Add(time.Second))
	matched := false
	for _, instance := range instances {
		if instance.StartedAt.Equal(startedAt) {
			matched = true
			break
		}
	}
	if !matched {
		return "", fmt.Errorf("%w: %s is not an instance of schedule %s",
			ErrValidation, startedAt.Format(time.RFC3339), schedule.ID.String())
	}

	endedAt := startedAt.Add(plan.Duration())
	snapshots, err := s.repo.Meet.FindSnapshotsByHost(ctx, plan.CreatorID, viewerID, startedAt, endedAt)
	if err != nil {
		return "", fmt.Errorf("find meet snapshots: %w", err)
	}

	zoomIDs, err := s.zoomServicePool(ctx)
	if err != nil {
		return "", err
	}

	period := scheduling.Period{ScheduleID: schedule.ID, StartedAt: startedAt, EndedAt: endedAt}
	rule := scheduling.PlanRule{Capacity: plan.Capacity, DefaultGateway: plan.DefaultGateway}
	return scheduling.Resolve(period, plan.ID, rule, snapshots, zoomIDs, false), nil
}

// zoomServicePool returns the tenant's zoom service accounts, cached since
// the pool changes rarely but is consulted on every availability read.
func (s *availabilityService) zoomServicePool(ctx context.Context) ([]uuid.UUID, error) {
	key := "services:" + s.appID + ":zoom"

	var ids []uuid.UUID
	if s.cache.GetJSON(ctx, key, &ids) {
		return ids, nil
	}

	ids, err := s.repo.Service.FindIDsByAppAndGateway(ctx, s.appID, entity.GatewayZoom)
	if err != nil {
		return nil, fmt.Errorf("find zoom services: %w", err)
	}

	s.cache.SetJSON(ctx, key, ids, s.poolTTL)
	return ids, nil
}
