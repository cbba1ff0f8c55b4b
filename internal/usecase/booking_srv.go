package usecase

import (
	"context"
	"fmt"
	"time"

	"appointment-booking/internal/data/entity"
	"appointment-booking/internal/data/repository"
	"appointment-booking/internal/dto/request"
	"appointment-booking/internal/dto/response"
	"appointment-booking/internal/notify"
	"appointment-booking/internal/payment"
	"appointment-booking/internal/scheduling"
	"appointment-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	// Book runs the full admission flow: resolve the requested period,
	// place and confirm payment, then commit the meet/member/enrollment
	// records in one transaction.
	Book(ctx context.Context, memberID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error)

	// EnsureEnrollment reconciles a paid order whose booking commit never
	// landed. Idempotent: keyed on the order product ID.
	EnsureEnrollment(ctx context.Context, memberID uuid.UUID, req *request.EnsureEnrollmentRequest) (*response.BookingResponse, error)

	CancelBooking(ctx context.Context, memberID uuid.UUID, enrollmentID string, req *request.CancelBookingRequest) error

	// RescheduleBooking swaps the meet pairing to a new period while the
	// enrollment id and order binding persist.
	RescheduleBooking(ctx context.Context, memberID uuid.UUID, enrollmentID string, req *request.RescheduleBookingRequest) (*response.BookingResponse, error)
}

type bookingService struct {
	repo         *repository.Repository
	availability AvailabilityService
	checkout     payment.Checkout
	events       notify.Publisher
	appID        string
	log          *zap.Logger
}

func NewBookingService(repo *repository.Repository, config *utils.Config, availability AvailabilityService, checkout payment.Checkout, events notify.Publisher, log *zap.Logger) BookingService {
	return &bookingService{
		repo:         repo,
		availability: availability,
		checkout:     checkout,
		events:       events,
		appID:        config.Booking.AppID,
		log:          log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) Book(ctx context.Context, memberID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	plan, schedule, startedAt, err := s.loadTarget(ctx, req.PlanID, req.ScheduleID, req.StartedAt)
	if err != nil {
		return nil, err
	}
	if !plan.IsPublished() && plan.CreatorID != memberID {
		return nil, fmt.Errorf("plan %s: %w", req.PlanID, ErrForbidden)
	}

	if err := s.requireBookable(ctx, memberID, plan, schedule, startedAt); err != nil {
		return nil, err
	}

	order := payment.Order{
		MemberID:       memberID,
		PlanID:         plan.ID,
		PlanTitle:      plan.Title,
		Amount:         plan.ListPrice,
		Currency:       plan.CurrencyID,
		IdempotencyKey: fmt.Sprintf("booking:%s:%s:%d", memberID.String(), plan.ID.String(), startedAt.Unix()),
	}

	ref, err := s.checkout.PlaceOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	outcome, err := s.checkout.ConfirmPayment(ctx, ref.OrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if !outcome.Paid {
		return nil, fmt.Errorf("%w: payment not completed (status %s)", ErrUpstream, outcome.Status)
	}

	enrollment, meet, err := s.commitAdmission(ctx, plan, memberID, startedAt, ref.OrderProductID)
	if err != nil {
		// Money moved but no booking exists. The order product ID is the
		// reconciliation key for the ensure-enrollment retry.
		s.log.Error("Booking commit failed after successful payment",
			zap.Error(err),
			zap.String("order_product_id", ref.OrderProductID),
			zap.String("member_id", memberID.String()),
			zap.String("plan_id", plan.ID.String()),
			zap.Time("started_at", startedAt),
		)
		return nil, fmt.Errorf("%w for order %s: %v", ErrPartialCommit, ref.OrderProductID, err)
	}

	s.log.Info("Booking confirmed",
		zap.String("enrollment_id", enrollment.ID.String()),
		zap.String("order_product_id", ref.OrderProductID),
		zap.String("member_id", memberID.String()),
		zap.Time("started_at", startedAt),
	)

	s.publish(ctx, notify.Event{
		Type:         notify.EventBookingConfirmed,
		EnrollmentID: enrollment.ID,
		PlanID:       plan.ID,
		MemberID:     memberID,
		HostMemberID: plan.CreatorID,
		StartedAt:    enrollment.StartedAt,
		EndedAt:      enrollment.EndedAt,
		OccurredAt:   time.Now(),
	})

	resp := response.BookingToResponse(enrollment, meet, time.Now())
	return &resp, nil
}

func (s *bookingService) EnsureEnrollment(ctx context.Context, memberID uuid.UUID, req *request.EnsureEnrollmentRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Ensure enrollment validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	existing, err := s.repo.Enrollment.FindByOrderProductID(ctx, req.OrderProductID)
	if err != nil {
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	if existing != nil {
		meet, _ := s.repo.Meet.FindActiveByPlanAndStart(ctx, existing.AppointmentPlanID, existing.StartedAt, false)
		resp := response.BookingToResponse(existing, meet, time.Now())
		return &resp, nil
	}

	outcome, err := s.checkout.ConfirmPayment(ctx, req.OrderProductID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if !outcome.Paid {
		return nil, fmt.Errorf("%w: order %s is not paid (status %s)", ErrValidation, req.OrderProductID, outcome.Status)
	}

	plan, schedule, startedAt, err := s.loadTarget(ctx, req.PlanID, req.ScheduleID, req.StartedAt)
	if err != nil {
		return nil, err
	}

	if !startedAt.After(time.Now()) {
		return nil, fmt.Errorf("%w: period %s is already past", ErrValidation, startedAt.Format(time.RFC3339))
	}

	// The instant must still be a live instance of the rule. Capacity is
	// re-checked inside the commit, but resolver-level contention is not:
	// the member already paid for this slot.
	if instances := scheduling.Expand(schedule, plan.Duration(), startedAt, startedAt.Add(time.Second)); len(instances) == 0 {
		return nil, fmt.Errorf("%w: %s is not an instance of schedule %s",
			ErrValidation, req.StartedAt, schedule.ID.String())
	}

	enrollment, meet, err := s.commitAdmission(ctx, plan, memberID, startedAt, req.OrderProductID)
	if err != nil {
		// A concurrent ensure may have won the order_product_id race;
		// in that case the booking exists and this call succeeded.
		if raced, findErr := s.repo.Enrollment.FindByOrderProductID(ctx, req.OrderProductID); findErr == nil && raced != nil {
			meet, _ := s.repo.Meet.FindActiveByPlanAndStart(ctx, raced.AppointmentPlanID, raced.StartedAt, false)
			resp := response.BookingToResponse(raced, meet, time.Now())
			return &resp, nil
		}
		return nil, err
	}

	s.log.Info("Enrollment reconciled",
		zap.String("enrollment_id", enrollment.ID.String()),
		zap.String("order_product_id", req.OrderProductID),
	)

	s.publish(ctx, notify.Event{
		Type:         notify.EventBookingConfirmed,
		EnrollmentID: enrollment.ID,
		PlanID:       plan.ID,
		MemberID:     memberID,
		HostMemberID: plan.CreatorID,
		StartedAt:    enrollment.StartedAt,
		EndedAt:      enrollment.EndedAt,
		OccurredAt:   time.Now(),
	})

	resp := response.BookingToResponse(enrollment, meet, time.Now())
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, memberID uuid.UUID, enrollmentID string, req *request.CancelBookingRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Cancel booking validation failed", zap.Any("errors", errs))
		return fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(enrollmentID)
	if err != nil {
		return fmt.Errorf("%w: invalid enrollment ID %s", ErrValidation, enrollmentID)
	}
	enrollment, err := s.repo.Enrollment.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find enrollment: %w", err)
	}
	if enrollment == nil {
		return fmt.Errorf("enrollment %s: %w", enrollmentID, ErrNotFound)
	}

	plan, err := s.repo.Plan.FindByID(ctx, enrollment.AppointmentPlanID)
	if err != nil {
		return fmt.Errorf("find plan: %w", err)
	}

	// The booking member or the plan's host may cancel.
	isHost := plan != nil && plan.CreatorID == memberID
	if enrollment.MemberID != memberID && !isHost {
		return fmt.Errorf("enrollment %s: %w", enrollmentID, ErrForbidden)
	}

	now := time.Now()
	if enrollment.CanceledAt != nil {
		return fmt.Errorf("%w: enrollment already canceled", ErrValidation)
	}
	if enrollment.IsFinished(now) {
		return fmt.Errorf("%w: finished enrollments are immutable", ErrValidation)
	}

	err = s.repo.RunInTx(ctx, func(r *repository.Repository) error {
		if err := s.releasePairing(ctx, r, enrollment, enrollment.MemberID); err != nil {
			return err
		}
		return r.Enrollment.SetCanceled(ctx, enrollment.ID, now, req.Reason)
	})
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}

	s.log.Info("Booking canceled",
		zap.String("enrollment_id", enrollment.ID.String()),
		zap.String("member_id", memberID.String()),
		zap.String("reason", req.Reason),
	)

	event := notify.Event{
		Type:           notify.EventBookingCanceled,
		EnrollmentID:   enrollment.ID,
		PlanID:         enrollment.AppointmentPlanID,
		MemberID:       enrollment.MemberID,
		StartedAt:      enrollment.StartedAt,
		EndedAt:        enrollment.EndedAt,
		CanceledReason: req.Reason,
		OccurredAt:     now,
	}
	if plan != nil {
		event.HostMemberID = plan.CreatorID
	}
	s.publish(ctx, event)

	return nil
}

func (s *bookingService) RescheduleBooking(ctx context.Context, memberID uuid.UUID, enrollmentID string, req *request.RescheduleBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Reschedule booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	enrollment, err := s.ownedEnrollment(ctx, memberID, enrollmentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if enrollment.CanceledAt != nil {
		return nil, fmt.Errorf("%w: enrollment is canceled", ErrValidation)
	}
	if enrollment.IsFinished(now) {
		return nil, fmt.Errorf("%w: finished enrollments are immutable", ErrValidation)
	}

	plan, err := s.repo.Plan.FindByID(ctx, enrollment.AppointmentPlanID)
	if err != nil {
		return nil, fmt.Errorf("find plan: %w", err)
	}
	if plan == nil {
		return nil, fmt.Errorf("plan %s: %w", enrollment.AppointmentPlanID.String(), ErrNotFound)
	}

	// The lock window counts back from the original start, not the target.
	if !now.Before(enrollment.StartedAt.Add(-plan.RescheduleWindow())) {
		return nil, fmt.Errorf("%w: less than %s before start", ErrRescheduleWindow, plan.RescheduleWindow())
	}

	scheduleID, err := uuid.Parse(req.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid schedule ID %s", ErrValidation, req.ScheduleID)
	}
	schedule, err := s.repo.Schedule.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("find schedule: %w", err)
	}
	if schedule == nil || schedule.AppointmentPlanID != plan.ID {
		return nil, fmt.Errorf("schedule %s: %w", req.ScheduleID, ErrNotFound)
	}

	newStart, ok := utils.ParseTime(req.StartedAt)
	if !ok {
		return nil, fmt.Errorf("%w: started_at must be RFC3339", ErrValidation)
	}
	newEnd := newStart.Add(plan.Duration())

	if err := s.requireBookable(ctx, memberID, plan, schedule, newStart); err != nil {
		return nil, err
	}

	oldStart, oldEnd := enrollment.StartedAt, enrollment.EndedAt

	var newMeet *entity.Meet
	err = s.repo.RunInTx(ctx, func(r *repository.Repository) error {
		if err := s.releasePairing(ctx, r, enrollment, memberID); err != nil {
			return err
		}

		meet, err := s.admitToPeriod(ctx, r, plan, memberID, newStart, newEnd)
		if err != nil {
			return err
		}
		newMeet = meet

		if err := r.Enrollment.UpdateWindow(ctx, enrollment.ID, newStart, newEnd); err != nil {
			return err
		}

		return r.RescheduleLog.Create(ctx, &entity.RescheduleLog{
			BaseSimple: entity.BaseSimple{
				ID:        uuid.New(),
				CreatedAt: time.Now(),
			},
			EnrollmentID: enrollment.ID,
			OldStartedAt: oldStart,
			OldEndedAt:   oldEnd,
			NewStartedAt: newStart,
			NewEndedAt:   newEnd,
		})
	})
	if err != nil {
		if isAdmissionConflict(err) {
			return nil, fmt.Errorf("target period taken concurrently: %w", ErrSlotUnavailable)
		}
		return nil, fmt.Errorf("reschedule booking: %w", err)
	}

	enrollment.StartedAt = newStart
	enrollment.EndedAt = newEnd

	s.log.Info("Booking rescheduled",
		zap.String("enrollment_id", enrollment.ID.String()),
		zap.Time("old_started_at", oldStart),
		zap.Time("new_started_at", newStart),
	)

	s.publish(ctx, notify.Event{
		Type:         notify.EventBookingRescheduled,
		EnrollmentID: enrollment.ID,
		PlanID:       plan.ID,
		MemberID:     memberID,
		HostMemberID: plan.CreatorID,
		StartedAt:    newStart,
		EndedAt:      newEnd,
		OldStartedAt: &oldStart,
		OldEndedAt:   &oldEnd,
		OccurredAt:   time.Now(),
	})

	resp := response.BookingToResponse(enrollment, newMeet, time.Now())
	return &resp, nil
}

// loadTarget resolves and cross-checks the plan, schedule and requested
// instant shared by the book and ensure flows.
func (s *bookingService) loadTarget(ctx context.Context, planID, scheduleID, startedAt string) (*entity.AppointmentPlan, *entity.AppointmentSchedule, time.Time, error) {
	pid, err := uuid.Parse(planID)
	if err != nil {
		return nil, nil, time.Time{}, fmt.Errorf("%w: invalid plan ID %s", ErrValidation, planID)
	}
	sid, err := uuid.Parse(scheduleID)
	if err != nil {
		return nil, nil, time.Time{}, fmt.Errorf("%w: invalid schedule ID %s", ErrValidation, scheduleID)
	}
	start, ok := utils.ParseTime(startedAt)
	if !ok {
		return nil, nil, time.Time{}, fmt.Errorf("%w: started_at must be RFC3339", ErrValidation)
	}

	plan, err := s.repo.Plan.FindByID(ctx, pid)
	if err != nil {
		return nil, nil, time.Time{}, fmt.Errorf("find plan: %w", err)
	}
	if plan == nil {
		return nil, nil, time.Time{}, fmt.Errorf("plan %s: %w", planID, ErrNotFound)
	}

	schedule, err := s.repo.Schedule.FindByID(ctx, sid)
	if err != nil {
		return nil, nil, time.Time{}, fmt.Errorf("find schedule: %w", err)
	}
	if schedule == nil || schedule.AppointmentPlanID != plan.ID {
		return nil, nil, time.Time{}, fmt.Errorf("schedule %s: %w", scheduleID, ErrNotFound)
	}

	return plan, schedule, start, nil
}

func (s *bookingService) requireBookable(ctx context.Context, memberID uuid.UUID, plan *entity.AppointmentPlan, schedule *entity.AppointmentSchedule, startedAt time.Time) error {
	// A past period can never be admitted; reject before any money moves.
	if !startedAt.After(time.Now()) {
		return fmt.Errorf("%w: period %s is already past", ErrValidation, startedAt.Format(time.RFC3339))
	}

	status, err := s.availability.ResolveInstant(ctx, memberID, plan, schedule, startedAt)
	if err != nil {
		return err
	}

	switch status {
	case scheduling.StatusBookable:
		return nil
	case scheduling.StatusBooked:
		return fmt.Errorf("%w: member already booked this period", ErrValidation)
	default:
		return fmt.Errorf("period is %s: %w", status, ErrSlotUnavailable)
	}
}

// commitAdmission writes the meet/member/enrollment triple in one
// transaction. Database constraints re-check what the resolver saw, so a
// lost race surfaces here as an admission conflict.
func (s *bookingService) commitAdmission(ctx context.Context, plan *entity.AppointmentPlan, memberID uuid.UUID, startedAt time.Time, orderProductID string) (*entity.Enrollment, *entity.Meet, error) {
	endedAt := startedAt.Add(plan.Duration())

	var enrollment *entity.Enrollment
	var meet *entity.Meet
	err := s.repo.RunInTx(ctx, func(r *repository.Repository) error {
		m, err := s.admitToPeriod(ctx, r, plan, memberID, startedAt, endedAt)
		if err != nil {
			return err
		}
		meet = m

		now := time.Now()
		enrollment = &entity.Enrollment{
			BaseNoDelete: entity.BaseNoDelete{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			AppointmentPlanID: plan.ID,
			MemberID:          memberID,
			StartedAt:         startedAt,
			EndedAt:           endedAt,
			OrderProductID:    orderProductID,
		}
		return r.Enrollment.Create(ctx, enrollment)
	})
	if err != nil {
		if isAdmissionConflict(err) {
			return nil, nil, fmt.Errorf("concurrent admission lost: %w", ErrSlotUnavailable)
		}
		return nil, nil, err
	}

	return enrollment, meet, nil
}

// admitToPeriod locks or creates the period's meet and adds the member,
// re-counting capacity under the row lock.
func (s *bookingService) admitToPeriod(ctx context.Context, r *repository.Repository, plan *entity.AppointmentPlan, memberID uuid.UUID, startedAt, endedAt time.Time) (*entity.Meet, error) {
	meet, err := r.Meet.FindActiveByPlanAndStart(ctx, plan.ID, startedAt, true)
	if err != nil {
		return nil, err
	}

	if meet == nil {
		service, err := r.Service.FindFreeService(ctx, s.appID, plan.DefaultGateway, startedAt, endedAt)
		if err != nil {
			return nil, err
		}
		if service == nil {
			return nil, fmt.Errorf("no free %s service: %w", string(plan.DefaultGateway), ErrSlotUnavailable)
		}

		now := time.Now()
		meet = &entity.Meet{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			AppointmentPlanID: plan.ID,
			HostMemberID:      plan.CreatorID,
			ServiceID:         service.ID,
			Gateway:           service.Gateway,
			StartedAt:         startedAt,
			EndedAt:           endedAt,
		}
		if err := r.Meet.Create(ctx, meet); err != nil {
			return nil, err
		}
	} else {
		existing, err := r.MeetMember.FindActiveByMeetAndMember(ctx, meet.ID, memberID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: member already attends this period", ErrValidation)
		}

		count, err := r.MeetMember.CountActiveByMeet(ctx, meet.ID)
		if err != nil {
			return nil, err
		}
		if plan.Capacity != entity.UnlimitedCapacity && count >= plan.Capacity {
			return nil, fmt.Errorf("meeting full: %w", ErrSlotUnavailable)
		}
	}

	member := &entity.MeetMember{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		MeetID:   meet.ID,
		MemberID: memberID,
	}
	if err := r.MeetMember.Create(ctx, member); err != nil {
		return nil, err
	}

	return meet, nil
}

// releasePairing soft-deletes the member's pairing for the enrollment's
// current period, and the meet itself when no attendee remains.
func (s *bookingService) releasePairing(ctx context.Context, r *repository.Repository, enrollment *entity.Enrollment, memberID uuid.UUID) error {
	meet, err := r.Meet.FindActiveByPlanAndStart(ctx, enrollment.AppointmentPlanID, enrollment.StartedAt, true)
	if err != nil {
		return err
	}
	if meet == nil {
		// Pairing already gone; reconcile by tombstoning nothing.
		return nil
	}

	member, err := r.MeetMember.FindActiveByMeetAndMember(ctx, meet.ID, memberID)
	if err != nil {
		return err
	}
	if member != nil {
		if err := r.MeetMember.SoftDelete(ctx, member.ID); err != nil {
			return err
		}
	}

	count, err := r.MeetMember.CountActiveByMeet(ctx, meet.ID)
	if err != nil {
		return err
	}
	if count == 0 {
		return r.Meet.SoftDelete(ctx, meet.ID)
	}

	return nil
}

func (s *bookingService) ownedEnrollment(ctx context.Context, memberID uuid.UUID, enrollmentID string) (*entity.Enrollment, error) {
	id, err := uuid.Parse(enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid enrollment ID %s", ErrValidation, enrollmentID)
	}

	enrollment, err := s.repo.Enrollment.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	if enrollment == nil {
		return nil, fmt.Errorf("enrollment %s: %w", enrollmentID, ErrNotFound)
	}
	if enrollment.MemberID != memberID {
		return nil, fmt.Errorf("enrollment %s: %w", enrollmentID, ErrForbidden)
	}

	return enrollment, nil
}

// publish is fire and forget; a dead broker never fails a booking.
func (s *bookingService) publish(ctx context.Context, event notify.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("Event publish failed",
			zap.Error(err),
			zap.String("type", event.Type),
			zap.String("enrollment_id", event.EnrollmentID.String()),
		)
	}
}
