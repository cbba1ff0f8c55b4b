package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"appointment-booking/internal/data/entity"
	"appointment-booking/internal/data/repository"
	"appointment-booking/internal/notify"
	"appointment-booking/internal/payment"
	"appointment-booking/internal/scheduling"
	"appointment-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// In-memory repository fakes. RunInTx with no attached pool runs the
// callback against the same repository, so the services under test exercise
// their real transaction bodies.

type fakePlanRepo struct {
	plans map[uuid.UUID]*entity.AppointmentPlan
}

func (f *fakePlanRepo) Create(_ context.Context, plan *entity.AppointmentPlan) error {
	f.plans[plan.ID] = plan
	return nil
}

func (f *fakePlanRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.AppointmentPlan, error) {
	plan, ok := f.plans[id]
	if !ok || plan.DeletedAt != nil {
		return nil, nil
	}
	return plan, nil
}

func (f *fakePlanRepo) FindByCreatorID(_ context.Context, creatorID uuid.UUID) ([]*entity.AppointmentPlan, error) {
	var out []*entity.AppointmentPlan
	for _, plan := range f.plans {
		if plan.CreatorID == creatorID && plan.DeletedAt == nil {
			out = append(out, plan)
		}
	}
	return out, nil
}

func (f *fakePlanRepo) Update(_ context.Context, plan *entity.AppointmentPlan) error {
	f.plans[plan.ID] = plan
	return nil
}

func (f *fakePlanRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	plan, ok := f.plans[id]
	if !ok {
		return fmt.Errorf("plan %s not found", id.String())
	}
	now := time.Now()
	plan.DeletedAt = &now
	return nil
}

type fakeScheduleRepo struct {
	schedules map[uuid.UUID]*entity.AppointmentSchedule
}

func (f *fakeScheduleRepo) Create(_ context.Context, schedule *entity.AppointmentSchedule) error {
	f.schedules[schedule.ID] = schedule
	return nil
}

func (f *fakeScheduleRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.AppointmentSchedule, error) {
	return f.schedules[id], nil
}

func (f *fakeScheduleRepo) FindByPlanID(_ context.Context, planID uuid.UUID) ([]*entity.AppointmentSchedule, error) {
	var out []*entity.AppointmentSchedule
	for _, schedule := range f.schedules {
		if schedule.AppointmentPlanID == planID {
			out = append(out, schedule)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) UpdateExcludes(_ context.Context, id uuid.UUID, excludes []time.Time) error {
	schedule, ok := f.schedules[id]
	if !ok {
		return fmt.Errorf("schedule %s not found", id.String())
	}
	schedule.Excludes = excludes
	return nil
}

func (f *fakeScheduleRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.schedules, id)
	return nil
}

type fakeMeetMemberRepo struct {
	members []*entity.MeetMember
}

func (f *fakeMeetMemberRepo) Create(_ context.Context, member *entity.MeetMember) error {
	f.members = append(f.members, member)
	return nil
}

func (f *fakeMeetMemberRepo) FindActiveByMeetAndMember(_ context.Context, meetID, memberID uuid.UUID) (*entity.MeetMember, error) {
	for _, m := range f.members {
		if m.MeetID == meetID && m.MemberID == memberID && m.DeletedAt == nil {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMeetMemberRepo) CountActiveByMeet(_ context.Context, meetID uuid.UUID) (int, error) {
	count := 0
	for _, m := range f.members {
		if m.MeetID == meetID && m.DeletedAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeMeetMemberRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	for _, m := range f.members {
		if m.ID == id && m.DeletedAt == nil {
			now := time.Now()
			m.DeletedAt = &now
			return nil
		}
	}
	return fmt.Errorf("meet member %s not found", id.String())
}

func (f *fakeMeetMemberRepo) activeByMember(memberID uuid.UUID) []*entity.MeetMember {
	var out []*entity.MeetMember
	for _, m := range f.members {
		if m.MemberID == memberID && m.DeletedAt == nil {
			out = append(out, m)
		}
	}
	return out
}

type fakeMeetRepo struct {
	meets   []*entity.Meet
	members *fakeMeetMemberRepo
}

func (f *fakeMeetRepo) Create(_ context.Context, meet *entity.Meet) error {
	f.meets = append(f.meets, meet)
	return nil
}

func (f *fakeMeetRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Meet, error) {
	for _, m := range f.meets {
		if m.ID == id && m.DeletedAt == nil {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMeetRepo) FindActiveByPlanAndStart(_ context.Context, planID uuid.UUID, startedAt time.Time, _ bool) (*entity.Meet, error) {
	for _, m := range f.meets {
		if m.AppointmentPlanID == planID && m.StartedAt.Equal(startedAt) && m.DeletedAt == nil {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMeetRepo) FindSnapshotsByHost(ctx context.Context, hostMemberID, viewerID uuid.UUID, from, until time.Time) ([]scheduling.MeetSnapshot, error) {
	var out []scheduling.MeetSnapshot
	for _, m := range f.meets {
		if m.HostMemberID != hostMemberID || m.DeletedAt != nil || !m.Overlaps(from, until) {
			continue
		}
		count, _ := f.members.CountActiveByMeet(ctx, m.ID)
		joined, _ := f.members.FindActiveByMeetAndMember(ctx, m.ID, viewerID)
		out = append(out, scheduling.MeetSnapshot{
			ID:                m.ID,
			AppointmentPlanID: m.AppointmentPlanID,
			ServiceID:         m.ServiceID,
			StartedAt:         m.StartedAt,
			EndedAt:           m.EndedAt,
			ActiveMembers:     count,
			ViewerJoined:      joined != nil,
		})
	}
	return out, nil
}

func (f *fakeMeetRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	for _, m := range f.meets {
		if m.ID == id && m.DeletedAt == nil {
			now := time.Now()
			m.DeletedAt = &now
			return nil
		}
	}
	return fmt.Errorf("meet %s not found", id.String())
}

type fakeServiceRepo struct {
	services []*entity.Service
	meets    *fakeMeetRepo
}

func (f *fakeServiceRepo) Create(_ context.Context, service *entity.Service) error {
	f.services = append(f.services, service)
	return nil
}

func (f *fakeServiceRepo) FindIDsByAppAndGateway(_ context.Context, appID string, gateway entity.Gateway) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, s := range f.services {
		if s.AppID == appID && s.Gateway == gateway {
			ids = append(ids, s.ID)
		}
	}
	return ids, nil
}

func (f *fakeServiceRepo) FindFreeService(_ context.Context, appID string, gateway entity.Gateway, start, end time.Time) (*entity.Service, error) {
	for _, s := range f.services {
		if s.AppID != appID || s.Gateway != gateway {
			continue
		}
		busy := false
		for _, m := range f.meets.meets {
			if m.ServiceID == s.ID && m.Gateway == entity.GatewayZoom && m.DeletedAt == nil && m.Overlaps(start, end) {
				busy = true
				break
			}
		}
		if !busy {
			return s, nil
		}
	}
	return nil, nil
}

type fakeEnrollmentRepo struct {
	enrollments []*entity.Enrollment
	plans       *fakePlanRepo
	lastFilter  *repository.EnrollmentFilter
}

func (f *fakeEnrollmentRepo) Create(_ context.Context, enrollment *entity.Enrollment) error {
	for _, e := range f.enrollments {
		if e.OrderProductID == enrollment.OrderProductID {
			return fmt.Errorf("duplicate order product %s", enrollment.OrderProductID)
		}
	}
	f.enrollments = append(f.enrollments, enrollment)
	return nil
}

func (f *fakeEnrollmentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Enrollment, error) {
	for _, e := range f.enrollments {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeEnrollmentRepo) FindByOrderProductID(_ context.Context, orderProductID string) (*entity.Enrollment, error) {
	for _, e := range f.enrollments {
		if e.OrderProductID == orderProductID {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeEnrollmentRepo) SetCanceled(_ context.Context, id uuid.UUID, canceledAt time.Time, reason string) error {
	for _, e := range f.enrollments {
		if e.ID == id && e.CanceledAt == nil {
			e.CanceledAt = &canceledAt
			e.CanceledReason = &reason
			return nil
		}
	}
	return fmt.Errorf("enrollment %s not found or already canceled", id.String())
}

func (f *fakeEnrollmentRepo) UpdateWindow(_ context.Context, id uuid.UUID, startedAt, endedAt time.Time) error {
	for _, e := range f.enrollments {
		if e.ID == id && e.CanceledAt == nil {
			e.StartedAt = startedAt
			e.EndedAt = endedAt
			return nil
		}
	}
	return fmt.Errorf("enrollment %s not found or already canceled", id.String())
}

// List mirrors the storage contract: bucket predicate, keyset cursor, sort
// order and limit.
func (f *fakeEnrollmentRepo) List(_ context.Context, filter repository.EnrollmentFilter) ([]*entity.Enrollment, error) {
	f.lastFilter = &filter

	var out []*entity.Enrollment
	for _, e := range f.enrollments {
		if filter.MemberID != nil && e.MemberID != *filter.MemberID {
			continue
		}
		if filter.HostID != nil {
			plan := f.plans.plans[e.AppointmentPlanID]
			if plan == nil || plan.CreatorID != *filter.HostID {
				continue
			}
		}
		if filter.From != nil && e.StartedAt.Before(*filter.From) {
			continue
		}
		if filter.Until != nil && !e.StartedAt.Before(*filter.Until) {
			continue
		}

		switch filter.Bucket {
		case entity.EnrollmentScheduled:
			if e.CanceledAt != nil || !filter.Now.Before(e.EndedAt) {
				continue
			}
			if filter.Cursor != nil && !e.StartedAt.After(*filter.Cursor) {
				continue
			}
		case entity.EnrollmentCanceled:
			if e.CanceledAt == nil {
				continue
			}
			if filter.Cursor != nil && !e.EndedAt.Before(*filter.Cursor) {
				continue
			}
		case entity.EnrollmentFinished:
			if e.CanceledAt != nil || filter.Now.Before(e.EndedAt) {
				continue
			}
			if filter.Cursor != nil && !e.EndedAt.Before(*filter.Cursor) {
				continue
			}
		default:
			return nil, fmt.Errorf("unknown enrollment bucket %q", string(filter.Bucket))
		}

		out = append(out, e)
	}

	if filter.Bucket == entity.EnrollmentScheduled {
		sort.Slice(out, func(i, j int) bool {
			return out[i].StartedAt.Before(out[j].StartedAt)
		})
	} else {
		sort.Slice(out, func(i, j int) bool {
			if !out[i].EndedAt.Equal(out[j].EndedAt) {
				return out[i].EndedAt.After(out[j].EndedAt)
			}
			return out[i].StartedAt.After(out[j].StartedAt)
		})
	}

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type fakeRescheduleLogRepo struct {
	logs []*entity.RescheduleLog
}

func (f *fakeRescheduleLogRepo) Create(_ context.Context, rl *entity.RescheduleLog) error {
	f.logs = append(f.logs, rl)
	return nil
}

func (f *fakeRescheduleLogRepo) FindByEnrollmentID(_ context.Context, enrollmentID uuid.UUID) ([]*entity.RescheduleLog, error) {
	var out []*entity.RescheduleLog
	for _, rl := range f.logs {
		if rl.EnrollmentID == enrollmentID {
			out = append(out, rl)
		}
	}
	return out, nil
}

type fakeCheckout struct {
	placed    int
	confirmed int
	outcome   payment.Outcome
	placeErr  error
}

func (f *fakeCheckout) PlaceOrder(_ context.Context, _ payment.Order) (payment.OrderRef, error) {
	if f.placeErr != nil {
		return payment.OrderRef{}, f.placeErr
	}
	f.placed++
	id := fmt.Sprintf("pi_%d", f.placed)
	return payment.OrderRef{OrderID: id, OrderProductID: id}, nil
}

func (f *fakeCheckout) ConfirmPayment(_ context.Context, _ string) (payment.Outcome, error) {
	f.confirmed++
	return f.outcome, nil
}

type recordingPublisher struct {
	events []notify.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event notify.Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// fixture wires the service stack over the fakes.
type fixture struct {
	plans       *fakePlanRepo
	schedules   *fakeScheduleRepo
	services    *fakeServiceRepo
	meets       *fakeMeetRepo
	meetMembers *fakeMeetMemberRepo
	enrollments *fakeEnrollmentRepo
	logs        *fakeRescheduleLogRepo
	checkout    *fakeCheckout
	published   *recordingPublisher

	repo    *repository.Repository
	booking BookingService
	hostID  uuid.UUID
}

const testAppID = "test-app"

func newFixture() *fixture {
	meetMembers := &fakeMeetMemberRepo{}
	meets := &fakeMeetRepo{members: meetMembers}
	plans := &fakePlanRepo{plans: map[uuid.UUID]*entity.AppointmentPlan{}}

	f := &fixture{
		plans:       plans,
		schedules:   &fakeScheduleRepo{schedules: map[uuid.UUID]*entity.AppointmentSchedule{}},
		services:    &fakeServiceRepo{meets: meets},
		meets:       meets,
		meetMembers: meetMembers,
		enrollments: &fakeEnrollmentRepo{plans: plans},
		logs:        &fakeRescheduleLogRepo{},
		checkout:    &fakeCheckout{outcome: payment.Outcome{Paid: true, Status: "succeeded"}},
		published:   &recordingPublisher{},
		hostID:      uuid.New(),
	}

	f.repo = &repository.Repository{
		Plan:          f.plans,
		Schedule:      f.schedules,
		Service:       f.services,
		Meet:          f.meets,
		MeetMember:    f.meetMembers,
		Enrollment:    f.enrollments,
		RescheduleLog: f.logs,
	}

	config := &utils.Config{
		Booking: utils.BookingConfig{
			AppID:                  testAppID,
			MaxWindowDays:          92,
			ServiceCacheTTLSeconds: 300,
		},
	}

	log := zap.NewNop()
	availability := NewAvailabilityService(f.repo, config, nil, log)
	f.booking = NewBookingService(f.repo, config, availability, f.checkout, f.published, log)

	return f
}

func (f *fixture) addPlan(capacity int, gateway entity.Gateway, rescheduleAmount int, rescheduleUnit entity.RescheduleUnit) *entity.AppointmentPlan {
	now := time.Now()
	published := now.Add(-time.Hour)
	plan := &entity.AppointmentPlan{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:            "Consultation",
		DurationMinutes:  60,
		Capacity:         capacity,
		DefaultGateway:   gateway,
		RescheduleAmount: rescheduleAmount,
		RescheduleUnit:   rescheduleUnit,
		ListPrice:        50,
		CurrencyID:       "USD",
		CreatorID:        f.hostID,
		AppID:            testAppID,
		PublishedAt:      &published,
	}
	f.plans.plans[plan.ID] = plan
	return plan
}

func (f *fixture) addWeeklySchedule(plan *entity.AppointmentPlan, anchor time.Time) *entity.AppointmentSchedule {
	now := time.Now()
	interval := entity.IntervalWeek
	step := 1
	schedule := &entity.AppointmentSchedule{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		AppointmentPlanID: plan.ID,
		StartedAt:         anchor,
		IntervalType:      &interval,
		IntervalAmount:    &step,
	}
	f.schedules.schedules[schedule.ID] = schedule
	return schedule
}

func (f *fixture) addService(gateway entity.Gateway) *entity.Service {
	service := &entity.Service{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		AppID:   testAppID,
		Gateway: gateway,
	}
	f.services.services = append(f.services.services, service)
	return service
}

// seedBooking plants a confirmed booking for memberID at startedAt.
func (f *fixture) seedBooking(plan *entity.AppointmentPlan, service *entity.Service, memberID uuid.UUID, startedAt time.Time, orderProductID string) (*entity.Enrollment, *entity.Meet) {
	now := time.Now()
	endedAt := startedAt.Add(plan.Duration())

	meet, _ := f.meets.FindActiveByPlanAndStart(context.Background(), plan.ID, startedAt, false)
	if meet == nil {
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
		f.meets.meets = append(f.meets.meets, meet)
	}

	f.meetMembers.members = append(f.meetMembers.members, &entity.MeetMember{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		MeetID:   meet.ID,
		MemberID: memberID,
	})

	enrollment := &entity.Enrollment{
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
	f.enrollments.enrollments = append(f.enrollments.enrollments, enrollment)

	return enrollment, meet
}
