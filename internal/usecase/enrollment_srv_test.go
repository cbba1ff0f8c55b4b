package usecase

import (
	"context"
	"testing"
	"time"

	"appointment-booking/internal/data/entity"
	"appointment-booking/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEnrollmentFixture() (*fixture, EnrollmentService) {
	f := newFixture()
	return f, NewEnrollmentService(f.repo, zap.NewNop())
}

func (f *fixture) seedEnrollment(planID, memberID uuid.UUID, startedAt time.Time, duration time.Duration) *entity.Enrollment {
	now := time.Now()
	e := &entity.Enrollment{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		AppointmentPlanID: planID,
		MemberID:          memberID,
		StartedAt:         startedAt,
		EndedAt:           startedAt.Add(duration),
		OrderProductID:    "pi_" + uuid.NewString()[:8],
	}
	f.enrollments.enrollments = append(f.enrollments.enrollments, e)
	return e
}

func TestListEnrollments_ScopesToViewerByDefault(t *testing.T) {
	f, service := newEnrollmentFixture()
	viewerID := uuid.New()

	future := time.Now().Add(24 * time.Hour)
	mine := f.seedEnrollment(uuid.New(), viewerID, future, time.Hour)
	f.seedEnrollment(uuid.New(), uuid.New(), future, time.Hour)

	resp, err := service.ListEnrollments(context.Background(), viewerID, &request.ListEnrollmentsRequest{
		Bucket: "scheduled",
	})
	require.NoError(t, err)

	filter := f.enrollments.lastFilter
	require.NotNil(t, filter)
	require.NotNil(t, filter.MemberID)
	assert.Equal(t, viewerID, *filter.MemberID)
	assert.Nil(t, filter.HostID)
	assert.Equal(t, DefaultPageSize, filter.Limit)

	require.Len(t, resp.Enrollments, 1)
	assert.Equal(t, mine.ID.String(), resp.Enrollments[0].ID)
	assert.Empty(t, resp.NextCursor)
}

func TestListEnrollments_HostScopeRequiresSelf(t *testing.T) {
	f, service := newEnrollmentFixture()

	// The fixture host owns the plan; an attendee holds the enrollment.
	plan := f.addPlan(2, entity.GatewayJitsi, 1, entity.RescheduleUnitDay)
	hosted := f.seedEnrollment(plan.ID, uuid.New(), time.Now().Add(24*time.Hour), time.Hour)
	f.seedEnrollment(uuid.New(), uuid.New(), time.Now().Add(24*time.Hour), time.Hour)

	_, err := service.ListEnrollments(context.Background(), uuid.New(), &request.ListEnrollmentsRequest{
		HostID: f.hostID.String(),
		Bucket: "scheduled",
	})
	require.ErrorIs(t, err, ErrForbidden)

	resp, err := service.ListEnrollments(context.Background(), f.hostID, &request.ListEnrollmentsRequest{
		HostID: f.hostID.String(),
		Bucket: "scheduled",
	})
	require.NoError(t, err)

	// Host scope returns the roster of the host's plans, nothing else.
	require.Len(t, resp.Enrollments, 1)
	assert.Equal(t, hosted.ID.String(), resp.Enrollments[0].ID)
	require.NotNil(t, f.enrollments.lastFilter.HostID)
	assert.Nil(t, f.enrollments.lastFilter.MemberID)
}

func TestListEnrollments_ParsesWindowAndCursor(t *testing.T) {
	f, service := newEnrollmentFixture()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	cursor := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	_, err := service.ListEnrollments(context.Background(), uuid.New(), &request.ListEnrollmentsRequest{
		Bucket: "finished",
		From:   from.Format(time.RFC3339),
		Until:  until.Format(time.RFC3339),
		Cursor: cursor.Format(time.RFC3339),
	})
	require.NoError(t, err)

	filter := f.enrollments.lastFilter
	require.NotNil(t, filter.From)
	assert.True(t, filter.From.Equal(from))
	require.NotNil(t, filter.Until)
	assert.True(t, filter.Until.Equal(until))
	require.NotNil(t, filter.Cursor)
	assert.True(t, filter.Cursor.Equal(cursor))
}

func TestListEnrollments_InvalidBucketRejected(t *testing.T) {
	_, service := newEnrollmentFixture()

	_, err := service.ListEnrollments(context.Background(), uuid.New(), &request.ListEnrollmentsRequest{
		Bucket: "pending",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestListEnrollments_FinishedSortsNewestFirst(t *testing.T) {
	f, service := newEnrollmentFixture()
	viewerID := uuid.New()

	// Ended one, three and two days ago, seeded out of order.
	base := time.Now().UTC().Truncate(time.Second)
	day1 := f.seedEnrollment(uuid.New(), viewerID, base.Add(-1*24*time.Hour-time.Hour), time.Hour)
	day3 := f.seedEnrollment(uuid.New(), viewerID, base.Add(-3*24*time.Hour-time.Hour), time.Hour)
	day2 := f.seedEnrollment(uuid.New(), viewerID, base.Add(-2*24*time.Hour-time.Hour), time.Hour)

	resp, err := service.ListEnrollments(context.Background(), viewerID, &request.ListEnrollmentsRequest{
		Bucket: "finished",
	})
	require.NoError(t, err)

	require.Len(t, resp.Enrollments, 3)
	assert.Equal(t, day1.ID.String(), resp.Enrollments[0].ID)
	assert.Equal(t, day2.ID.String(), resp.Enrollments[1].ID)
	assert.Equal(t, day3.ID.String(), resp.Enrollments[2].ID)
	assert.Empty(t, resp.NextCursor)
}

func TestListEnrollments_FinishedTieBreaksByStartDesc(t *testing.T) {
	f, service := newEnrollmentFixture()
	viewerID := uuid.New()

	// Same end instant, different starts: the later start lists first.
	end := time.Now().UTC().Truncate(time.Second).Add(-24 * time.Hour)
	early := f.seedEnrollment(uuid.New(), viewerID, end.Add(-2*time.Hour), 2*time.Hour)
	late := f.seedEnrollment(uuid.New(), viewerID, end.Add(-time.Hour), time.Hour)

	resp, err := service.ListEnrollments(context.Background(), viewerID, &request.ListEnrollmentsRequest{
		Bucket: "finished",
	})
	require.NoError(t, err)

	require.Len(t, resp.Enrollments, 2)
	assert.Equal(t, late.ID.String(), resp.Enrollments[0].ID)
	assert.Equal(t, early.ID.String(), resp.Enrollments[1].ID)
}

func TestListEnrollments_ScheduledPagesForwardByCursor(t *testing.T) {
	f, service := newEnrollmentFixture()
	viewerID := uuid.New()

	base := time.Now().UTC().Truncate(time.Second).Add(24 * time.Hour)
	for i := DefaultPageSize + 1; i >= 0; i-- {
		f.seedEnrollment(uuid.New(), viewerID, base.Add(time.Duration(i)*time.Hour), time.Hour)
	}

	first, err := service.ListEnrollments(context.Background(), viewerID, &request.ListEnrollmentsRequest{
		Bucket: "scheduled",
	})
	require.NoError(t, err)

	require.Len(t, first.Enrollments, DefaultPageSize)
	for i := 1; i < len(first.Enrollments); i++ {
		assert.True(t, first.Enrollments[i-1].StartedAt.Before(first.Enrollments[i].StartedAt))
	}
	last := first.Enrollments[DefaultPageSize-1]
	require.Equal(t, last.StartedAt.Format(time.RFC3339), first.NextCursor)

	second, err := service.ListEnrollments(context.Background(), viewerID, &request.ListEnrollmentsRequest{
		Bucket: "scheduled",
		Cursor: first.NextCursor,
	})
	require.NoError(t, err)

	// Two rows remain and none repeat from the first page.
	require.Len(t, second.Enrollments, 2)
	assert.True(t, second.Enrollments[0].StartedAt.After(last.StartedAt))
	assert.Empty(t, second.NextCursor)
}

func TestListEnrollments_FinishedCursorUsesEndedAt(t *testing.T) {
	f, service := newEnrollmentFixture()
	viewerID := uuid.New()

	base := time.Now().UTC().Truncate(time.Second).Add(-time.Hour)
	for i := 0; i < DefaultPageSize+3; i++ {
		f.seedEnrollment(uuid.New(), viewerID, base.Add(-time.Duration(i+1)*24*time.Hour), time.Hour)
	}

	first, err := service.ListEnrollments(context.Background(), viewerID, &request.ListEnrollmentsRequest{
		Bucket: "finished",
	})
	require.NoError(t, err)

	require.Len(t, first.Enrollments, DefaultPageSize)
	boundary := first.Enrollments[DefaultPageSize-1].EndedAt
	require.Equal(t, boundary.Format(time.RFC3339), first.NextCursor)

	second, err := service.ListEnrollments(context.Background(), viewerID, &request.ListEnrollmentsRequest{
		Bucket: "finished",
		Cursor: first.NextCursor,
	})
	require.NoError(t, err)

	require.Len(t, second.Enrollments, 3)
	for _, e := range second.Enrollments {
		assert.True(t, e.EndedAt.Before(boundary))
	}
	assert.Empty(t, second.NextCursor)
}

func TestListEnrollments_CanceledBucketOnlyTombstoned(t *testing.T) {
	f, service := newEnrollmentFixture()
	viewerID := uuid.New()

	future := time.Now().Add(24 * time.Hour)
	f.seedEnrollment(uuid.New(), viewerID, future, time.Hour)

	canceled := f.seedEnrollment(uuid.New(), viewerID, future.Add(time.Hour), time.Hour)
	canceledAt := time.Now()
	reason := "changed plans"
	canceled.CanceledAt = &canceledAt
	canceled.CanceledReason = &reason

	resp, err := service.ListEnrollments(context.Background(), viewerID, &request.ListEnrollmentsRequest{
		Bucket: "canceled",
	})
	require.NoError(t, err)

	require.Len(t, resp.Enrollments, 1)
	assert.Equal(t, canceled.ID.String(), resp.Enrollments[0].ID)
	assert.Equal(t, string(entity.EnrollmentCanceled), resp.Enrollments[0].Status)
}
