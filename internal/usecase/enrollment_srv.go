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

// DefaultPageSize is the fixed page size of enrollment listings. Cursor
// semantics assume it stays constant between the page and its follow-up.
const DefaultPageSize = 10

type EnrollmentService interface {
	ListEnrollments(ctx context.Context, viewerID uuid.UUID, req *request.ListEnrollmentsRequest) (*response.EnrollmentListResponse, error)
}

type enrollmentService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewEnrollmentService(repo *repository.Repository, log *zap.Logger) EnrollmentService {
	return &enrollmentService{
		repo: repo,
		log:  log.With(zap.String("service", "enrollment")),
	}
}

// ListEnrollments pages one lifecycle bucket. Without a host filter the
// listing is scoped to the viewer's own enrollments; with one, the viewer
// must be that host.
func (s *enrollmentService) ListEnrollments(ctx context.Context, viewerID uuid.UUID, req *request.ListEnrollmentsRequest) (*response.EnrollmentListResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("List enrollments validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	now := time.Now()
	filter := repository.EnrollmentFilter{
		Bucket: entity.EnrollmentStatus(req.Bucket),
		Now:    now,
		Limit:  DefaultPageSize,
	}

	if req.HostID != "" {
		hostID, err := uuid.Parse(req.HostID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid host ID %s", ErrValidation, req.HostID)
		}
		if hostID != viewerID {
			return nil, fmt.Errorf("host %s listing: %w", req.HostID, ErrForbidden)
		}
		filter.HostID = &hostID
	} else {
		filter.MemberID = &viewerID
	}

	if req.From != "" {
		from, ok := utils.ParseTime(req.From)
		if !ok {
			return nil, fmt.Errorf("%w: from must be RFC3339", ErrValidation)
		}
		filter.From = &from
	}
	if req.Until != "" {
		until, ok := utils.ParseTime(req.Until)
		if !ok {
			return nil, fmt.Errorf("%w: until must be RFC3339", ErrValidation)
		}
		filter.Until = &until
	}
	if req.Cursor != "" {
		cursor, ok := utils.ParseTime(req.Cursor)
		if !ok {
			return nil, fmt.Errorf("%w: cursor must be RFC3339", ErrValidation)
		}
		filter.Cursor = &cursor
	}

	enrollments, err := s.repo.Enrollment.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}

	resp := &response.EnrollmentListResponse{
		Enrollments: make([]response.EnrollmentResponse, len(enrollments)),
	}
	for i, enrollment := range enrollments {
		resp.Enrollments[i] = response.EnrollmentToResponse(enrollment, now)
	}

	if len(enrollments) == DefaultPageSize {
		last := enrollments[len(enrollments)-1]
		boundary := last.EndedAt
		if filter.Bucket == entity.EnrollmentScheduled {
			boundary = last.StartedAt
		}
		resp.NextCursor = boundary.Format(time.RFC3339)
	}

	return resp, nil
}
