package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"appointment-booking/internal/data/entity"
	"appointment-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// EnrollmentFilter narrows a bucketed listing. HostID filters to plans
// created by that member. Cursor is the boundary value of the previous
// page's last row: started_at for the scheduled bucket, ended_at otherwise.
type EnrollmentFilter struct {
	HostID   *uuid.UUID
	MemberID *uuid.UUID
	From     *time.Time
	Until    *time.Time
	Bucket   entity.EnrollmentStatus
	Cursor   *time.Time
	Now      time.Time
	Limit    int
}

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *entity.Enrollment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Enrollment, error)
	FindByOrderProductID(ctx context.Context, orderProductID string) (*entity.Enrollment, error)
	SetCanceled(ctx context.Context, id uuid.UUID, canceledAt time.Time, reason string) error
	UpdateWindow(ctx context.Context, id uuid.UUID, startedAt, endedAt time.Time) error
	List(ctx context.Context, filter EnrollmentFilter) ([]*entity.Enrollment, error)
}

type enrollmentRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewEnrollmentRepository(db database.Querier, log *zap.Logger) EnrollmentRepository {
	return &enrollmentRepository{
		db:  db,
		log: log.With(zap.String("repository", "enrollment")),
	}
}

const enrollmentColumns = `e.id, e.appointment_plan_id, e.member_id, e.started_at, e.ended_at,
		       e.canceled_at, e.canceled_reason, e.order_product_id, e.issue, e.result,
		       e.created_at, e.updated_at`

func scanEnrollment(row pgx.Row) (*entity.Enrollment, error) {
	var enrollment entity.Enrollment
	err := row.Scan(
		&enrollment.ID,
		&enrollment.AppointmentPlanID,
		&enrollment.MemberID,
		&enrollment.StartedAt,
		&enrollment.EndedAt,
		&enrollment.CanceledAt,
		&enrollment.CanceledReason,
		&enrollment.OrderProductID,
		&enrollment.Issue,
		&enrollment.Result,
		&enrollment.CreatedAt,
		&enrollment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *entity.Enrollment) error {
	query := `
		INSERT INTO enrollments (id, appointment_plan_id, member_id, started_at, ended_at,
		                         canceled_at, canceled_reason, order_product_id, issue, result,
		                         created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		enrollment.ID,
		enrollment.AppointmentPlanID,
		enrollment.MemberID,
		enrollment.StartedAt,
		enrollment.EndedAt,
		enrollment.CanceledAt,
		enrollment.CanceledReason,
		enrollment.OrderProductID,
		enrollment.Issue,
		enrollment.Result,
		enrollment.CreatedAt,
		enrollment.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create enrollment",
			zap.Error(err),
			zap.String("order_product_id", enrollment.OrderProductID),
			zap.String("member_id", enrollment.MemberID.String()),
		)
		return fmt.Errorf("create enrollment %s: %w", enrollment.OrderProductID, err)
	}

	return nil
}

func (r *enrollmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments e WHERE e.id = $1`

	enrollment, err := scanEnrollment(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find enrollment by ID",
			zap.Error(err),
			zap.String("enrollment_id", id.String()),
		)
		return nil, fmt.Errorf("find enrollment by ID %s: %w", id.String(), err)
	}

	return enrollment, nil
}

func (r *enrollmentRepository) FindByOrderProductID(ctx context.Context, orderProductID string) (*entity.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments e WHERE e.order_product_id = $1`

	enrollment, err := scanEnrollment(r.db.QueryRow(ctx, query, orderProductID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find enrollment by order product ID",
			zap.Error(err),
			zap.String("order_product_id", orderProductID),
		)
		return nil, fmt.Errorf("find enrollment by order product ID %s: %w", orderProductID, err)
	}

	return enrollment, nil
}

func (r *enrollmentRepository) SetCanceled(ctx context.Context, id uuid.UUID, canceledAt time.Time, reason string) error {
	query := `
		UPDATE enrollments
		SET canceled_at = $2, canceled_reason = $3, updated_at = NOW()
		WHERE id = $1 AND canceled_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, id, canceledAt, reason)
	if err != nil {
		r.log.Error("Failed to cancel enrollment",
			zap.Error(err),
			zap.String("enrollment_id", id.String()),
		)
		return fmt.Errorf("cancel enrollment %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("enrollment %s not found or already canceled", id.String())
	}

	return nil
}

func (r *enrollmentRepository) UpdateWindow(ctx context.Context, id uuid.UUID, startedAt, endedAt time.Time) error {
	query := `
		UPDATE enrollments
		SET started_at = $2, ended_at = $3, updated_at = NOW()
		WHERE id = $1 AND canceled_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, id, startedAt, endedAt)
	if err != nil {
		r.log.Error("Failed to update enrollment window",
			zap.Error(err),
			zap.String("enrollment_id", id.String()),
		)
		return fmt.Errorf("update enrollment %s window: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("enrollment %s not found or already canceled", id.String())
	}

	return nil
}

// List applies the bucket predicate and keyset cursor. The scheduled bucket
// pages forward by started_at ascending; canceled and finished page backward
// by ended_at descending with started_at as tie-break.
func (r *enrollmentRepository) List(ctx context.Context, filter EnrollmentFilter) ([]*entity.Enrollment, error) {
	var sb strings.Builder
	var args []any

	sb.WriteString(`SELECT ` + enrollmentColumns + ` FROM enrollments e`)
	if filter.HostID != nil {
		sb.WriteString(` JOIN appointment_plans p ON p.id = e.appointment_plan_id`)
	}
	sb.WriteString(` WHERE 1=1`)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.HostID != nil {
		sb.WriteString(` AND p.creator_id = ` + arg(*filter.HostID))
	}
	if filter.MemberID != nil {
		sb.WriteString(` AND e.member_id = ` + arg(*filter.MemberID))
	}
	if filter.From != nil {
		sb.WriteString(` AND e.started_at >= ` + arg(*filter.From))
	}
	if filter.Until != nil {
		sb.WriteString(` AND e.started_at < ` + arg(*filter.Until))
	}

	switch filter.Bucket {
	case entity.EnrollmentScheduled:
		sb.WriteString(` AND e.canceled_at IS NULL AND e.ended_at > ` + arg(filter.Now))
		if filter.Cursor != nil {
			sb.WriteString(` AND e.started_at > ` + arg(*filter.Cursor))
		}
		sb.WriteString(` ORDER BY e.started_at ASC`)
	case entity.EnrollmentCanceled:
		sb.WriteString(` AND e.canceled_at IS NOT NULL`)
		if filter.Cursor != nil {
			sb.WriteString(` AND e.ended_at < ` + arg(*filter.Cursor))
		}
		sb.WriteString(` ORDER BY e.ended_at DESC, e.started_at DESC`)
	case entity.EnrollmentFinished:
		sb.WriteString(` AND e.canceled_at IS NULL AND e.ended_at <= ` + arg(filter.Now))
		if filter.Cursor != nil {
			sb.WriteString(` AND e.ended_at < ` + arg(*filter.Cursor))
		}
		sb.WriteString(` ORDER BY e.ended_at DESC, e.started_at DESC`)
	default:
		return nil, fmt.Errorf("unknown enrollment bucket %q", string(filter.Bucket))
	}

	sb.WriteString(` LIMIT ` + arg(filter.Limit))

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		r.log.Error("Failed to list enrollments",
			zap.Error(err),
			zap.String("bucket", string(filter.Bucket)),
		)
		return nil, fmt.Errorf("list %s enrollments: %w", string(filter.Bucket), err)
	}
	defer rows.Close()

	var enrollments []*entity.Enrollment
	for rows.Next() {
		enrollment, err := scanEnrollment(rows)
		if err != nil {
			r.log.Error("Failed to scan enrollment row", zap.Error(err))
			return nil, fmt.Errorf("scan enrollment row: %w", err)
		}
		enrollments = append(enrollments, enrollment)
	}

	return enrollments, nil
}
