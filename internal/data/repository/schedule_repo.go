package repository

import (
	"context"
	"fmt"
	"time"

	"appointment-booking/internal/data/entity"
	"appointment-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *entity.AppointmentSchedule) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.AppointmentSchedule, error)
	FindByPlanID(ctx context.Context, planID uuid.UUID) ([]*entity.AppointmentSchedule, error)
	UpdateExcludes(ctx context.Context, id uuid.UUID, excludes []time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type scheduleRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewScheduleRepository(db database.Querier, log *zap.Logger) ScheduleRepository {
	return &scheduleRepository{
		db:  db,
		log: log.With(zap.String("repository", "schedule")),
	}
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *entity.AppointmentSchedule) error {
	query := `
		INSERT INTO appointment_schedules (id, appointment_plan_id, started_at, interval_type, interval_amount, excludes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		schedule.ID,
		schedule.AppointmentPlanID,
		schedule.StartedAt,
		schedule.IntervalType,
		schedule.IntervalAmount,
		schedule.Excludes,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create schedule",
			zap.Error(err),
			zap.String("plan_id", schedule.AppointmentPlanID.String()),
			zap.Time("started_at", schedule.StartedAt),
		)
		return fmt.Errorf("create schedule for plan %s: %w", schedule.AppointmentPlanID.String(), err)
	}

	return nil
}

func (r *scheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.AppointmentSchedule, error) {
	query := `
		SELECT id, appointment_plan_id, started_at, interval_type, interval_amount, excludes, created_at, updated_at
		FROM appointment_schedules
		WHERE id = $1
	`

	var schedule entity.AppointmentSchedule
	err := r.db.QueryRow(ctx, query, id).Scan(
		&schedule.ID,
		&schedule.AppointmentPlanID,
		&schedule.StartedAt,
		&schedule.IntervalType,
		&schedule.IntervalAmount,
		&schedule.Excludes,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find schedule by ID",
			zap.Error(err),
			zap.String("schedule_id", id.String()),
		)
		return nil, fmt.Errorf("find schedule by ID %s: %w", id.String(), err)
	}

	return &schedule, nil
}

func (r *scheduleRepository) FindByPlanID(ctx context.Context, planID uuid.UUID) ([]*entity.AppointmentSchedule, error) {
	query := `
		SELECT id, appointment_plan_id, started_at, interval_type, interval_amount, excludes, created_at, updated_at
		FROM appointment_schedules
		WHERE appointment_plan_id = $1
		ORDER BY started_at
	`

	rows, err := r.db.Query(ctx, query, planID)
	if err != nil {
		r.log.Error("Failed to find schedules by plan ID",
			zap.Error(err),
			zap.String("plan_id", planID.String()),
		)
		return nil, fmt.Errorf("find schedules by plan ID %s: %w", planID.String(), err)
	}
	defer rows.Close()

	var schedules []*entity.AppointmentSchedule
	for rows.Next() {
		var schedule entity.AppointmentSchedule
		err := rows.Scan(
			&schedule.ID,
			&schedule.AppointmentPlanID,
			&schedule.StartedAt,
			&schedule.IntervalType,
			&schedule.IntervalAmount,
			&schedule.Excludes,
			&schedule.CreatedAt,
			&schedule.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan schedule row", zap.Error(err))
			return nil, fmt.Errorf("scan schedule row: %w", err)
		}
		schedules = append(schedules, &schedule)
	}

	return schedules, nil
}

func (r *scheduleRepository) UpdateExcludes(ctx context.Context, id uuid.UUID, excludes []time.Time) error {
	query := `UPDATE appointment_schedules SET excludes = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, excludes)
	if err != nil {
		r.log.Error("Failed to update schedule excludes",
			zap.Error(err),
			zap.String("schedule_id", id.String()),
		)
		return fmt.Errorf("update schedule %s excludes: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("schedule %s not found", id.String())
	}

	return nil
}

func (r *scheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM appointment_schedules WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete schedule",
			zap.Error(err),
			zap.String("schedule_id", id.String()),
		)
		return fmt.Errorf("delete schedule %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("schedule %s not found", id.String())
	}

	r.log.Info("Schedule deleted", zap.String("schedule_id", id.String()))
	return nil
}
